// Package types contains the JSON shapes served by the HTTP API.
package types

import (
	"time"

	"github.com/okian/scout/internal/domain/model"
)

// Player is the API view of a dataset row.
type Player struct {
	ID        string       `json:"id"`
	Name      string       `json:"short_name"`
	Age       int          `json:"age"`
	Overall   int          `json:"overall"`
	Potential int          `json:"potential"`
	ValueEUR  float64      `json:"value_eur"`
	WageEUR   float64      `json:"wage_eur"`
	Club      string       `json:"club_name"`
	League    string       `json:"league_name,omitempty"`
	Positions []string     `json:"player_positions"`
	PlayerURL string       `json:"player_url"`
	TeamURL   string       `json:"team_url,omitempty"`
	Skills    model.Skills `json:"skills"`
}

// Match is a Player plus its distance to the reference player.
type Match struct {
	Player
	Distance float64 `json:"distance_score"`
}

// SimilarResponse is the body of a similarity search.
type SimilarResponse struct {
	Reference Player  `json:"reference"`
	Total     int     `json:"total"`
	Offset    int     `json:"offset"`
	Limit     int     `json:"limit"`
	Matches   []Match `json:"matches"`
}

// PlayerPage is one page of the player listing.
type PlayerPage struct {
	Total   int      `json:"total"`
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
	Players []Player `json:"players"`
}

// Ready describes the active dataset snapshot.
type Ready struct {
	Status   string    `json:"status"`
	Version  string    `json:"version,omitempty"`
	Rows     int       `json:"rows"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
}

// ReloadAccepted acknowledges a reload request.
type ReloadAccepted struct {
	RequestID string `json:"request_id,omitempty"`
	Status    string `json:"status"`
}

// FromPlayer converts a domain player.
func FromPlayer(p model.Player) Player {
	return Player{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Overall:   p.Overall,
		Potential: p.Potential,
		ValueEUR:  p.ValueEUR,
		WageEUR:   p.WageEUR,
		Club:      p.Club,
		League:    p.League,
		Positions: p.Positions,
		PlayerURL: p.PlayerURL,
		TeamURL:   p.TeamURL,
		Skills:    p.Skills,
	}
}

// FromPlayers converts a slice of domain players.
func FromPlayers(ps []model.Player) []Player {
	out := make([]Player, len(ps))
	for i, p := range ps {
		out[i] = FromPlayer(p)
	}
	return out
}

// FromMatches converts search results, preserving order.
func FromMatches(ms []model.Match) []Match {
	out := make([]Match, len(ms))
	for i, m := range ms {
		out[i] = Match{Player: FromPlayer(m.Player), Distance: m.Distance}
	}
	return out
}
