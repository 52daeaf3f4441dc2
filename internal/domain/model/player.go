// Package model contains domain models passed between layers.
package model

// Feature column names, in feature-vector order.
const (
	FeatureOverall   = "norm_overall"
	FeaturePotential = "norm_potential"
	FeaturePace      = "norm_pace"
	FeatureShooting  = "norm_shooting"
	FeaturePassing   = "norm_passing"
	FeatureDribbling = "norm_dribbling"
	FeatureDefending = "norm_defending"
	FeaturePhysic    = "norm_physic"
)

// FeatureDim is the dimensionality of a FeatureVector.
const FeatureDim = 8

// FeatureNames lists the feature columns in vector order.
var FeatureNames = [FeatureDim]string{
	FeatureOverall, FeaturePotential, FeaturePace, FeatureShooting,
	FeaturePassing, FeatureDribbling, FeatureDefending, FeaturePhysic,
}

// FeatureVector is the ordered tuple of pre-normalized attributes used for search.
type FeatureVector [FeatureDim]float64

// Slice returns a copy of v as a slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureDim)
	copy(out, v[:])
	return out
}

// Skills holds the raw 0-100 skill scores.
type Skills struct {
	Pace      float64 `json:"pace"`
	Shooting  float64 `json:"shooting"`
	Passing   float64 `json:"passing"`
	Dribbling float64 `json:"dribbling"`
	Defending float64 `json:"defending"`
	Physic    float64 `json:"physic"`
}

// Player is one row of the dataset.
type Player struct {
	ID        string   `json:"id"`
	Row       int      `json:"-"`
	Name      string   `json:"name"`
	Club      string   `json:"club"`
	League    string   `json:"league,omitempty"`
	Positions []string `json:"positions"`
	Age       int      `json:"age"`
	Overall   int      `json:"overall"`
	Potential int      `json:"potential"`
	ValueEUR  float64  `json:"value_eur"`
	WageEUR   float64  `json:"wage_eur"`
	PlayerURL string   `json:"player_url"`
	TeamURL   string   `json:"team_url,omitempty"`
	Skills    Skills   `json:"skills"`

	Features FeatureVector `json:"-"`
}

// Match pairs a player with its distance to a reference player.
type Match struct {
	Player   Player  `json:"player"`
	Distance float64 `json:"distance"`
}
