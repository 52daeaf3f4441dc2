package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/search"
	"github.com/okian/scout/internal/domain/types"
)

const remoteTimeout = 30 * time.Second

// similarRequest carries one similarity query with its presentation options.
type similarRequest struct {
	Ref   string
	ByID  bool
	Query search.Query
	Sort  search.SortKey
	Desc  bool
}

// backend answers queries from a local dataset or a remote server.
type backend interface {
	Similar(ctx context.Context, r similarRequest) (types.SimilarResponse, error)
	Players(ctx context.Context, offset, limit int) (types.PlayerPage, error)
}

// newBackend prefers --url, then --dataset, then $SCOUT_DATASET_PATH.
func newBackend(ctx context.Context) (backend, error) {
	if serverURL != "" {
		if datasetPath != "" {
			return nil, errors.New("--url and --dataset are mutually exclusive")
		}
		return newRemoteBackend(serverURL, &http.Client{Timeout: remoteTimeout})
	}
	path := datasetPath
	if path == "" {
		path = os.Getenv("SCOUT_DATASET_PATH")
	}
	if path == "" {
		return nil, errors.New("no dataset: pass --dataset, --url or set SCOUT_DATASET_PATH")
	}
	return newLocalBackend(ctx, path, datasetSource, sqliteTable)
}

type localBackend struct {
	engine *search.Engine
}

func newLocalBackend(ctx context.Context, path, kind, table string) (*localBackend, error) {
	src, err := repository.NewSource(kind, path, table)
	if err != nil {
		return nil, err
	}
	snap, err := repository.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	engine := search.NewEngine(search.Static{D: snap},
		search.WithMaxResultCount(0),
		search.WithMetrics(false),
	)
	return &localBackend{engine: engine}, nil
}

func (b *localBackend) Similar(ctx context.Context, r similarRequest) (types.SimilarResponse, error) {
	var (
		res search.Result
		err error
	)
	if r.ByID {
		res, err = b.engine.SimilarByID(ctx, r.Ref, r.Query)
	} else {
		res, err = b.engine.Similar(ctx, r.Ref, r.Query)
	}
	if err != nil {
		return types.SimilarResponse{}, err
	}
	matches := search.SortMatches(res.Matches, r.Sort, r.Desc)
	return types.SimilarResponse{
		Reference: types.FromPlayer(res.Reference),
		Total:     len(matches),
		Limit:     len(matches),
		Matches:   types.FromMatches(matches),
	}, nil
}

func (b *localBackend) Players(ctx context.Context, offset, limit int) (types.PlayerPage, error) {
	players, total, err := b.engine.Players(ctx, offset, limit)
	if err != nil {
		return types.PlayerPage{}, err
	}
	return types.PlayerPage{
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		Players: types.FromPlayers(players),
	}, nil
}

type remoteBackend struct {
	base   *url.URL
	client *http.Client
}

func newRemoteBackend(raw string, client *http.Client) (*remoteBackend, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid --url %q", raw)
	}
	return &remoteBackend{base: u, client: client}, nil
}

// remoteError is the error body returned by the server.
type remoteError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("server returned %d %s: %s", e.Status, e.Code, e.Message)
}

func (b *remoteBackend) Similar(ctx context.Context, r similarRequest) (types.SimilarResponse, error) {
	v := url.Values{}
	if r.ByID {
		v.Set("id", r.Ref)
	} else {
		v.Set("name", r.Ref)
	}
	v.Set("count", strconv.Itoa(r.Query.ResultCount))
	if r.Query.MaxValue != nil {
		v.Set("max_value", strconv.FormatFloat(*r.Query.MaxValue, 'f', -1, 64))
	}
	if r.Query.MaxAge != nil {
		v.Set("max_age", strconv.Itoa(*r.Query.MaxAge))
	}
	if r.Query.League != nil {
		v.Set("league", *r.Query.League)
	}
	v.Set("sort", string(r.Sort))
	if r.Desc {
		v.Set("order", "desc")
	}

	var out types.SimilarResponse
	err := b.get(ctx, "/similar", v, &out)
	return out, err
}

func (b *remoteBackend) Players(ctx context.Context, offset, limit int) (types.PlayerPage, error) {
	v := url.Values{}
	v.Set("offset", strconv.Itoa(offset))
	v.Set("limit", strconv.Itoa(limit))

	var out types.PlayerPage
	err := b.get(ctx, "/players", v, &out)
	return out, err
}

func (b *remoteBackend) get(ctx context.Context, path string, q url.Values, out any) error {
	u := *b.base
	u.Path += path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		re := &remoteError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(re); err != nil {
			re.Message = http.StatusText(resp.StatusCode)
		}
		return re
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
