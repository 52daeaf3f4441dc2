package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/scout/internal/domain/search"
	"github.com/okian/scout/internal/domain/types"
)

// SimilarHandler serves similarity searches.
type SimilarHandler struct {
	deps         Searcher
	defaultCount int
	maxLimit     int
}

// NewSimilarHandler creates a new similarity handler.
func NewSimilarHandler(deps Searcher, defaultCount, maxLimit int) *SimilarHandler {
	return &SimilarHandler{deps: deps, defaultCount: defaultCount, maxLimit: maxLimit}
}

// similarRequest is the decoded query string of GET /similar.
type similarRequest struct {
	name, id string
	query    search.Query
	sortKey  search.SortKey
	desc     bool
	offset   int
	limit    int
}

func (h *SimilarHandler) parse(v url.Values) (similarRequest, error) {
	var req similarRequest
	req.name = strings.TrimSpace(v.Get("name"))
	req.id = strings.TrimSpace(v.Get("id"))
	switch {
	case req.name == "" && req.id == "":
		return req, errors.New("one of name or id is required")
	case req.name != "" && req.id != "":
		return req, errors.New("name and id are mutually exclusive")
	}

	count := h.defaultCount
	if raw := strings.TrimSpace(v.Get("count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, errors.New("count must be an integer")
		}
		count = n
	}
	req.query = search.NewQuery(count)

	maxValue, err := queryFloat(v, "max_value")
	if err != nil {
		return req, err
	}
	req.query.MaxValue = maxValue

	if raw := strings.TrimSpace(v.Get("max_age")); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return req, errors.New("max_age must be an integer")
		}
		req.query = req.query.WithMaxAge(age)
	}
	if league := strings.TrimSpace(v.Get("league")); league != "" {
		req.query = req.query.WithLeague(league)
	}

	if req.sortKey, err = search.ParseSortKey(v.Get("sort")); err != nil {
		return req, err
	}
	switch strings.ToLower(strings.TrimSpace(v.Get("order"))) {
	case "", "asc":
	case "desc":
		req.desc = true
	default:
		return req, errors.New("order must be asc or desc")
	}

	if req.offset, err = queryInt(v, "offset", 0); err != nil {
		return req, err
	}
	if req.limit, err = queryInt(v, "limit", 0); err != nil {
		return req, err
	}
	if h.maxLimit > 0 && req.limit > h.maxLimit {
		return req, fmt.Errorf("limit must not exceed %d", h.maxLimit)
	}
	return req, nil
}

// HandleSimilar handles GET /similar.
func (h *SimilarHandler) HandleSimilar(w http.ResponseWriter, r *http.Request) {
	const op = "api.similar"
	req, err := h.parse(r.URL.Query())
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	var res search.Result
	if req.id != "" {
		res, err = h.deps.SimilarByID(r.Context(), req.id, req.query)
	} else {
		res, err = h.deps.Similar(r.Context(), req.name, req.query)
	}
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}

	sorted := search.SortMatches(res.Matches, req.sortKey, req.desc)
	page := search.Paginate(sorted, req.offset, req.limit)
	writeJSON(w, http.StatusOK, types.SimilarResponse{
		Reference: types.FromPlayer(res.Reference),
		Total:     len(res.Matches),
		Offset:    req.offset,
		Limit:     req.limit,
		Matches:   types.FromMatches(page),
	})
}
