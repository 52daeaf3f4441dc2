package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// queryInt parses key as a non-negative int, returning def when absent.
func queryInt(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return n, nil
}

// queryFloat parses key as a float, returning nil when absent.
func queryFloat(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &v, nil
}

// pageParams reads offset and limit. A zero limit means "no limit" and is
// replaced by def; larger limits than maxLimit are rejected.
func pageParams(q url.Values, def, maxLimit int) (offset, limit int, err error) {
	if offset, err = queryInt(q, "offset", 0); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(q, "limit", def); err != nil {
		return 0, 0, err
	}
	if limit == 0 {
		limit = def
	}
	if maxLimit > 0 && limit > maxLimit {
		return 0, 0, fmt.Errorf("limit must not exceed %d", maxLimit)
	}
	return offset, limit, nil
}
