package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Query carries the per-request constraints. Nil pointers mean "no filter".
type Query struct {
	ResultCount int      `validate:"gte=1"`
	MaxValue    *float64 `validate:"omitnil,gte=0"`
	MaxAge      *int     `validate:"omitnil,gte=0"`
	League      *string  `validate:"omitnil,min=1"`
}

// NewQuery returns a Query asking for count results with no filters.
func NewQuery(count int) Query {
	return Query{ResultCount: count}
}

// WithMaxValue returns a copy of q with a valuation ceiling.
func (q Query) WithMaxValue(v float64) Query {
	q.MaxValue = &v
	return q
}

// WithMaxAge returns a copy of q with an age ceiling.
func (q Query) WithMaxAge(age int) Query {
	q.MaxAge = &age
	return q
}

// WithLeague returns a copy of q restricted to one league.
func (q Query) WithLeague(league string) Query {
	q.League = &league
	return q
}

func (e *Engine) validateQuery(q Query, ds Dataset) error {
	if err := e.validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, describeValidation(err))
	}
	if e.maxResults > 0 && q.ResultCount > e.maxResults {
		return fmt.Errorf("%w: result count %d exceeds maximum %d", ErrValidation, q.ResultCount, e.maxResults)
	}
	if q.League != nil && !ds.Filters().HasLeague() {
		return fmt.Errorf("%w: league filter is not available for this dataset", ErrValidation)
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return strings.Join(parts, "; ")
}
