package staticsearch

import (
	"errors"
	"fmt"
)

// Fatal input errors. A run that returns one of these has produced no index.
var (
	ErrMissingCountry      = errors.New("city has no country code")
	ErrDuplicateRegionName = errors.New("duplicate region name within country")
	ErrInconsistentCountry = errors.New("country mixes cities with and without region codes")
	ErrMalformedRegionCode = errors.New("region code is not of the form CC.CODE")
	ErrMalformedRow        = errors.New("malformed row")
)

// RowError reports a problem with one input row.
type RowError struct {
	Source string // "regions" or "cities"
	Line   int    // 1-based line (or row) number, 0 when unknown
	Field  string // offending column, if any
	Err    error
}

func (e *RowError) Error() string {
	msg := e.Source
	if e.Line > 0 {
		msg = fmt.Sprintf("%s line %d", msg, e.Line)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s field %s", msg, e.Field)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
