package query

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed query for the caller.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindAmbiguousLocation
	KindNotFound
	KindUpstreamUnavailable
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrAmbiguousLocation   = errors.New("ambiguous location")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindAmbiguousLocation:
		return "ambiguous_location"
	case KindNotFound:
		return "not_found"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindAmbiguousLocation:
		return ErrAmbiguousLocation
	case KindNotFound:
		return ErrNotFound
	case KindUpstreamUnavailable:
		return ErrUpstreamUnavailable
	default:
		return nil
	}
}

// Error is returned by every Service operation that does not produce a result.
type Error struct {
	Kind Kind
	Op   string

	// Fields holds per-field problems for KindInvalidInput.
	Fields map[string][]string
	// Endpoints and Candidates describe KindAmbiguousLocation.
	Endpoints  []string
	Candidates map[string][]string
	// Detail is the provider's own message, when it gave one.
	Detail string
	// Timeout is set for KindUpstreamUnavailable when the provider did not answer in time.
	Timeout bool

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		b.WriteString(sentinel.Error())
	} else {
		b.WriteString(e.Kind.String())
	}

	switch {
	case len(e.Endpoints) > 0:
		b.WriteString(" (" + strings.Join(e.Endpoints, ", ") + ")")
	case e.Detail != "":
		b.WriteString(": " + e.Detail)
	case len(e.Fields) > 0:
		b.WriteString(": " + strings.Join(sortedKeys(e.Fields), ", "))
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of a query error, or 0 when err is not one.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return 0
}
