package chart

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDuplicateBody is returned when a name is registered twice on one chart.
var ErrDuplicateBody = errors.New("duplicate body")

// BatchError collects per-body failures of a whole-chart computation.
type BatchError struct {
	Failures map[string]error
}

// Names returns the failed body names, sorted.
func (e *BatchError) Names() []string {
	names := make([]string, 0, len(e.Failures))
	for n := range e.Failures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (e *BatchError) Error() string {
	names := e.Names()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s: %v", n, e.Failures[n])
	}
	return fmt.Sprintf("%d bodies failed: %s", len(names), strings.Join(parts, "; "))
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, n := range e.Names() {
		errs = append(errs, e.Failures[n])
	}
	return errs
}
