package errs

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CodeError carries a numeric code, a stable machine-readable kind and an
// optional human detail. Kind is what goes on the wire in error frames.
type CodeError struct {
	Code   int    `json:"code"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, kind string) *CodeError {
	return &CodeError{Code: code, Kind: kind}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Kind)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// WithDetail returns a copy carrying extra detail. The receiver is not
// mutated so the predefined errors stay clean.
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Kind: e.Kind, Detail: d}
}

// Wrap attaches a stack trace.
func (e *CodeError) Wrap() error {
	return errors.WithStack(e)
}

// WrapMsg attaches detail plus a stack trace.
func (e *CodeError) WrapMsg(detail string) error {
	return errors.WithStack(e.WithDetail(detail))
}

// Is matches by code, so a wrapped/detailed copy still compares equal to
// its predefined parent via errors.Is.
func (e *CodeError) Is(target error) bool {
	var ce *CodeError
	if !stderrors.As(target, &ce) {
		return false
	}
	return e.Code == ce.Code
}

// AsCodeError unwraps err down to a *CodeError, or nil.
func AsCodeError(err error) *CodeError {
	var ce *CodeError
	if stderrors.As(err, &ce) {
		return ce
	}
	return nil
}

// IsDeadline reports whether err stems from a context deadline.
func IsDeadline(err error) bool {
	return stderrors.Is(err, context.DeadlineExceeded)
}
