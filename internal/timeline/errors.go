package timeline

import (
	"errors"
	"fmt"
)

// Code identifies why an operation was rejected.
type Code string

const (
	CodeInvalidTimeOrder Code = "INVALID_TIME_ORDER"
	CodeOverlapRejected  Code = "OVERLAP_REJECTED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeEndNotSet        Code = "END_NOT_SET"
	CodeNothingToExport  Code = "NOTHING_TO_EXPORT"
	CodeInvalidTime      Code = "INVALID_TIME"
)

// Error is a rejected store operation. The store is unchanged whenever one
// is returned.
type Error struct {
	Code    Code
	Message string

	// Boundary is the blocking time for CodeOverlapRejected and the interval
	// start for CodeInvalidTimeOrder.
	Boundary float64
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same Code, so callers can compare against
// the sentinels below with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrInvalidTimeOrder = &Error{Code: CodeInvalidTimeOrder, Message: "end time must be after start time"}
	ErrOverlapRejected  = &Error{Code: CodeOverlapRejected, Message: "cannot start before the previous subtitle ends"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "subtitle not found"}
	ErrEndNotSet        = &Error{Code: CodeEndNotSet, Message: "subtitle has no end time yet"}
	ErrNothingToExport  = &Error{Code: CodeNothingToExport, Message: "no complete subtitles to export"}
	ErrInvalidTime      = &Error{Code: CodeInvalidTime, Message: "time must be a non-negative number"}
)

func invalidTimeOrder(start, t float64) *Error {
	return &Error{
		Code:     CodeInvalidTimeOrder,
		Message:  fmt.Sprintf("cannot mark end %s at or before start %s", FormatClock(t), FormatClock(start)),
		Boundary: start,
	}
}

func splitTooShort(iv Interval, t float64) *Error {
	span := FormatClock(iv.Start) + "-" + FormatClock(iv.EndOr(iv.Start))
	return &Error{
		Code:     CodeInvalidTimeOrder,
		Message:  fmt.Sprintf("cannot split %s at %s: a part would be shorter than a millisecond", span, FormatClock(t)),
		Boundary: iv.Start,
	}
}

func overlapRejected(boundary float64) *Error {
	return &Error{
		Code:     CodeOverlapRejected,
		Message:  fmt.Sprintf("cannot mark a new start before the previous subtitle ends (%s)", FormatClock(boundary)),
		Boundary: boundary,
	}
}

func notFound(id ID) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("subtitle %d not found", id),
	}
}
