package economy

import (
	"errors"
	"fmt"
)

// Kind classifies an economy operation failure so the HTTP layer can map
// it to a status code without string matching.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthorization
	KindNotFound
	KindConflict
	KindInsufficientFunds
)

// Error is a classified economy failure. Every rejected operation leaves
// zero persisted side effects; the transaction rolls back on return.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// KindOf extracts the Kind from err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindInternal
}

func authorizationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func insufficientFunds(msg string) *Error {
	return &Error{Kind: KindInsufficientFunds, Msg: msg}
}
