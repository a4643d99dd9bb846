package emulator

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Emulator errors
	ErrTickLimit = errors.New(f("tick limit reached"))
	ErrNoImage   = errors.New(f("no program image"))

	// Watch errors
	ErrWatchExpression = errors.New(f("watch expression"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc     uint16
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("pc 0x%02x line %d %v", err.Pc, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrWatch reports a watch expression that could not be evaluated.
type ErrWatch struct {
	Expr string
	Err  error
}

func (err *ErrWatch) Error() string {
	return f("watch '%v' %v", err.Expr, err.Err)
}

func (err *ErrWatch) Unwrap() []error {
	return []error{ErrWatchExpression, err.Err}
}
