package emulator

import (
	"fmt"
	"iter"
	"maps"
	"strconv"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/ls8/cpu"
)

// Watch is a condition on the processor state, written as a Starlark
// expression, ie "pc == 0x10 and r0 > 3".
//
// The expression sees the defines, and the state:
// pc, ir, fl, sp, ticks and r0-r7.
type Watch struct {
	Expr string

	defines starlark.StringDict
}

// NewWatch prepares a watch expression.
// Defines that are not integers are not visible to the expression.
func NewWatch(expr string, defines iter.Seq2[string, string]) (watch *Watch, err error) {
	watch = &Watch{
		Expr:    expr,
		defines: starlark.StringDict{},
	}

	for key, str := range defines {
		value, perr := strconv.ParseUint(str, 0, 32)
		if perr != nil {
			continue
		}
		watch.defines[key] = starlark.MakeUint64(value)
	}

	// Syntax check.
	opts := syntax.FileOptions{}
	_, err = opts.ParseExpr("watch", expr, 0)
	if err != nil {
		err = &ErrWatch{Expr: expr, Err: err}
		watch = nil
		return
	}

	return
}

// state returns the predeclared names for the current processor state.
func (watch *Watch) state(cp *cpu.Cpu) (pred starlark.StringDict) {
	pred = maps.Clone(watch.defines)

	pred["pc"] = starlark.MakeInt(int(cp.Pc))
	pred["ir"] = starlark.MakeInt(int(cp.Memory.Peek(uint(cp.Pc))))
	pred["fl"] = starlark.MakeInt(int(cp.Flags))
	pred["sp"] = starlark.MakeInt(int(cp.Sp()))
	pred["ticks"] = starlark.MakeInt(cp.Ticks)
	for n, value := range cp.Register {
		pred[fmt.Sprintf("r%d", n)] = starlark.MakeInt(int(value))
	}

	return
}

// Eval returns the truth of the expression for the processor state.
func (watch *Watch) Eval(cp *cpu.Cpu) (hit bool, err error) {
	thread := starlark.Thread{Name: "watch"}
	opts := syntax.FileOptions{}

	prog := "rc=(" + watch.Expr + ")\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "watch", prog, watch.state(cp))
	if err != nil {
		err = &ErrWatch{Expr: watch.Expr, Err: err}
		return
	}

	rc, ok := dict["rc"]
	if !ok {
		err = &ErrWatch{Expr: watch.Expr, Err: ErrWatchExpression}
		return
	}

	hit = bool(rc.Truth())
	return
}
