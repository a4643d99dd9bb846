package cpu

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrOutOfBounds       = errors.New(f("out of bounds"))
	ErrRegisterProtected = errors.New(f("register protected"))
	ErrHalted            = errors.New(f("halted"))
	ErrMemorySize        = errors.New(f("memory size"))

	// Instruction errors
	ErrDecode         = errors.New(f("decode"))
	ErrAluUnsupported = errors.New(f("unsupported alu operation"))

	// Image errors
	ErrProgramLoad   = errors.New(f("program load"))
	ErrImageBinary   = errors.New(f("not an 8 digit binary literal"))
	ErrImageTooLarge = errors.New(f("image larger than memory"))
)

// ErrOpcode reports the instruction byte that failed.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0b%08b %v", uint8(eo), Code(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrAddress reports an access outside of memory or the register bank.
type ErrAddress struct {
	Space   string // "memory" or "register"
	Address uint
	Limit   uint
}

func (err ErrAddress) Error() string {
	return f("%v address 0x%02x outside of 0x00..0x%02x", err.Space, err.Address, err.Limit-1)
}

func (err ErrAddress) Unwrap() error {
	return ErrOutOfBounds
}

// ErrAluOp reports the ALU operation that could not be performed.
type ErrAluOp AluOp

func (err ErrAluOp) Error() string {
	return f("alu %v", AluOp(err).String())
}

func (err ErrAluOp) Unwrap() error {
	return ErrAluUnsupported
}

// ErrSyntax reports the program image line that could not be loaded.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
