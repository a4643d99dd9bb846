package cpu

// AluOp is an ALU operation type.
type AluOp int

//go:generate go tool stringer -linecomment -type=AluOp
const (
	ALU_OP_ADD = AluOp(0) // add
	ALU_OP_MUL = AluOp(1) // mul
	ALU_OP_CMP = AluOp(2) // cmp
)

// Alu performs an operation on two register values.
// Arithmetic wraps modulo 256. Comparisons leave the output unchanged,
// and return exactly one of FL_LT, FL_GT or FL_EQ.
func Alu(op AluOp, a, b uint8) (output uint8, flags Flag, err error) {
	output = a

	switch op {
	case ALU_OP_ADD:
		output = a + b
	case ALU_OP_MUL:
		output = a * b
	case ALU_OP_CMP:
		switch {
		case a < b:
			flags = FL_LT
		case a > b:
			flags = FL_GT
		default:
			flags = FL_EQ
		}
	default:
		err = ErrAluOp(op)
	}

	return
}
