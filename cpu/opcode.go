package cpu

import (
	"fmt"
)

// Code is an instruction byte.
type Code uint8

// Instruction byte decode fields.
const (
	CODE_OPERANDS_SHIFT = 6           // Operand count, upper two bits.
	CODE_OPERANDS_MASK  = 0b11        // Operand count mask, after shift.
	CODE_ALU            = 0b0010_0000 // ALU instruction.
	CODE_SETS_PC        = 0b0001_0000 // Instruction sets the PC itself.
	CODE_ID_MASK        = 0b0000_1111 // Instruction identifier.
)

// Instruction bytes.
const (
	OP_NOP  = Code(0b0000_0000)
	OP_HLT  = Code(0b0000_0001)
	OP_RET  = Code(0b0001_0001)
	OP_PUSH = Code(0b0100_0101)
	OP_POP  = Code(0b0100_0110)
	OP_PRN  = Code(0b0100_0111)
	OP_CALL = Code(0b0101_0000)
	OP_JMP  = Code(0b0101_0100)
	OP_JEQ  = Code(0b0101_0101)
	OP_JNE  = Code(0b0101_0110)
	OP_LDI  = Code(0b1000_0010)
	OP_LD   = Code(0b1000_0011)
	OP_ST   = Code(0b1000_0100)
	OP_ADD  = Code(0b1010_0000)
	OP_MUL  = Code(0b1010_0010)
	OP_CMP  = Code(0b1010_0111)
)

// Operands returns the number of operand bytes following the instruction.
func (code Code) Operands() int {
	return int((code >> CODE_OPERANDS_SHIFT) & CODE_OPERANDS_MASK)
}

// IsAlu returns true if the instruction is executed by the ALU.
func (code Code) IsAlu() bool {
	return (code & CODE_ALU) != 0
}

// SetsPc returns true if the instruction positions the PC itself.
func (code Code) SetsPc() bool {
	return (code & CODE_SETS_PC) != 0
}

// Id returns the instruction identifier.
func (code Code) Id() uint8 {
	return uint8(code & CODE_ID_MASK)
}

// String returns the mnemonic of the instruction.
func (code Code) String() string {
	inst, err := Decode(code)
	if err != nil {
		return fmt.Sprintf("Code(0b%08b)", uint8(code))
	}

	return inst.Name
}
