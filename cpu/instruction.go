package cpu

import (
	"fmt"
	"strings"
)

// Operand kinds, one character per operand byte.
const (
	ARG_REG = 'r' // Register index.
	ARG_IMM = 'i' // Immediate value.
)

// Handler executes an instruction with its operand bytes.
// Operands beyond the instruction's operand count are zero.
type Handler func(cpu *Cpu, a, b uint8) error

// Instruction is an entry of the dispatch table.
type Instruction struct {
	Code    Code
	Name    string // Mnemonic.
	Args    string // Operand kinds.
	Handler Handler
}

// Format returns the assembly text of the instruction with its operands.
func (inst *Instruction) Format(operands ...uint8) string {
	words := []string{inst.Name}
	for n, kind := range inst.Args {
		var value uint8
		if n < len(operands) {
			value = operands[n]
		}
		switch kind {
		case ARG_REG:
			words = append(words, fmt.Sprintf("r%d", value))
		default:
			words = append(words, fmt.Sprintf("%d", value))
		}
	}

	return strings.Join(words, " ")
}

var _instructions = []Instruction{
	{OP_NOP, "nop", "", opNop},
	{OP_HLT, "hlt", "", opHlt},
	{OP_LDI, "ldi", "ri", opLdi},
	{OP_LD, "ld", "rr", opLd},
	{OP_ST, "st", "rr", opSt},
	{OP_PRN, "prn", "r", opPrn},
	{OP_ADD, "add", "rr", opAdd},
	{OP_MUL, "mul", "rr", opMul},
	{OP_CMP, "cmp", "rr", opCmp},
	{OP_PUSH, "push", "r", opPush},
	{OP_POP, "pop", "r", opPop},
	{OP_CALL, "call", "r", opCall},
	{OP_RET, "ret", "", opRet},
	{OP_JMP, "jmp", "r", opJmp},
	{OP_JEQ, "jeq", "r", opJeq},
	{OP_JNE, "jne", "r", opJne},
}

// The dispatch table is indexed by instruction byte, and never modified
// after init.
var _dispatch [256]*Instruction

func init() {
	for n := range _instructions {
		inst := &_instructions[n]
		if len(inst.Args) != inst.Code.Operands() {
			panic(fmt.Sprintf("%v: %d operand kinds for %d operands", inst.Name, len(inst.Args), inst.Code.Operands()))
		}
		_dispatch[inst.Code] = inst
	}
}

// Decode returns the dispatch table entry for an instruction byte.
func Decode(code Code) (inst *Instruction, err error) {
	inst = _dispatch[code]
	if inst == nil {
		err = ErrDecode
	}

	return
}

func opNop(cpu *Cpu, _, _ uint8) error {
	return nil
}

func opHlt(cpu *Cpu, _, _ uint8) error {
	cpu.halt()
	return nil
}

func opLdi(cpu *Cpu, reg, value uint8) error {
	return cpu.setRegister(reg, value)
}

func opLd(cpu *Cpu, reg_a, reg_b uint8) (err error) {
	err = cpu.writable(reg_a)
	if err != nil {
		return
	}
	addr, err := cpu.Register.Get(reg_b)
	if err != nil {
		return
	}
	value, err := cpu.Memory.Read(uint(addr))
	if err != nil {
		return
	}
	return cpu.setRegister(reg_a, value)
}

func opSt(cpu *Cpu, reg_a, reg_b uint8) (err error) {
	addr, err := cpu.Register.Get(reg_a)
	if err != nil {
		return
	}
	value, err := cpu.Register.Get(reg_b)
	if err != nil {
		return
	}
	return cpu.Memory.Write(uint(addr), value)
}

func opPrn(cpu *Cpu, reg, _ uint8) (err error) {
	value, err := cpu.Register.Get(reg)
	if err != nil {
		return
	}
	if cpu.Output == nil {
		return
	}
	return cpu.Output.Send(value)
}

func opAdd(cpu *Cpu, reg_a, reg_b uint8) error {
	return cpu.alu(ALU_OP_ADD, reg_a, reg_b)
}

func opMul(cpu *Cpu, reg_a, reg_b uint8) error {
	return cpu.alu(ALU_OP_MUL, reg_a, reg_b)
}

func opCmp(cpu *Cpu, reg_a, reg_b uint8) error {
	return cpu.alu(ALU_OP_CMP, reg_a, reg_b)
}

func opPush(cpu *Cpu, reg, _ uint8) (err error) {
	value, err := cpu.Register.Get(reg)
	if err != nil {
		return
	}
	return cpu.push(value)
}

func opPop(cpu *Cpu, reg, _ uint8) (err error) {
	err = cpu.writable(reg)
	if err != nil {
		return
	}
	value, err := cpu.pop()
	if err != nil {
		return
	}
	return cpu.setRegister(reg, value)
}

func opCall(cpu *Cpu, reg, _ uint8) (err error) {
	target, err := cpu.Register.Get(reg)
	if err != nil {
		return
	}
	// Return past the CALL and its operand, which must be addressable
	// by an 8-bit register.
	next := uint(cpu.Pc) + 2
	if next > 0xff {
		err = ErrAddress{Space: "memory", Address: next, Limit: 0x100}
		return
	}
	ret := uint8(next)
	err = cpu.push(ret)
	if err != nil {
		return
	}
	cpu.Register[REG_RETURN] = ret
	cpu.Pc = uint16(target)
	return
}

func opRet(cpu *Cpu, _, _ uint8) (err error) {
	ret, err := cpu.pop()
	if err != nil {
		return
	}
	cpu.Register[REG_RETURN] = ret
	cpu.Pc = uint16(ret)
	return
}

func (cpu *Cpu) jumpIf(cond bool, reg uint8) (err error) {
	target, err := cpu.Register.Get(reg)
	if err != nil {
		return
	}
	if cond {
		cpu.Pc = uint16(target)
	} else {
		cpu.Pc += 2
	}
	return
}

func opJmp(cpu *Cpu, reg, _ uint8) error {
	return cpu.jumpIf(true, reg)
}

func opJeq(cpu *Cpu, reg, _ uint8) error {
	return cpu.jumpIf(cpu.Flags.Has(FL_EQ), reg)
}

func opJne(cpu *Cpu, reg, _ uint8) error {
	return cpu.jumpIf(!cpu.Flags.Has(FL_EQ), reg)
}
