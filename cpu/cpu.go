package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/ls8/io"
)

// Channel is an output channel interface.
type Channel io.Channel

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%#x", MEMORY_SIZE),
	"REG_SP":      fmt.Sprintf("%#x", REG_SP),
	"REG_RETURN":  fmt.Sprintf("%#x", REG_RETURN),
	"SP_INIT":     fmt.Sprintf("%#x", SP_INIT),
	"FL_EQ":       fmt.Sprintf("%#x", uint8(FL_EQ)),
	"FL_GT":       fmt.Sprintf("%#x", uint8(FL_GT)),
	"FL_LT":       fmt.Sprintf("%#x", uint8(FL_LT)),
}

// Config sizes a new CPU.
// Memory may be smaller than MEMORY_SIZE, but not larger, as every
// address must fit in an 8-bit register.
type Config struct {
	MemorySize uint  // Bytes of memory.
	StackInit  uint8 // Stack pointer after reset.
}

// Validate checks that the configuration is addressable.
func (config Config) Validate() (err error) {
	if config.MemorySize == 0 || config.MemorySize > MEMORY_SIZE {
		err = errors.Join(ErrMemorySize,
			ErrAddress{Space: "memory", Address: config.MemorySize, Limit: MEMORY_SIZE + 1})
		return
	}

	return
}

// DefaultConfig returns the standard LS-8 configuration.
func DefaultConfig() Config {
	return Config{
		MemorySize: MEMORY_SIZE,
		StackInit:  SP_INIT,
	}
}

// Cpu is the simulation context for the LS-8 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Output Channel // Destination of PRN values and the HLT alert.

	Memory   *Memory   // Main memory.
	Register Registers // Register bank, r7 is the stack pointer.
	Pc       uint16    // Address of the next instruction byte.
	Flags    Flag      // Result of the last CMP.

	State State // Execution state.
	Fault error // Error that moved the CPU to STATE_FAULTED.
	Ticks int   // Instructions executed since reset.

	config Config
}

// NewCpu creates a new CPU, in the reset state.
func NewCpu(config Config) (cpu *Cpu) {
	if config.MemorySize == 0 {
		config.MemorySize = MEMORY_SIZE
	}

	cpu = &Cpu{
		Memory: NewMemory(config.MemorySize),
		config: config,
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears memory, the registers and the flags.
// - Sets the stack pointer to the top of the stack.
// - Zeros the PC and the tick counter.
// - Rewinds the output channel.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	clear(cpu.Register[:])
	cpu.Register[REG_SP] = cpu.config.StackInit
	cpu.Pc = 0
	cpu.Flags = 0
	cpu.State = STATE_READY
	cpu.Fault = nil
	cpu.Ticks = 0

	if cpu.Output != nil {
		cpu.Output.Rewind()
	}
}

// Load copies a program image into memory, starting at address 0.
func (cpu *Cpu) Load(image *Image) (err error) {
	if uint(len(image.Bytes)) > cpu.Memory.Size() {
		err = errors.Join(ErrProgramLoad, ErrImageTooLarge)
		return
	}

	copy(cpu.Memory.Data, image.Bytes)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(image.Bytes))
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc", "ir", "fl",
		"r0", "r1", "r2", "r3", "r4", "r5", "r6",
		"sp", "state",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02X", cpu.Pc)
		case "ir":
			code := Code(cpu.Memory.Peek(uint(cpu.Pc)))
			strval = fmt.Sprintf("%08b %v", uint8(code), code)
		case "fl":
			strval = cpu.Flags.String()
		case "r0", "r1", "r2", "r3", "r4", "r5", "r6":
			val := cpu.Register[byte(reg[1]-'0')]
			strval = fmt.Sprintf("%02X", val)
		case "sp":
			strval = fmt.Sprintf("%02X", cpu.Sp())
		case "state":
			strval = cpu.State.String()
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Trace returns a single line summary of the PC, the bytes at the PC and
// the register bank.
func (cpu *Cpu) Trace() (text string) {
	pc := uint(cpu.Pc)
	text = fmt.Sprintf("TRACE: %02X | %02X %02X %02X |", pc,
		cpu.Memory.Peek(pc), cpu.Memory.Peek(pc+1), cpu.Memory.Peek(pc+2))
	for _, val := range cpu.Register {
		text += fmt.Sprintf(" %02X", val)
	}

	return
}

// writable checks that a register may be the destination of an instruction.
func (cpu *Cpu) writable(index uint8) (err error) {
	err = cpu.Register.check(index)
	if err != nil {
		return
	}

	if index == REG_SP {
		err = errors.Join(ErrRegisterProtected, fmt.Errorf("r%d", index))
	}

	return
}

// setRegister stores an instruction result into a register.
func (cpu *Cpu) setRegister(index uint8, value uint8) (err error) {
	err = cpu.writable(index)
	if err != nil {
		return
	}

	cpu.Register[index] = value
	return
}

// alu performs an ALU operation on two registers.
// Arithmetic results are stored in the first register, comparisons
// replace the flags.
func (cpu *Cpu) alu(op AluOp, reg_a, reg_b uint8) (err error) {
	a, err := cpu.Register.Get(reg_a)
	if err != nil {
		return
	}
	b, err := cpu.Register.Get(reg_b)
	if err != nil {
		return
	}

	output, flags, err := Alu(op, a, b)
	if err != nil {
		return
	}

	if op == ALU_OP_CMP {
		cpu.Flags = flags
		return
	}

	return cpu.setRegister(reg_a, output)
}

// halt stops the CPU, and alerts the output channel.
func (cpu *Cpu) halt() {
	cpu.State = STATE_HALTED

	if cpu.Output != nil {
		cpu.Output.Alert(io.ALERT_HALT)
	}

	if cpu.Verbose {
		log.Printf("cpu: halt at %02X", cpu.Pc)
	}
}

// Fetch decodes the instruction at the PC, and reads its operands.
func (cpu *Cpu) Fetch() (inst *Instruction, operands [2]uint8, err error) {
	ir, err := cpu.Memory.Read(uint(cpu.Pc))
	if err != nil {
		return
	}

	code := Code(ir)
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	inst, err = Decode(code)
	if err != nil {
		return
	}

	for n := range code.Operands() {
		operands[n], err = cpu.Memory.Read(uint(cpu.Pc) + 1 + uint(n))
		if err != nil {
			return
		}
	}

	return
}

// Execute runs a single decoded instruction, and advances the PC past it
// unless the instruction positioned the PC itself.
func (cpu *Cpu) Execute(inst *Instruction, a, b uint8) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(inst.Code), err)
		}
	}()

	err = inst.Handler(cpu, a, b)
	if err != nil {
		return
	}

	cpu.Ticks++

	if cpu.State == STATE_HALTED || inst.Code.SetsPc() {
		return
	}

	cpu.Pc += uint16(inst.Code.Operands()) + 1

	return
}

// Tick executes a single fetch, decode and execute cycle.
// Any error moves the CPU to STATE_FAULTED; later ticks return the same
// error. Ticks after HLT return ErrHalted.
func (cpu *Cpu) Tick() (err error) {
	switch cpu.State {
	case STATE_HALTED:
		return ErrHalted
	case STATE_FAULTED:
		return cpu.Fault
	}

	cpu.State = STATE_RUNNING

	defer func() {
		if err != nil {
			cpu.State = STATE_FAULTED
			cpu.Fault = err
			if cpu.Verbose {
				log.Printf("cpu: fault at %02X: %v", cpu.Pc, err)
			}
		}
	}()

	inst, operands, err := cpu.Fetch()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%v  %v", cpu.Trace(), inst.Format(operands[:]...))
	}

	err = cpu.Execute(inst, operands[0], operands[1])

	return
}

// Run ticks the CPU until it halts or faults.
func (cpu *Cpu) Run() (err error) {
	for !cpu.State.Done() {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	err = cpu.Fault
	return
}
