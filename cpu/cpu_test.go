package cpu

import (
	"errors"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/ls8/io"
)

// newTestCpu creates a CPU with a program in memory, printing to a
// Temporary channel.
func newTestCpu(t *testing.T, program ...uint8) (cpu *Cpu, output *io.Temporary) {
	output = &io.Temporary{Capacity: 1024}

	cpu = NewCpu(DefaultConfig())
	cpu.Output = output
	cpu.Reset()

	err := cpu.Load(&Image{Bytes: program})
	require.NoError(t, err)

	return
}

// runTestCpu runs a program until it halts.
func runTestCpu(t *testing.T, program ...uint8) (cpu *Cpu, printed []uint8) {
	cpu, output := newTestCpu(t, program...)

	for ticks := 0; !cpu.State.Done(); ticks++ {
		require.Less(t, ticks, 1000, "runaway program")
		require.NoError(t, cpu.Tick(), cpu.String())
	}

	printed = output.Data
	return
}

func TestCpu_Reset(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(Config{})

	assert.Equal(uint(MEMORY_SIZE), cpu.Memory.Size())
	assert.Equal(uint16(0), cpu.Pc)
	assert.Equal(STATE_READY, cpu.State)
	assert.Equal(uint8(0), cpu.Sp(), "zero config has zero stack pointer")

	cpu = NewCpu(DefaultConfig())
	assert.Equal(uint8(SP_INIT), cpu.Sp())
	for n := range REG_SP {
		assert.Equal(uint8(0), cpu.Register[n])
	}

	cpu.Register[0] = 1
	cpu.Memory.Data[5] = 2
	cpu.Pc = 7
	cpu.Flags = FL_EQ
	cpu.Ticks = 3
	cpu.Reset()

	assert.Equal(uint8(0), cpu.Register[0])
	assert.Equal(uint8(0), cpu.Memory.Data[5])
	assert.Equal(uint16(0), cpu.Pc)
	assert.Equal(Flag(0), cpu.Flags)
	assert.Equal(0, cpu.Ticks)
	assert.Equal(uint8(SP_INIT), cpu.Sp())
}

func TestCpu_Print8(t *testing.T) {
	assert := assert.New(t)

	cpu, printed := runTestCpu(t,
		uint8(OP_LDI), 0, 8,
		uint8(OP_PRN), 0,
		uint8(OP_HLT),
	)

	assert.Equal([]uint8{8}, printed)
	assert.Equal(STATE_HALTED, cpu.State)
	assert.Equal(uint16(5), cpu.Pc)
	assert.Equal(3, cpu.Ticks)
	assert.True(cpu.Output.(*io.Temporary).Halted())

	// The PC does not move after a halt.
	assert.ErrorIs(cpu.Tick(), ErrHalted)
	assert.Equal(uint16(5), cpu.Pc)
	assert.Equal(STATE_HALTED, cpu.State)
}

func TestCpu_Mult(t *testing.T) {
	assert := assert.New(t)

	_, printed := runTestCpu(t,
		uint8(OP_LDI), 0, 9,
		uint8(OP_LDI), 1, 10,
		uint8(OP_MUL), 0, 1,
		uint8(OP_PRN), 0,
		uint8(OP_HLT),
	)

	assert.Equal([]uint8{90}, printed)
}

func TestCpu_LoadPrint(t *testing.T) {
	assert := assert.New(t)

	for reg := range uint8(REG_SP) {
		for value := 0; value < 256; value += 3 {
			_, printed := runTestCpu(t,
				uint8(OP_LDI), reg, uint8(value),
				uint8(OP_PRN), reg,
				uint8(OP_HLT),
			)
			assert.Equal([]uint8{uint8(value)}, printed, "r%d %d", reg, value)
		}
	}
}

func TestCpu_MulWraps(t *testing.T) {
	assert := assert.New(t)

	for a := 0; a < 256; a += 13 {
		for b := 0; b < 256; b += 11 {
			cpu, _ := runTestCpu(t,
				uint8(OP_LDI), 2, uint8(a),
				uint8(OP_LDI), 3, uint8(b),
				uint8(OP_MUL), 2, 3,
				uint8(OP_HLT),
			)
			assert.Equal(uint8((a*b)%256), cpu.Register[2], "%d * %d", a, b)
			assert.Equal(uint8(b), cpu.Register[3])
		}
	}
}

func TestCpu_Add(t *testing.T) {
	assert := assert.New(t)

	cpu, printed := runTestCpu(t,
		uint8(OP_LDI), 0, 200,
		uint8(OP_LDI), 1, 100,
		uint8(OP_ADD), 0, 1,
		uint8(OP_PRN), 0,
		uint8(OP_HLT),
	)

	assert.Equal([]uint8{44}, printed)
	assert.Equal(uint8(100), cpu.Register[1])
}

func TestCpu_LoadStore(t *testing.T) {
	assert := assert.New(t)

	cpu, printed := runTestCpu(t,
		uint8(OP_LDI), 0, 0x80, // address
		uint8(OP_LDI), 1, 0x5a, // value
		uint8(OP_ST), 0, 1,
		uint8(OP_LD), 2, 0,
		uint8(OP_PRN), 2,
		uint8(OP_HLT),
	)

	assert.Equal([]uint8{0x5a}, printed)
	assert.Equal(uint8(0x5a), cpu.Memory.Data[0x80])
}

func TestCpu_PushPop(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		uint8(OP_LDI), 0, 5,
		uint8(OP_PUSH), 0,
		uint8(OP_LDI), 0, 0,
		uint8(OP_POP), 0,
		uint8(OP_PRN), 0,
		uint8(OP_HLT),
	)

	assert.NoError(cpu.Tick()) // ldi
	assert.NoError(cpu.Tick()) // push
	assert.Equal(uint8(SP_INIT-1), cpu.Sp())
	assert.Equal(uint8(5), cpu.Memory.Data[SP_INIT-1])

	assert.NoError(cpu.Tick()) // ldi
	assert.Equal(uint8(0), cpu.Register[0])

	assert.NoError(cpu.Tick()) // pop
	assert.Equal(uint8(SP_INIT), cpu.Sp())
	assert.Equal(uint8(5), cpu.Register[0])

	assert.NoError(cpu.Run())
	assert.Equal([]uint8{5}, cpu.Output.(*io.Temporary).Data)
}

func TestCpu_PushPopRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for reg := range uint8(REG_SP) {
		for _, value := range []uint8{0, 1, 0x7f, 0x80, 0xff} {
			cpu, _ := runTestCpu(t,
				uint8(OP_LDI), reg, value,
				uint8(OP_PUSH), reg,
				uint8(OP_POP), reg,
				uint8(OP_HLT),
			)
			assert.Equal(value, cpu.Register[reg])
			assert.Equal(uint8(SP_INIT), cpu.Sp())
		}
	}
}

func TestCpu_CallReturn(t *testing.T) {
	assert := assert.New(t)

	cpu, printed := runTestCpu(t,
		uint8(OP_LDI), 1, 10, // 0: subroutine address
		uint8(OP_CALL), 1, // 3
		uint8(OP_PRN), 0, // 5
		uint8(OP_HLT), // 7
		0, 0,          // 8
		uint8(OP_LDI), 0, 42, // 10: subroutine
		uint8(OP_RET), // 13
	)

	assert.Equal([]uint8{42}, printed)
	assert.Equal(uint8(SP_INIT), cpu.Sp())
	assert.Equal(uint8(5), cpu.Register[REG_RETURN])
	assert.Equal(uint8(5), cpu.Memory.Data[SP_INIT-1])
	assert.Equal(uint16(7), cpu.Pc)
}

func TestCpu_CallNested(t *testing.T) {
	assert := assert.New(t)

	cpu, printed := runTestCpu(t,
		uint8(OP_LDI), 1, 10, // 0: outer
		uint8(OP_LDI), 2, 17, // 3: inner
		uint8(OP_CALL), 1, // 6
		uint8(OP_HLT),    // 8
		0,                // 9
		uint8(OP_PRN), 1, // 10: outer
		uint8(OP_CALL), 2, // 12
		uint8(OP_PRN), 1, // 14
		uint8(OP_RET),    // 16
		uint8(OP_PRN), 2, // 17: inner
		uint8(OP_RET), // 19
	)

	assert.Equal([]uint8{10, 17, 10}, printed)
	assert.Equal(uint8(SP_INIT), cpu.Sp())
	assert.Equal(uint16(8), cpu.Pc)
}

func TestCpu_Compare(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		a, b  uint8
		flags Flag
	}){
		{1, 2, FL_LT},
		{2, 1, FL_GT},
		{3, 3, FL_EQ},
	}

	for _, entry := range table {
		cpu, _ := runTestCpu(t,
			uint8(OP_LDI), 0, entry.a,
			uint8(OP_LDI), 1, entry.b,
			uint8(OP_CMP), 0, 1,
			uint8(OP_HLT),
		)
		assert.Equal(entry.flags, cpu.Flags)
		assert.Equal(entry.a, cpu.Register[0])
		assert.Equal(entry.b, cpu.Register[1])
	}
}

func TestCpu_CompareResetsFlags(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := runTestCpu(t,
		uint8(OP_LDI), 0, 1,
		uint8(OP_LDI), 1, 2,
		uint8(OP_CMP), 0, 1, // lt
		uint8(OP_CMP), 1, 0, // gt
		uint8(OP_HLT),
	)

	assert.Equal(FL_GT, cpu.Flags)
}

func TestCpu_Branch(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		op      Code
		b       uint8
		printed []uint8
	}){
		{"jeq taken", OP_JEQ, 10, []uint8{10}},
		{"jeq not taken", OP_JEQ, 11, []uint8{1, 10}},
		{"jne taken", OP_JNE, 11, []uint8{10}},
		{"jne not taken", OP_JNE, 10, []uint8{1, 10}},
		{"jmp", OP_JMP, 11, []uint8{10}},
	}

	for _, entry := range table {
		_, printed := runTestCpu(t,
			uint8(OP_LDI), 0, 10, // 0
			uint8(OP_LDI), 1, entry.b, // 3
			uint8(OP_LDI), 2, 19, // 6: branch target
			uint8(OP_CMP), 0, 1, // 9
			uint8(entry.op), 2, // 12
			uint8(OP_LDI), 3, 1, // 14
			uint8(OP_PRN), 3, // 17
			uint8(OP_PRN), 0, // 19
			uint8(OP_HLT), // 21
		)
		assert.Equal(entry.printed, printed, entry.name)
	}
}

func TestCpu_Loop(t *testing.T) {
	assert := assert.New(t)

	// Count r0 from 0 to 5, printing each value.
	_, printed := runTestCpu(t,
		uint8(OP_LDI), 1, 1, // 0: increment
		uint8(OP_LDI), 2, 5, // 3: limit
		uint8(OP_LDI), 3, 9, // 6: loop address
		uint8(OP_ADD), 0, 1, // 9: loop
		uint8(OP_PRN), 0, // 12
		uint8(OP_CMP), 0, 2, // 14
		uint8(OP_JNE), 3, // 17
		uint8(OP_HLT), // 19
	)

	assert.Equal([]uint8{1, 2, 3, 4, 5}, printed)
}

func TestCpu_DecodeFailure(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		uint8(OP_LDI), 0, 8,
		0xff,
		uint8(OP_HLT),
	)

	assert.NoError(cpu.Tick())

	memory := slices.Clone(cpu.Memory.Data)
	registers := cpu.Register
	flags := cpu.Flags

	err := cpu.Tick()
	assert.ErrorIs(err, ErrDecode)

	var eo ErrOpcode
	assert.True(errors.As(err, &eo))
	assert.Equal(ErrOpcode(0xff), eo)

	assert.Equal(STATE_FAULTED, cpu.State)
	assert.Equal(uint16(3), cpu.Pc)
	assert.Equal(memory, cpu.Memory.Data)
	assert.Equal(registers, cpu.Register)
	assert.Equal(flags, cpu.Flags)

	// Faults are terminal.
	assert.Equal(err, cpu.Tick())
	assert.Equal(err, cpu.Run())
	assert.Equal(uint16(3), cpu.Pc)
}

func TestCpu_RegisterProtected(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []uint8
	}){
		{"ldi", []uint8{uint8(OP_LDI), REG_SP, 3}},
		{"pop", []uint8{uint8(OP_POP), REG_SP}},
		{"mul", []uint8{uint8(OP_MUL), REG_SP, 0}},
		{"add", []uint8{uint8(OP_ADD), REG_SP, 0}},
		{"ld", []uint8{uint8(OP_LD), REG_SP, 0}},
	}

	for _, entry := range table {
		cpu, _ := newTestCpu(t, entry.program...)

		err := cpu.Tick()
		assert.ErrorIs(err, ErrRegisterProtected, entry.name)
		assert.Equal(uint8(SP_INIT), cpu.Sp(), entry.name)
		assert.Equal(STATE_FAULTED, cpu.State, entry.name)
	}

	// Reading the stack pointer is allowed.
	_, printed := runTestCpu(t, uint8(OP_PRN), REG_SP, uint8(OP_HLT))
	assert.Equal([]uint8{SP_INIT}, printed)
}

func TestCpu_OutOfBounds(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		size    uint
		program []uint8
	}){
		{"register", MEMORY_SIZE, []uint8{uint8(OP_LDI), 8, 1}},
		{"register operand b", MEMORY_SIZE, []uint8{uint8(OP_MUL), 0, 9}},
		{"operand", 4, []uint8{uint8(OP_LDI), 0, 8, uint8(OP_PRN)}},
		{"jump", 16, []uint8{uint8(OP_LDI), 0, 200, uint8(OP_JMP), 0}},
		{"run off", 3, []uint8{uint8(OP_LDI), 0, 1}},
		{"push", 16, []uint8{uint8(OP_PUSH), 0}},
		{"store", 16, []uint8{uint8(OP_LDI), 0, 0x20, uint8(OP_ST), 0, 0}},
		{"call return", MEMORY_SIZE, callAtTop()},
	}

	for _, entry := range table {
		config := DefaultConfig()
		config.MemorySize = entry.size
		cpu := NewCpu(config)
		cpu.Output = &io.Temporary{}
		assert.NoError(cpu.Load(&Image{Bytes: entry.program}), entry.name)

		err := cpu.Run()
		assert.ErrorIs(err, ErrOutOfBounds, entry.name)
		assert.Equal(STATE_FAULTED, cpu.State, entry.name)
		assert.Equal(err, cpu.Fault, entry.name)
	}
}

// callAtTop jumps to a CALL in the last two bytes of memory, whose
// subroutine returns.
func callAtTop() (program []uint8) {
	program = make([]uint8, MEMORY_SIZE)
	copy(program, []uint8{
		uint8(OP_LDI), 1, 0x10,
		uint8(OP_LDI), 2, 0xfe,
		uint8(OP_JMP), 2,
	})
	program[0x10] = uint8(OP_RET)
	program[0xfe] = uint8(OP_CALL)
	program[0xff] = 1
	return
}

func TestCpu_CallAtTop(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(DefaultConfig())
	cpu.Output = &io.Temporary{}
	assert.NoError(cpu.Load(&Image{Bytes: callAtTop()}))

	err := cpu.Run()
	assert.ErrorIs(err, ErrOutOfBounds)
	assert.ErrorIs(err, ErrOpcode(OP_CALL))

	var ea ErrAddress
	assert.ErrorAs(err, &ea)
	assert.Equal(uint(0x100), ea.Address)

	assert.Equal(uint16(0xfe), cpu.Pc)
	assert.Equal(uint8(SP_INIT), cpu.Sp())
	assert.Equal(uint8(0), cpu.Register[REG_RETURN])
}

func TestConfig_Validate(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		size uint
		ok   bool
	}){
		{0, false},
		{1, true},
		{16, true},
		{MEMORY_SIZE, true},
		{MEMORY_SIZE + 1, false},
		{0x10000, false},
	}

	for _, entry := range table {
		config := DefaultConfig()
		config.MemorySize = entry.size
		err := config.Validate()
		if entry.ok {
			assert.NoError(err, entry.size)
		} else {
			assert.ErrorIs(err, ErrMemorySize, entry.size)
		}
	}

	assert.NoError(DefaultConfig().Validate())
}

func TestCpu_Defines(t *testing.T) {
	assert := assert.New(t)

	defines := maps.Collect(NewCpu(DefaultConfig()).Defines())
	assert.Equal("0x1", defines["FL_EQ"])
	assert.Equal("0x2", defines["FL_GT"])
	assert.Equal("0x4", defines["FL_LT"])
	assert.Equal("0xf4", defines["SP_INIT"])
	assert.Equal("0x7", defines["REG_SP"])
	assert.Equal("0x100", defines["MEMORY_SIZE"])
}

func TestCpu_OutputFull(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(t,
		uint8(OP_PRN), 0,
		uint8(OP_PRN), 0,
		uint8(OP_HLT),
	)
	output.Capacity = 1

	err := cpu.Run()
	assert.ErrorIs(err, io.ErrChannelFull)
	assert.Equal(uint16(2), cpu.Pc)
}

func TestCpu_NoOutput(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(DefaultConfig())
	assert.NoError(cpu.Load(&Image{Bytes: []uint8{uint8(OP_PRN), 0, uint8(OP_HLT)}}))
	assert.NoError(cpu.Run())
	assert.Equal(STATE_HALTED, cpu.State)
}

func TestCpu_LoadTooLarge(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(Config{MemorySize: 4})
	err := cpu.Load(&Image{Bytes: make([]uint8, 5)})
	assert.ErrorIs(err, ErrProgramLoad)
	assert.ErrorIs(err, ErrImageTooLarge)
}

func TestCpu_Trace(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, uint8(OP_LDI), 0, 8, uint8(OP_HLT))

	assert.Equal("TRACE: 00 | 82 00 08 | 00 00 00 00 00 00 00 F4", cpu.Trace())

	assert.NoError(cpu.Tick())
	assert.Equal("TRACE: 03 | 01 00 00 | 08 00 00 00 00 00 00 F4", cpu.Trace())

	text := cpu.String()
	assert.Contains(text, "pc: 03")
	assert.Contains(text, "ir: 00000001 hlt")
	assert.Contains(text, "r0: 08")
	assert.Contains(text, "sp: F4")
	assert.Contains(text, "state: running")
}
