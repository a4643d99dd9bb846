package cpu

// Sp returns the stack pointer.
func (cpu *Cpu) Sp() uint8 {
	return cpu.Register[REG_SP]
}

// push decrements the stack pointer, then stores the value at it.
// The stack pointer is unchanged if the store fails.
func (cpu *Cpu) push(value uint8) (err error) {
	sp := cpu.Sp() - 1
	err = cpu.Memory.Write(uint(sp), value)
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp
	return
}

// pop loads the value at the stack pointer, then increments it.
func (cpu *Cpu) pop() (value uint8, err error) {
	sp := cpu.Sp()
	value, err = cpu.Memory.Read(uint(sp))
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp + 1
	return
}
