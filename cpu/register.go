package cpu

// Register bank layout.
const (
	REG_COUNT  = 8    // General-purpose registers.
	REG_RETURN = 4    // CALL saves the return address here.
	REG_SP     = 7    // Stack pointer.
	SP_INIT    = 0xf4 // Stack pointer after reset.
)

// Registers is the register bank.
type Registers [REG_COUNT]uint8

func (regs *Registers) check(index uint8) (err error) {
	if int(index) >= len(regs) {
		err = ErrAddress{Space: "register", Address: uint(index), Limit: uint(len(regs))}
	}
	return
}

// Get returns the value of a register.
func (regs *Registers) Get(index uint8) (value uint8, err error) {
	err = regs.check(index)
	if err != nil {
		return
	}

	value = regs[index]
	return
}

// Set stores a value into a register.
func (regs *Registers) Set(index uint8, value uint8) (err error) {
	err = regs.check(index)
	if err != nil {
		return
	}

	regs[index] = value
	return
}
