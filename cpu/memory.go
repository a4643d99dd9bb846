package cpu

// MEMORY_SIZE is the default size of memory, in bytes.
const MEMORY_SIZE = 256

// Memory is a flat byte addressed memory.
type Memory struct {
	Data []uint8
}

// NewMemory creates a zeroed memory of the given size.
func NewMemory(size uint) (mem *Memory) {
	mem = &Memory{
		Data: make([]uint8, size),
	}

	return
}

// Size returns the number of addressable bytes.
func (mem *Memory) Size() uint {
	return uint(len(mem.Data))
}

// Reset zeros the memory.
func (mem *Memory) Reset() {
	clear(mem.Data)
}

func (mem *Memory) check(addr uint) (err error) {
	if addr >= mem.Size() {
		err = ErrAddress{Space: "memory", Address: addr, Limit: mem.Size()}
	}
	return
}

// Read returns the byte at an address.
func (mem *Memory) Read(addr uint) (value uint8, err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	value = mem.Data[addr]
	return
}

// Write sets the byte at an address.
func (mem *Memory) Write(addr uint, value uint8) (err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	mem.Data[addr] = value
	return
}

// Peek returns the byte at an address, or zero outside of memory.
func (mem *Memory) Peek(addr uint) (value uint8) {
	value, _ = mem.Read(addr)
	return
}
