package cpu

import (
	"strings"
)

// Flag is a bit of the flags register.
type Flag uint8

const (
	FL_EQ = Flag(0b001) // Equal
	FL_GT = Flag(0b010) // Greater than
	FL_LT = Flag(0b100) // Less than
)

// Has returns true if all of the flag bits are set.
func (fl Flag) Has(bits Flag) bool {
	return (fl & bits) == bits
}

// String returns the set flags, ie "E", "G", "L" or "-".
func (fl Flag) String() string {
	var sb strings.Builder
	for _, bit := range []struct {
		flag Flag
		name byte
	}{{FL_LT, 'L'}, {FL_GT, 'G'}, {FL_EQ, 'E'}} {
		if fl.Has(bit.flag) {
			sb.WriteByte(bit.name)
		}
	}

	if sb.Len() == 0 {
		return "-"
	}

	return sb.String()
}
