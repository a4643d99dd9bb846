package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// IMAGE_DIGITS is the number of binary digits per image line.
const IMAGE_DIGITS = 8

// Image is a program image, one byte per non-comment line.
type Image struct {
	Bytes []uint8
	Lines []int // Source line number of each byte.
}

// LoadImage parses a program image.
// Empty lines and lines starting with '#' are skipped. Every other line
// starts with an 8 digit binary literal, optionally followed by
// whitespace and a comment.
func LoadImage(input io.Reader) (img *Image, err error) {
	img = &Image{}

	scanner := bufio.NewScanner(input)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		text := strings.TrimSpace(line)
		if len(text) == 0 || text[0] == '#' {
			continue
		}

		var value uint8
		value, err = parseImageLine(text)
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: errors.Join(ErrProgramLoad, err)}
			img = nil
			return
		}

		img.Bytes = append(img.Bytes, value)
		img.Lines = append(img.Lines, lineno)
	}

	err = scanner.Err()
	if err != nil {
		err = errors.Join(ErrProgramLoad, err)
		img = nil
		return
	}

	return
}

func parseImageLine(text string) (value uint8, err error) {
	if len(text) < IMAGE_DIGITS {
		err = ErrImageBinary
		return
	}

	rest := text[IMAGE_DIGITS:]
	if len(rest) > 0 && !strings.ContainsRune(" \t#", rune(rest[0])) {
		err = ErrImageBinary
		return
	}

	digits := text[:IMAGE_DIGITS]
	value64, err := strconv.ParseUint(digits, 2, 8)
	if err != nil {
		err = errors.Join(ErrImageBinary, err)
		return
	}

	value = uint8(value64)
	return
}

// LineNo returns the source line of the byte at an address, or 0 if the
// address is outside of the image.
func (img *Image) LineNo(addr uint) int {
	if img == nil || addr >= uint(len(img.Lines)) {
		return 0
	}

	return img.Lines[addr]
}

// Disassemble returns an iterator of the address and assembly text of
// each instruction in the image. Bytes that do not decode are listed as
// data.
func (img *Image) Disassemble() iter.Seq2[uint, string] {
	return func(yield func(addr uint, text string) bool) {
		if img == nil {
			return
		}
		for addr := uint(0); addr < uint(len(img.Bytes)); {
			code := Code(img.Bytes[addr])
			inst, err := Decode(code)
			if err != nil {
				if !yield(addr, fmt.Sprintf(".byte 0b%08b", uint8(code))) {
					return
				}
				addr++
				continue
			}

			var operands []uint8
			for n := range code.Operands() {
				if addr+1+uint(n) < uint(len(img.Bytes)) {
					operands = append(operands, img.Bytes[addr+1+uint(n)])
				}
			}
			if !yield(addr, inst.Format(operands...)) {
				return
			}
			addr += uint(code.Operands()) + 1
		}
	}
}
