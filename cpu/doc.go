// Package cpu implements the LS-8 processor.
//
// The LS-8 is an 8-bit machine with a flat 256 byte memory, eight
// general-purpose registers (r0-r7, with r7 holding the stack pointer),
// a program counter (PC) and a flags register (FL) written by CMP.
//
// Each instruction byte carries its own decode information: the upper two
// bits are the operand count, bit 5 marks ALU instructions, bit 4 marks
// instructions that set the PC themselves, and the low four bits identify
// the operation.
//
// The package also loads program images: text files with one 8-digit
// binary literal per line.
package cpu
