// Package io provides the output channels the LS-8 processor prints to.
// It includes a Tape that writes values as text to an io.Writer, and a
// bounded Temporary buffer that captures values for inspection.
package io

import (
	"fmt"
	"iter"
	"maps"
)

// Alert requests understood by the channels.
const (
	ALERT_HALT = uint32(1) // Processor executed HLT.
)

var _io_defines = map[string]string{
	"ALERT_HALT": fmt.Sprintf("%#x", ALERT_HALT),
}

// Channel defines the interface for all output channels.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Send writes a single byte value to the channel.
	Send(value uint8) error
	// Alert sends a control message to the channel.
	Alert(request uint32)
}

// Defines returns an iter of defines for the channels.
func Defines() iter.Seq2[string, string] {
	return maps.All(_io_defines)
}
