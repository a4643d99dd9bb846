package io

import (
	"io"
	"log"

	"github.com/ezrec/ls8/translate"
)

// Tape writes each value sent to it as a decimal line on Output.
type Tape struct {
	AlertChannel
	Verbose bool // Set to log output errors that cannot be returned.
	Output  io.Writer

	Written int // Values written since the last rewind.
}

var _ Channel = (*Tape)(nil)

// Rewind is not possible on a tape, only the counters are reset.
func (tc *Tape) Rewind() {
	tc.AlertChannel.Rewind()
	tc.Written = 0
}

// Send writes a value as one line of text.
func (tc *Tape) Send(value uint8) (err error) {
	if tc.Output == nil {
		err = ErrChannelOutput
		return
	}

	_, err = translate.Fprintf(tc.Output, "%d\n", value)
	if err != nil {
		return
	}

	tc.Written++

	return
}

// Alert records the request, and announces a halt on the output.
func (tc *Tape) Alert(request uint32) {
	tc.AlertChannel.Alert(request)

	if request == ALERT_HALT && tc.Output != nil {
		// Alert has no error return, the next Send reports a broken writer.
		_, err := translate.Fprintf(tc.Output, "%v\n", f("Program complete"))
		if err != nil && tc.Verbose {
			log.Printf("tape: alert 0x%x: %v", request, err)
		}
	}
}
