package io

import (
	"iter"
)

// TEMP_DEFAULT_CAPACITY is the capacity used when none is configured.
const TEMP_DEFAULT_CAPACITY = 4096

// Temporary captures values in a FIFO buffer with a fixed capacity.
type Temporary struct {
	AlertChannel
	Capacity int // Capacity in values.

	Data []uint8
}

var _ Channel = (*Temporary)(nil)

// Rewind empties the buffer and forgets all alerts.
func (temp *Temporary) Rewind() {
	temp.AlertChannel.Rewind()

	if temp.Capacity == 0 {
		temp.Capacity = TEMP_DEFAULT_CAPACITY
	}
	temp.Data = make([]uint8, 0, min(temp.Capacity, 256))
}

// Receive returns an iterator that yields and removes values until empty.
func (temp *Temporary) Receive() iter.Seq[uint8] {
	return func(yield func(value uint8) bool) {
		for len(temp.Data) > 0 {
			value := temp.Data[0]
			temp.Data = temp.Data[1:]
			if !yield(value) {
				return
			}
		}
	}
}

// Send appends a value to the buffer.
// Returns ErrChannelFull if the buffer has reached capacity.
func (temp *Temporary) Send(value uint8) (err error) {
	if temp.Capacity == 0 {
		temp.Capacity = TEMP_DEFAULT_CAPACITY
	}

	if len(temp.Data) >= temp.Capacity {
		err = ErrChannelFull
		return
	}

	temp.Data = append(temp.Data, value)

	return
}
