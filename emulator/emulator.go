// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/io"
)

const (
	TEMP_CAPACITY = 4096 // Values captured when no tape output is set.
)

var _emulator_defines = map[string]string{
	"TEMP_CAPACITY": fmt.Sprintf("%v", TEMP_CAPACITY),
}

// Stop is the reason Run returned.
type Stop int

//go:generate go tool stringer -linecomment -type=Stop
const (
	STOP_HALTED   = Stop(0) // halted
	STOP_FAULTED  = Stop(1) // faulted
	STOP_WATCH    = Stop(2) // watch
	STOP_LIMIT    = Stop(3) // limit
	STOP_CANCELED = Stop(4) // canceled
)

// Emulator state. CPU + program image + output channels.
type Emulator struct {
	Verbose  bool       // If set, enables verbose logging.
	*cpu.Cpu            // Reference to the CPU simulation.
	Image    *cpu.Image // Program image loaded on reset.

	Tape      io.Tape      // Text output, used when Tape.Output is set.
	Temporary io.Temporary // Captured output, used otherwise.

	Watch *Watch // Optional stop condition checked after each tick.
}

// NewEmulator creates a new emulator.
func NewEmulator(config cpu.Config) (emu *Emulator) {
	emu = &Emulator{
		Cpu:   cpu.NewCpu(config),
		Image: &cpu.Image{},
	}

	emu.Temporary.Capacity = TEMP_CAPACITY

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		io.Defines(),
	)
}

// SetWatch installs a stop condition, or removes it for an empty expression.
func (emu *Emulator) SetWatch(expr string) (err error) {
	if len(expr) == 0 {
		emu.Watch = nil
		return
	}

	emu.Watch, err = NewWatch(expr, emu.Defines())
	return
}

// Reset the CPU, select the output channel, and load the image.
func (emu *Emulator) Reset() (err error) {
	if emu.Image == nil {
		err = ErrNoImage
		return
	}

	emu.Tape.Verbose = emu.Verbose
	if emu.Tape.Output != nil {
		emu.Cpu.Output = &emu.Tape
	} else {
		emu.Cpu.Output = &emu.Temporary
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()

	err = emu.Cpu.Load(emu.Image)
	return
}

// LineNo returns the image line number of the current instruction.
func (emu *Emulator) LineNo() int {
	return emu.Image.LineNo(uint(emu.Cpu.Pc))
}

// Tick performs a single tick of the emulator.
// Done is set once the CPU has halted or faulted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}
	if err != nil {
		done = true
		return
	}

	done = emu.Cpu.State.Done()
	return
}

// Run ticks the emulator until the CPU halts or faults, the watch
// expression is true, limit ticks have run, or the context is done.
// A limit of zero or less is no limit.
func (emu *Emulator) Run(ctx context.Context, limit int) (stop Stop, err error) {
	for ticks := 0; ; ticks++ {
		err = ctx.Err()
		if err != nil {
			stop = STOP_CANCELED
			return
		}

		if limit > 0 && ticks >= limit {
			stop = STOP_LIMIT
			err = ErrTickLimit
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil {
			stop = STOP_FAULTED
			return
		}
		if done {
			stop = STOP_HALTED
			return
		}

		if emu.Watch != nil {
			var hit bool
			hit, err = emu.Watch.Eval(emu.Cpu)
			if err != nil || hit {
				if emu.Verbose && hit {
					log.Printf("emulator: watch '%v' at %02X", emu.Watch.Expr, emu.Cpu.Pc)
				}
				stop = STOP_WATCH
				return
			}
		}
	}
}
