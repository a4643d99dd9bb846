// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
)

func main() {
	var limit int
	var until string
	var output string
	var memory uint
	var list bool
	var verbose bool

	flag.IntVar(&limit, "limit", 0, "Stop after this many instructions (0 is no limit)")
	flag.StringVar(&until, "until", "", "Stop when this expression is true, ie 'pc == 0x10'")
	flag.StringVar(&output, "o", "-", "Tape output")
	flag.UintVar(&memory, "memory", cpu.MEMORY_SIZE, "Memory size in bytes (1..256)")
	flag.BoolVar(&list, "l", false, "List the program, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: %v [options] program.ls8", os.Args[0])
	}

	path := flag.Arg(0)
	inf, err := os.Open(path)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}
	defer inf.Close()

	img, err := cpu.LoadImage(inf)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	if list {
		for addr, text := range img.Disassemble() {
			fmt.Printf("%02X: %v\n", addr, text)
		}
		return
	}

	config := cpu.DefaultConfig()
	config.MemorySize = memory
	err = config.Validate()
	if err != nil {
		log.Fatalf("-memory %v: %v", memory, err)
	}

	emu := emulator.NewEmulator(config)
	emu.Image = img
	emu.Verbose = verbose

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	err = emu.SetWatch(until)
	if err != nil {
		log.Fatalf("-until: %v", err)
	}

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reason, err := emu.Run(ctx, limit)
	switch {
	case reason == emulator.STOP_WATCH && err == nil:
		log.Printf("%v: stopped at line %d\n%v", path, emu.LineNo(), emu.Cpu.String())
	case errors.Is(err, emulator.ErrTickLimit):
		log.Printf("%v: %v\n%v", path, err, emu.Cpu.String())
		os.Exit(2)
	case err != nil:
		log.Printf("%v: %v: %v", path, reason, err)
		os.Exit(1)
	}
}
