// midiprobe is a field diagnostic for the translator: list MIDI inputs,
// dump decoded note traffic, or dry-run a mappings directory without
// touching any sink.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/FugLong/miditohid/keymap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "dump":
		dumpNotes()
	case "check":
		if len(os.Args) < 3 {
			fmt.Println("usage: midiprobe check <mappings-dir>")
			os.Exit(1)
		}
		checkMappings(os.Args[2])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("midiprobe - translator input diagnostics")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list         - list all MIDI input ports")
	fmt.Println("  dump         - print decoded note events from every input")
	fmt.Println("  check <dir>  - load a mappings directory and report its profiles")
}

func listPorts() {
	ins := midi.GetInPorts()
	if len(ins) == 0 {
		fmt.Println("no MIDI input ports found")
		return
	}
	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func dumpNotes() {
	ins := midi.GetInPorts()
	opened := 0
	for _, in := range ins {
		name := in.String()
		if strings.Contains(strings.ToLower(name), "through") {
			continue
		}
		if err := in.Open(); err != nil {
			fmt.Printf("open %s: %v\n", name, err)
			continue
		}
		_, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
			var ch, key, vel uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				fmt.Printf("[%s] note on   ch=%d note=%-3d vel=%d\n", name, ch, key, vel)
			case msg.GetNoteEnd(&ch, &key):
				fmt.Printf("[%s] note off  ch=%d note=%d\n", name, ch, key)
			}
		})
		if err != nil {
			fmt.Printf("listen %s: %v\n", name, err)
			_ = in.Close()
			continue
		}
		fmt.Printf("listening on %s\n", name)
		opened++
	}
	if opened == 0 {
		fmt.Println("no usable MIDI inputs")
		return
	}

	fmt.Println("press Ctrl+C to stop")
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
}

func checkMappings(dir string) {
	cfg, sources, err := keymap.LoadDir(dir)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	switchNote := "disabled"
	if cfg.SwitchNote != keymap.SwitchDisabled {
		switchNote = fmt.Sprintf("%d", cfg.SwitchNote)
	}
	fmt.Printf("directory:     %s\n", dir)
	fmt.Printf("sources found: %d\n", len(sources))
	fmt.Printf("fast press:    %v\n", cfg.FastPress)
	fmt.Printf("duration:      %s\n", cfg.PressDuration)
	fmt.Printf("switch note:   %s\n", switchNote)
	fmt.Println("")

	st := keymap.NewStore(cfg, sources)
	for i, p := range st.Profiles() {
		marker := " "
		if i == st.ActiveIndex() {
			marker = "*"
		}
		fmt.Printf("%s %d: %-24s %3d mappings  fast=%v duration=%s\n",
			marker, i, p.Name, p.Mapped, p.FastPress, p.PressDuration)
		for note := uint8(0); note < keymap.NumNotes; note++ {
			m := p.Lookup(note)
			if m.IsZero() {
				continue
			}
			fmt.Printf("      %3d -> %s\n", note, m.String())
		}
	}
}
