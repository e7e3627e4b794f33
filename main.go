package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/FugLong/miditohid/config"
	"github.com/FugLong/miditohid/engine"
	"github.com/FugLong/miditohid/kbd"
	"github.com/FugLong/miditohid/keymap"
	"github.com/FugLong/miditohid/midi"
	"github.com/FugLong/miditohid/sink"
	"github.com/FugLong/miditohid/tui"
)

// -------------------- Logger --------------------

// logger is the package-wide structured logger. Safe to use before initLogger
// is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// every package and the stdlib log both route through the same handler.
func initLogger(debug bool, w io.Writer) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug, // include file:line in debug mode
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// -------------------- Tunables --------------------

// IDLE_SLEEP_US is how long the driver loop yields when a pass handled no
// event. Short enough that a 0 ms fast press still looks immediate.
const IDLE_SLEEP_US = 500

// STATUS_PUSH_MS is the status display refresh cadence.
const STATUS_PUSH_MS = 100

// PORT_REFRESH_MS is how often the loop re-snapshots the connected input
// ports.
const PORT_REFRESH_MS = 1000

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// -------------------- Sink selection --------------------

// openSink builds the configured report sink. Exits on failure; running
// without a sink is pointless.
func openSink(kind, serialDev string, baud int) (sink.Sink, func()) {
	switch kind {
	case "serial":
		sp, err := sink.OpenSerial(serialDev, baud)
		if err != nil {
			logger.Error("serial: failed to open port", "device", serialDev, "baud", baud, "err", err)
			os.Exit(1)
		}
		return sp, sp.Close
	case "uinput":
		kb, err := sink.OpenUinput("miditohid")
		if err != nil {
			logger.Error("uinput: failed to create virtual keyboard", "err", err)
			os.Exit(1)
		}
		return kb, kb.Close
	case "log":
		return sink.Log{}, func() {}
	default:
		logger.Error("unknown sink type", "sink", kind)
		os.Exit(1)
		return nil, nil
	}
}

// -------------------- Main --------------------

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config: cannot load", "err", err)
		os.Exit(1)
	}

	dir := flag.String("dir", cfg.Mappings.Dir, "mappings directory")
	sinkType := flag.String("sink", cfg.Sink.Type, "report sink: log, serial, or uinput")
	serialDev := flag.String("serial", cfg.Serial.Port, "serial port device")
	baud := flag.Int("baud", cfg.Serial.Baud, "serial baud rate")
	kbdDev := flag.String("kbd", cfg.Keyboard.Device, "keyboard event device to capture (optional)")
	useTUI := flag.Bool("tui", false, "show the live status display")
	debug := flag.Bool("debug", cfg.Debug, "enable debug logging (adds source location)")
	flag.Parse()

	// The TUI owns the terminal, so logs move to a file while it runs.
	var logDst io.Writer = os.Stderr
	if *useTUI {
		logPath := filepath.Join(os.Getenv("HOME"), ".config", "miditohid", "miditohid.log")
		_ = os.MkdirAll(filepath.Dir(logPath), 0o755)
		if f, ferr := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644); ferr == nil {
			defer f.Close()
			logDst = f
		}
	}
	initLogger(*debug, logDst)

	logger.Info("miditohid starting",
		"mappings_dir", *dir,
		"sink", *sinkType,
		"kbd", *kbdDev,
		"tui", *useTUI,
		"debug", *debug,
	)

	out, closeSink := openSink(*sinkType, *serialDev, *baud)
	defer closeSink()
	rec := sink.NewRecorder(out)

	st, err := keymap.Load(*dir)
	if err != nil {
		logger.Error("keymap: cannot load mappings", "dir", *dir, "err", err)
		os.Exit(1)
	}
	eng := engine.New(st, rec)

	// Disconnect callbacks run on foreign goroutines; they only post a
	// name here and the loop does the actual release.
	disconnects := make(chan string, 8)
	notifyLost := func(name string) {
		select {
		case disconnects <- name:
		default:
		}
	}

	watcher, err := midi.NewWatcher(cfg.MIDI.Prefer, cfg.MIDI.Exclude, notifyLost)
	if err != nil {
		logger.Error("midi: watcher init failed", "err", err)
		os.Exit(1)
	}
	defer watcher.Close()

	var kb *kbd.Source
	if *kbdDev != "" {
		kb, err = kbd.Open(*kbdDev, notifyLost)
		if err != nil {
			logger.Error("kbd: keyboard capture failed", "device", *kbdDev, "err", err)
			os.Exit(1)
		}
		defer kb.Close()
	}

	dirWatch, err := keymap.WatchDir(*dir)
	if err != nil {
		logger.Warn("keymap: live reload unavailable", "err", err)
		dirWatch = nil
	} else {
		defer dirWatch.Close()
	}

	quit := make(chan struct{})
	var quitOnce sync.Once
	requestQuit := func() { quitOnce.Do(func() { close(quit) }) }

	statusCh := make(chan tui.Status, 1)
	switchReq := make(chan struct{}, 1)
	var prog *tea.Program
	if *useTUI {
		prog = tea.NewProgram(tui.NewModel(statusCh, switchReq))
		go func() {
			if _, err := prog.Run(); err != nil {
				logger.Error("tui: display failed", "err", err)
			}
			requestQuit()
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info("main: signal received, shutting down")
		if prog != nil {
			prog.Quit()
		}
		requestQuit()
	}()

	sinkName := *sinkType
	if *sinkType == "serial" {
		sinkName = fmt.Sprintf("serial %s @%d", *serialDev, *baud)
	}

	logger.Info("running - waiting for input devices")
	run(eng, watcher, kb, dirWatch, rec, *dir, sinkName, *useTUI, statusCh, switchReq, disconnects, quit)

	// All held keys must be gone before the sink closes.
	eng.ReleaseAll()
	logger.Info("miditohid stopped")
}

// -------------------- Driver loop --------------------

// run is the single-owner driver loop: it alone touches the engine. Each
// pass drains at most one event per input device, expires due releases,
// services the watchers and the display, then yields briefly when idle.
func run(
	eng *engine.Engine,
	watcher *midi.Watcher,
	kb *kbd.Source,
	dirWatch *keymap.DirWatcher,
	rec *sink.Recorder,
	dir, sinkName string,
	useTUI bool,
	statusCh chan<- tui.Status,
	switchReq <-chan struct{},
	disconnects <-chan string,
	quit <-chan struct{},
) {
	var (
		ports        []*midi.Port
		lastPortsAt  time.Time
		lastStatusAt time.Time
	)

	for {
		select {
		case <-quit:
			return
		default:
		}

		now := time.Now()
		handled := false

		if lastPortsAt.IsZero() || now.Sub(lastPortsAt) >= ms(PORT_REFRESH_MS) {
			lastPortsAt = now
			ports = watcher.Ports()
		}

		// One event per device per pass keeps a busy device from starving
		// the rest.
		for _, port := range ports {
			select {
			case ev := <-port.Events():
				eng.HandleNote(engine.NoteEvent{
					Device:   ev.Port,
					On:       ev.On,
					Note:     ev.Note,
					Velocity: ev.Velocity,
				}, now)
				handled = true
			default:
			}
		}
		if kb != nil {
			select {
			case ev := <-kb.Events():
				eng.HandleNote(engine.NoteEvent{
					Device:   ev.Device,
					On:       ev.On,
					Note:     ev.Note,
					Velocity: ev.Velocity,
				}, now)
				handled = true
			default:
			}
		}

		eng.Tick(now)
		watcher.Tick(now)

		select {
		case name := <-disconnects:
			logger.Warn("main: input lost, releasing all keys", "device", name)
			inputs := make([]lostInput, 0, len(ports)+1)
			for _, port := range ports {
				inputs = append(inputs, port)
			}
			if kb != nil {
				inputs = append(inputs, kb)
			}
			dropLostInput(eng, name, inputs)
			if kb != nil && kb.Name() == name {
				kb = nil
			}
			// Drop the dead port from the snapshot at once rather than at
			// the next scheduled refresh.
			ports = watcher.Ports()
			lastPortsAt = now
		default:
		}

		if dirWatch != nil && dirWatch.Poll(now) {
			logger.Info("keymap: mappings changed, reloading", "dir", dir)
			if st, err := keymap.Load(dir); err != nil {
				logger.Error("keymap: reload failed", "err", err)
			} else {
				eng.SetStore(st)
			}
		}

		select {
		case <-switchReq:
			eng.SwitchProfile()
		default:
		}

		if useTUI && now.Sub(lastStatusAt) >= ms(STATUS_PUSH_MS) {
			lastStatusAt = now
			pushStatus(statusCh, eng, watcher, kb, rec, sinkName)
		}

		if !handled {
			time.Sleep(IDLE_SLEEP_US * time.Microsecond)
		}
	}
}

// lostInput is an input source whose backlog can be discarded after its
// device disappears.
type lostInput interface {
	Name() string
	Drain()
}

// dropLostInput throws away the lost device's queued events and then
// releases everything held. Drain must come first: a buffered note-on
// handled after the all-clear would press a key whose note-off is gone.
func dropLostInput(eng *engine.Engine, name string, inputs []lostInput) {
	for _, in := range inputs {
		if in.Name() == name {
			in.Drain()
		}
	}
	eng.ReleaseAll()
}

// pushStatus hands the display a fresh snapshot, never blocking the loop.
func pushStatus(
	statusCh chan<- tui.Status,
	eng *engine.Engine,
	watcher *midi.Watcher,
	kb *kbd.Source,
	rec *sink.Recorder,
	sinkName string,
) {
	devices := watcher.Names()
	if kb != nil {
		devices = append(devices, kb.Name()+" (kbd)")
	}
	snap := tui.Status{
		Devices: devices,
		Engine:  eng.Status(),
		Sink:    sinkName,
		Recent:  rec.Recent(1),
		Sent:    rec.Sent(),
	}
	select {
	case statusCh <- snap:
	default:
	}
}
