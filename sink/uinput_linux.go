//go:build linux

package sink

import (
	"fmt"
	"log/slog"

	"github.com/bendahl/uinput"

	"github.com/FugLong/miditohid/hid"
)

// linuxKeyByUsage translates HID keyboard-page usage IDs into Linux input
// key codes for the uinput device.
var linuxKeyByUsage = map[uint8]int{
	hid.KeyA: 30, hid.KeyB: 48, hid.KeyC: 46, hid.KeyD: 32, hid.KeyE: 18,
	hid.KeyF: 33, hid.KeyG: 34, hid.KeyH: 35, hid.KeyI: 23, hid.KeyJ: 36,
	hid.KeyK: 37, hid.KeyL: 38, hid.KeyM: 50, hid.KeyN: 49, hid.KeyO: 24,
	hid.KeyP: 25, hid.KeyQ: 16, hid.KeyR: 19, hid.KeyS: 31, hid.KeyT: 20,
	hid.KeyU: 22, hid.KeyV: 47, hid.KeyW: 17, hid.KeyX: 45, hid.KeyY: 21,
	hid.KeyZ: 44,

	hid.Key1: 2, hid.Key2: 3, hid.Key3: 4, hid.Key4: 5, hid.Key5: 6,
	hid.Key6: 7, hid.Key7: 8, hid.Key8: 9, hid.Key9: 10, hid.Key0: 11,

	hid.KeyEnter: 28, hid.KeyEsc: 1, hid.KeyBackspace: 14, hid.KeyTab: 15,
	hid.KeySpace: 57, hid.KeyMinus: 12, hid.KeyEqual: 13,
	hid.KeyLeftBrace: 26, hid.KeyRightBrace: 27, hid.KeyBackslash: 43,
	hid.KeySemicolon: 39, hid.KeyApostrophe: 40, hid.KeyGrave: 41,
	hid.KeyComma: 51, hid.KeyDot: 52, hid.KeySlash: 53, hid.KeyCapsLock: 58,

	hid.KeyF1: 59, hid.KeyF2: 60, hid.KeyF3: 61, hid.KeyF4: 62,
	hid.KeyF5: 63, hid.KeyF6: 64, hid.KeyF7: 65, hid.KeyF8: 66,
	hid.KeyF9: 67, hid.KeyF10: 68, hid.KeyF11: 87, hid.KeyF12: 88,

	hid.KeyHome: 102, hid.KeyPageUp: 104, hid.KeyDelete: 111,
	hid.KeyEnd: 107, hid.KeyPageDown: 109, hid.KeyRight: 106,
	hid.KeyLeft: 105, hid.KeyDown: 108, hid.KeyUp: 103,
}

// linuxModKeys holds the Linux key code for each modifier bit, in bit
// order: LCTRL LSHIFT LALT LMETA RCTRL RSHIFT RALT RMETA.
var linuxModKeys = [8]int{29, 42, 56, 125, 97, 54, 100, 126}

// Uinput types reports into the kernel through a virtual keyboard device.
// Reports are full snapshots, so each Send diffs against the previous one
// and issues only the key transitions.
type Uinput struct {
	kb   uinput.Keyboard
	prev hid.Report
}

// OpenUinput creates the virtual keyboard. Needs write access to
// /dev/uinput.
func OpenUinput(name string) (*Uinput, error) {
	kb, err := uinput.CreateKeyboard("/dev/uinput", []byte(name))
	if err != nil {
		return nil, fmt.Errorf("uinput create: %w", err)
	}
	slog.Info("uinput: virtual keyboard created", "name", name)
	return &Uinput{kb: kb}, nil
}

func (u *Uinput) Send(r hid.Report) error {
	ups, downs := reportDiff(u.prev, r)
	var firstErr error
	for _, code := range ups {
		if err := u.kb.KeyUp(code); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, code := range downs {
		if err := u.kb.KeyDown(code); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	u.prev = r
	if firstErr != nil {
		return fmt.Errorf("uinput: %w", firstErr)
	}
	return nil
}

// Close destroys the virtual keyboard.
func (u *Uinput) Close() {
	slog.Info("uinput: closing virtual keyboard")
	_ = u.kb.Close()
}

// reportDiff computes the transitions between two snapshots as Linux key
// codes. Releases come first, and released keys precede released
// modifiers, so a modifier never drops while its key is still down; on the
// press side modifiers go down before their keys for the same reason.
func reportDiff(prev, cur hid.Report) (ups, downs []int) {
	for _, k := range prev.Keys {
		if k != 0 && !hasKey(cur, k) {
			if code, ok := linuxKeyByUsage[k]; ok {
				ups = append(ups, code)
			}
		}
	}
	for i, code := range linuxModKeys {
		bit := uint8(1) << i
		if prev.Mods&bit != 0 && cur.Mods&bit == 0 {
			ups = append(ups, code)
		}
	}
	for i, code := range linuxModKeys {
		bit := uint8(1) << i
		if cur.Mods&bit != 0 && prev.Mods&bit == 0 {
			downs = append(downs, code)
		}
	}
	for _, k := range cur.Keys {
		if k != 0 && !hasKey(prev, k) {
			code, ok := linuxKeyByUsage[k]
			if !ok {
				slog.Debug("uinput: no key code for usage", "usage", fmt.Sprintf("0x%02X", k))
				continue
			}
			downs = append(downs, code)
		}
	}
	return ups, downs
}

func hasKey(r hid.Report, key uint8) bool {
	for _, k := range r.Keys {
		if k == key {
			return true
		}
	}
	return false
}
