// Package hid defines the USB HID boot-keyboard vocabulary used by the
// translator: keyboard-page usage IDs for every key that can appear in a
// mapping file, the modifier bitmask of the report's first byte, and
// human-readable names for both directions.
package hid

import (
	"fmt"
	"strings"
)

// Keyboard-page usage IDs (USB HID Usage Tables, page 0x07).
const (
	KeyA = 0x04
	KeyB = 0x05
	KeyC = 0x06
	KeyD = 0x07
	KeyE = 0x08
	KeyF = 0x09
	KeyG = 0x0A
	KeyH = 0x0B
	KeyI = 0x0C
	KeyJ = 0x0D
	KeyK = 0x0E
	KeyL = 0x0F
	KeyM = 0x10
	KeyN = 0x11
	KeyO = 0x12
	KeyP = 0x13
	KeyQ = 0x14
	KeyR = 0x15
	KeyS = 0x16
	KeyT = 0x17
	KeyU = 0x18
	KeyV = 0x19
	KeyW = 0x1A
	KeyX = 0x1B
	KeyY = 0x1C
	KeyZ = 0x1D

	Key1 = 0x1E
	Key2 = 0x1F
	Key3 = 0x20
	Key4 = 0x21
	Key5 = 0x22
	Key6 = 0x23
	Key7 = 0x24
	Key8 = 0x25
	Key9 = 0x26
	Key0 = 0x27

	KeyEnter      = 0x28
	KeyEsc        = 0x29
	KeyBackspace  = 0x2A
	KeyTab        = 0x2B
	KeySpace      = 0x2C
	KeyMinus      = 0x2D
	KeyEqual      = 0x2E
	KeyLeftBrace  = 0x2F // [
	KeyRightBrace = 0x30 // ]
	KeyBackslash  = 0x31
	KeySemicolon  = 0x33
	KeyApostrophe = 0x34
	KeyGrave      = 0x35
	KeyComma      = 0x36
	KeyDot        = 0x37
	KeySlash      = 0x38
	KeyCapsLock   = 0x39

	KeyF1  = 0x3A
	KeyF2  = 0x3B
	KeyF3  = 0x3C
	KeyF4  = 0x3D
	KeyF5  = 0x3E
	KeyF6  = 0x3F
	KeyF7  = 0x40
	KeyF8  = 0x41
	KeyF9  = 0x42
	KeyF10 = 0x43
	KeyF11 = 0x44
	KeyF12 = 0x45

	KeyHome     = 0x4A
	KeyPageUp   = 0x4B
	KeyDelete   = 0x4C
	KeyEnd      = 0x4D
	KeyPageDown = 0x4E
	KeyRight    = 0x4F
	KeyLeft     = 0x50
	KeyDown     = 0x51
	KeyUp       = 0x52
)

// Modifier bits of the report's modifier byte, one bit per modifier key.
const (
	ModLeftCtrl   = 0x01
	ModLeftShift  = 0x02
	ModLeftAlt    = 0x04
	ModLeftMeta   = 0x08
	ModRightCtrl  = 0x10
	ModRightShift = 0x20
	ModRightAlt   = 0x40
	ModRightMeta  = 0x80
)

var specialNames = map[uint8]string{
	KeyEnter:      "ENTER",
	KeyEsc:        "ESC",
	KeyBackspace:  "BACKSPACE",
	KeyTab:        "TAB",
	KeySpace:      "SPACE",
	KeyMinus:      "MINUS",
	KeyEqual:      "EQUAL",
	KeyLeftBrace:  "LEFTBRACE",
	KeyRightBrace: "RIGHTBRACE",
	KeyBackslash:  "BACKSLASH",
	KeySemicolon:  "SEMICOLON",
	KeyApostrophe: "APOSTROPHE",
	KeyGrave:      "GRAVE",
	KeyComma:      "COMMA",
	KeyDot:        "DOT",
	KeySlash:      "SLASH",
	KeyCapsLock:   "CAPSLOCK",
	KeyF1:         "F1",
	KeyF2:         "F2",
	KeyF3:         "F3",
	KeyF4:         "F4",
	KeyF5:         "F5",
	KeyF6:         "F6",
	KeyF7:         "F7",
	KeyF8:         "F8",
	KeyF9:         "F9",
	KeyF10:        "F10",
	KeyF11:        "F11",
	KeyF12:        "F12",
	KeyHome:       "HOME",
	KeyPageUp:     "PAGEUP",
	KeyDelete:     "DELETE",
	KeyEnd:        "END",
	KeyPageDown:   "PAGEDOWN",
	KeyRight:      "RIGHT",
	KeyLeft:       "LEFT",
	KeyDown:       "DOWN",
	KeyUp:         "UP",
}

// KeyName returns the canonical name of a usage ID, or its hex form when the
// code is outside the supported vocabulary.
func KeyName(code uint8) string {
	switch {
	case code >= KeyA && code <= KeyZ:
		return string(rune('A' + code - KeyA))
	case code >= Key1 && code <= Key9:
		return string(rune('1' + code - Key1))
	case code == Key0:
		return "0"
	}
	if n, ok := specialNames[code]; ok {
		return n
	}
	return fmt.Sprintf("0x%02X", code)
}

var modBits = []struct {
	bit  uint8
	name string
}{
	{ModLeftCtrl, "LCTRL"},
	{ModLeftShift, "LSHIFT"},
	{ModLeftAlt, "LALT"},
	{ModLeftMeta, "LMETA"},
	{ModRightCtrl, "RCTRL"},
	{ModRightShift, "RSHIFT"},
	{ModRightAlt, "RALT"},
	{ModRightMeta, "RMETA"},
}

// ModNames renders a modifier mask as "+"-joined modifier key names, in bit
// order. The empty mask renders as the empty string.
func ModNames(mask uint8) string {
	if mask == 0 {
		return ""
	}
	parts := make([]string, 0, len(modBits))
	for _, m := range modBits {
		if mask&m.bit != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(parts, "+")
}
