package hid

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Mapping is the translation target of one note: a key usage ID, a modifier
// mask, or both. Key 0 with a non-zero mask is a modifier-only mapping (a
// standalone Shift, for example); the zero value means unmapped.
type Mapping struct {
	Key  uint8
	Mods uint8
}

// IsZero reports whether m is unmapped.
func (m Mapping) IsZero() bool { return m.Key == 0 && m.Mods == 0 }

// ModifierOnly reports whether m contributes only modifier bits.
func (m Mapping) ModifierOnly() bool { return m.Key == 0 && m.Mods != 0 }

func (m Mapping) String() string {
	switch {
	case m.IsZero():
		return "(unmapped)"
	case m.Key == 0:
		return ModNames(m.Mods)
	case m.Mods == 0:
		return KeyName(m.Key)
	}
	return ModNames(m.Mods) + "+" + KeyName(m.Key)
}

// modByName resolves modifier tokens of the "+" combinator. The bare
// SHIFT/CTRL/ALT/META spellings select the left-hand variant.
var modByName = map[string]uint8{
	"SHIFT":      ModLeftShift,
	"LSHIFT":     ModLeftShift,
	"LEFTSHIFT":  ModLeftShift,
	"RSHIFT":     ModRightShift,
	"RIGHTSHIFT": ModRightShift,
	"CTRL":       ModLeftCtrl,
	"CONTROL":    ModLeftCtrl,
	"LCTRL":      ModLeftCtrl,
	"LEFTCTRL":   ModLeftCtrl,
	"RCTRL":      ModRightCtrl,
	"RIGHTCTRL":  ModRightCtrl,
	"ALT":        ModLeftAlt,
	"LALT":       ModLeftAlt,
	"LEFTALT":    ModLeftAlt,
	"RALT":       ModRightAlt,
	"RIGHTALT":   ModRightAlt,
	"ALTGR":      ModRightAlt,
	"META":       ModLeftMeta,
	"WIN":        ModLeftMeta,
	"CMD":        ModLeftMeta,
	"GUI":        ModLeftMeta,
	"LMETA":      ModLeftMeta,
	"LWIN":       ModLeftMeta,
	"LCMD":       ModLeftMeta,
	"LEFTMETA":   ModLeftMeta,
	"RMETA":      ModRightMeta,
	"RWIN":       ModRightMeta,
	"RCMD":       ModRightMeta,
	"RIGHTMETA":  ModRightMeta,
}

// baseByName resolves base-key tokens that are not single letters or digits.
// Standalone left/right modifier names yield modifier-only mappings.
var baseByName = map[string]Mapping{
	"SPACE":      {Key: KeySpace},
	"SPC":        {Key: KeySpace},
	"ENTER":      {Key: KeyEnter},
	"RETURN":     {Key: KeyEnter},
	"TAB":        {Key: KeyTab},
	"ESC":        {Key: KeyEsc},
	"ESCAPE":     {Key: KeyEsc},
	"BACKSPACE":  {Key: KeyBackspace},
	"BS":         {Key: KeyBackspace},
	"COMMA":      {Key: KeyComma},
	",":          {Key: KeyComma},
	"DOT":        {Key: KeyDot},
	"PERIOD":     {Key: KeyDot},
	".":          {Key: KeyDot},
	"SLASH":      {Key: KeySlash},
	"/":          {Key: KeySlash},
	"MINUS":      {Key: KeyMinus},
	"DASH":       {Key: KeyMinus},
	"-":          {Key: KeyMinus},
	"EQUAL":      {Key: KeyEqual},
	"=":          {Key: KeyEqual},
	"LEFTBRACE":  {Key: KeyLeftBrace},
	"[":          {Key: KeyLeftBrace},
	"RIGHTBRACE": {Key: KeyRightBrace},
	"]":          {Key: KeyRightBrace},
	"BACKSLASH":  {Key: KeyBackslash},
	"\\":         {Key: KeyBackslash},
	"SEMICOLON":  {Key: KeySemicolon},
	";":          {Key: KeySemicolon},
	"APOSTROPHE": {Key: KeyApostrophe},
	"QUOTE":      {Key: KeyApostrophe},
	"'":          {Key: KeyApostrophe},
	"GRAVE":      {Key: KeyGrave},
	"BACKTICK":   {Key: KeyGrave},
	"`":          {Key: KeyGrave},
	"CAPSLOCK":   {Key: KeyCapsLock},
	"DELETE":     {Key: KeyDelete},
	"DEL":        {Key: KeyDelete},
	"HOME":       {Key: KeyHome},
	"END":        {Key: KeyEnd},
	"PAGEUP":     {Key: KeyPageUp},
	"PAGEDOWN":   {Key: KeyPageDown},
	"UP":         {Key: KeyUp},
	"DOWN":       {Key: KeyDown},
	"LEFT":       {Key: KeyLeft},
	"RIGHT":      {Key: KeyRight},
	"F1":         {Key: KeyF1},
	"F2":         {Key: KeyF2},
	"F3":         {Key: KeyF3},
	"F4":         {Key: KeyF4},
	"F5":         {Key: KeyF5},
	"F6":         {Key: KeyF6},
	"F7":         {Key: KeyF7},
	"F8":         {Key: KeyF8},
	"F9":         {Key: KeyF9},
	"F10":        {Key: KeyF10},
	"F11":        {Key: KeyF11},
	"F12":        {Key: KeyF12},
	"LSHIFT":     {Mods: ModLeftShift},
	"RSHIFT":     {Mods: ModRightShift},
	"LCTRL":      {Mods: ModLeftCtrl},
	"RCTRL":      {Mods: ModRightCtrl},
	"LALT":       {Mods: ModLeftAlt},
	"RALT":       {Mods: ModRightAlt},
	"LMETA":      {Mods: ModLeftMeta},
	"LWIN":       {Mods: ModLeftMeta},
	"LCMD":       {Mods: ModLeftMeta},
	"RMETA":      {Mods: ModRightMeta},
	"RWIN":       {Mods: ModRightMeta},
	"RCMD":       {Mods: ModRightMeta},
}

func parseBase(tok string) (Mapping, bool) {
	if len(tok) == 1 {
		c := tok[0]
		switch {
		case c >= 'A' && c <= 'Z':
			return Mapping{Key: KeyA + (c - 'A')}, true
		case c >= '1' && c <= '9':
			return Mapping{Key: Key1 + (c - '1')}, true
		case c == '0':
			return Mapping{Key: Key0}, true
		}
	}
	m, ok := baseByName[tok]
	return m, ok
}

// ParseMapping turns mapping text from a profile file into a Mapping. Text is
// case-insensitive and may combine one modifier with one base key in either
// order: "SHIFT+F" and "F+SHIFT" are equivalent. A failed parse never yields
// a partial mapping.
func ParseMapping(text string) (Mapping, error) {
	t := strings.ToUpper(strings.TrimSpace(text))
	if t == "" {
		return Mapping{}, errors.New("empty mapping text")
	}
	switch strings.Count(t, "+") {
	case 0:
		m, ok := parseBase(t)
		if !ok {
			return Mapping{}, fmt.Errorf("unknown key %q", text)
		}
		return m, nil
	case 1:
		left, right, _ := strings.Cut(t, "+")
		left = strings.TrimSpace(left)
		right = strings.TrimSpace(right)
		if bit, ok := modByName[left]; ok {
			if m, ok := parseBase(right); ok {
				m.Mods |= bit
				return m, nil
			}
		}
		if bit, ok := modByName[right]; ok {
			if m, ok := parseBase(left); ok {
				m.Mods |= bit
				return m, nil
			}
		}
		return Mapping{}, fmt.Errorf("unknown key combination %q", text)
	}
	return Mapping{}, fmt.Errorf("too many '+' in %q", text)
}

// knownNames is the multi-character vocabulary, sorted, for suggestions.
var knownNames = func() []string {
	seen := map[string]bool{}
	for n := range modByName {
		seen[n] = true
	}
	for n := range baseByName {
		if len(n) > 1 {
			seen[n] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}()

// SuggestKey proposes the closest known key or modifier name for text that
// failed to parse, for use in load warnings. Reports false when nothing is
// within editing distance 2 or the input is too short to guess from.
func SuggestKey(text string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(text))
	if len(t) < 2 {
		return "", false
	}
	best := ""
	bestDist := 3
	for _, name := range knownNames {
		if d := levenshtein.ComputeDistance(t, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best, best != ""
}
