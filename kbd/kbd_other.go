//go:build !linux

package kbd

import "errors"

// Source is a placeholder off Linux; keyboard capture needs evdev.
type Source struct{}

func Open(path string, onDisconnect func(name string)) (*Source, error) {
	return nil, errors.New("kbd: keyboard capture requires linux evdev")
}

func (s *Source) Name() string         { return "" }
func (s *Source) Events() <-chan Event { return nil }
func (s *Source) Drain()               {}
func (s *Source) Close()               {}
