//go:build !linux

package sink

import (
	"errors"

	"github.com/FugLong/miditohid/hid"
)

// Uinput is a placeholder off Linux; the virtual keyboard needs the kernel
// uinput device.
type Uinput struct{}

func OpenUinput(name string) (*Uinput, error) {
	return nil, errors.New("uinput: virtual keyboard requires linux")
}

func (u *Uinput) Send(r hid.Report) error { return nil }
func (u *Uinput) Close()                  {}
