//go:build linux

package device

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"syscall"
	"unsafe"
)

// PathPattern locates the joystick device by index.
var PathPattern = "/dev/input/js%d"

// MaxIndex bounds auto detection.
const MaxIndex = 32

const (
	iocGAXES    uint = 0x80016a11
	iocGBUTTONS uint = 0x80016a12
	iocGNAME    uint = 0x80ff6a13
)

type device struct {
	file        *os.File
	index       int
	name        string
	axisCount   uint8
	buttonCount uint8
	buf         [EventSize]byte
}

// Open opens the device with specified index.
func Open(index int) (Device, error) {
	path := fmt.Sprintf(PathPattern, index)
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	d := &device{file: f, index: index}
	if err := d.query(); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func (d *device) query() error {
	if errno := d.ioctl(iocGAXES, unsafe.Pointer(&d.axisCount)); errno != 0 {
		return errno
	}
	if errno := d.ioctl(iocGBUTTONS, unsafe.Pointer(&d.buttonCount)); errno != 0 {
		return errno
	}
	var buf [256]byte
	if errno := d.ioctl(iocGNAME, unsafe.Pointer(&buf)); errno != 0 {
		return errno
	}
	name := buf[:]
	if pos := bytes.IndexByte(name, 0); pos >= 0 {
		name = name[:pos]
	}
	d.name = string(name)
	return nil
}

// DetectAndOpen opens the first available device from startIndex.
// It returns nil without error when no device is present.
func DetectAndOpen(startIndex int) (Device, error) {
	for index := startIndex; index < MaxIndex; index++ {
		d, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return d, err
	}
	return nil, nil
}

// Close implements Device.
func (d *device) Close() error {
	return d.file.Close()
}

// Index implements Device.
func (d *device) Index() int {
	return d.index
}

// Name implements Device.
func (d *device) Name() string {
	return d.name
}

// AxisCount implements Device.
func (d *device) AxisCount() int {
	return int(d.axisCount)
}

// ButtonCount implements Device.
func (d *device) ButtonCount() int {
	return int(d.buttonCount)
}

// ReadEvent implements Device.
func (d *device) ReadEvent() (Event, error) {
	if _, err := io.ReadFull(d.file, d.buf[:]); err != nil {
		return nil, err
	}
	return Decode(d.buf[:])
}

func (d *device) ioctl(req uint, ptr unsafe.Pointer) syscall.Errno {
	_, _, err := syscall.Syscall(syscall.SYS_IOCTL, d.file.Fd(), uintptr(req), uintptr(ptr))
	return err
}
