// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/tegratools/go-tegrablock/internal/utils"
)

// NewFromPath returns a new Device from the specified path.
func NewFromPath(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}

	d := &Device{
		f:         f,
		ownedFile: true,
	}

	if err := d.resolveGeometry(); err != nil {
		f.Close() //nolint:errcheck

		return nil, err
	}

	return d, nil
}

func (d *Device) resolveGeometry() error {
	st, err := d.f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat: %w", err)
	}

	if st.Mode()&os.ModeDevice == 0 {
		// regular file (an image), use default geometry
		d.size = uint64(st.Size())
		d.sectorSize = DefaultBlockSize
		d.ioSize = DefaultBlockSize

		return nil
	}

	var devsize uint64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&devsize))); errno != 0 {
		return fmt.Errorf("failed to get blockdevice size: %w", errno)
	}

	d.size = devsize
	d.sectorSize = d.querySectorSize()
	d.ioSize = d.queryIOSize()

	return nil
}

// querySectorSize returns the logical sector size, or the 512-byte
// default if the kernel can't report it.
func (d *Device) querySectorSize() uint {
	var size uint

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), uintptr(unix.BLKSSZGET), uintptr(unsafe.Pointer(&size))); errno != 0 {
		return DefaultBlockSize
	}

	return size
}

func (d *Device) queryIOSize() uint {
	for _, ioctl := range []uintptr{unix.BLKIOOPT, unix.BLKIOMIN, unix.BLKBSZGET} {
		var size uint
		if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), ioctl, uintptr(unsafe.Pointer(&size))); errno != 0 {
			continue
		}

		if size > 0 && utils.IsPowerOf2(size) {
			return size
		}
	}

	return DefaultBlockSize
}
