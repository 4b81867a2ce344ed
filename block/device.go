// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package block provides read-only access to blockdevices and disk images.
package block

import (
	"os"
)

// DefaultBlockSize is the default block size in bytes.
const DefaultBlockSize = 512

// Device wraps blockdevice operations.
//
// Device geometry is resolved once when the device is opened, so Device
// satisfies blockio.Reader directly. Regular files (disk images) are
// supported with default geometry.
type Device struct {
	f *os.File

	size       uint64
	sectorSize uint
	ioSize     uint

	ownedFile bool
}

// NewFromFile returns a new Device from the specified file.
func NewFromFile(f *os.File) (*Device, error) {
	d := &Device{f: f}

	if err := d.resolveGeometry(); err != nil {
		return nil, err
	}

	return d, nil
}

// ReadAt implements io.ReaderAt.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	return d.f.ReadAt(p, off)
}

// GetSize returns the device (or image file) size in bytes.
func (d *Device) GetSize() uint64 {
	return d.size
}

// GetSectorSize returns the logical sector size in bytes.
func (d *Device) GetSectorSize() uint {
	return d.sectorSize
}

// GetIOSize returns the optimal I/O size in bytes.
func (d *Device) GetIOSize() uint {
	return d.ioSize
}

// Close the device if it was opened by this package.
func (d *Device) Close() error {
	if !d.ownedFile {
		return nil
	}

	return d.f.Close()
}
