// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build !linux

package block

import (
	"fmt"
	"os"
)

// NewFromPath returns a new Device from the specified path.
func NewFromPath(path string) (*Device, error) {
	f, err := os.Open(path)
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

	d.size = uint64(st.Size())
	d.sectorSize = DefaultBlockSize
	d.ioSize = DefaultBlockSize

	return nil
}
