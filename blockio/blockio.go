// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package blockio defines the reader contract shared by all on-disk decoders.
package blockio

import (
	"fmt"
	"io"
)

// Reader is the byte-addressable view of a block device (or an image file).
type Reader interface {
	io.ReaderAt

	// GetSectorSize returns the logical sector size in bytes.
	//
	// Implementations fall back to 512 if the device can't report it.
	GetSectorSize() uint

	// GetSize returns the total device size in bytes.
	GetSize() uint64
}

// ReadError is returned when a read against the device fails or comes up short.
type ReadError struct {
	Err    error
	Offset int64
	Length int
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %d bytes at offset %d: %v", e.Length, e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ReadFullAt is io.ReadFull for io.ReaderAt.
//
// A short read is always an error, never zero-padded.
func ReadFullAt(r io.ReaderAt, buf []byte, offset int64) error {
	startOffset := offset

	for n := 0; n < len(buf); {
		m, err := r.ReadAt(buf[n:], offset)

		n += m
		offset += int64(m)

		if err != nil {
			if err == io.EOF && n == len(buf) {
				return nil
			}

			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}

			return &ReadError{
				Err:    err,
				Offset: startOffset,
				Length: len(buf),
			}
		}
	}

	return nil
}
