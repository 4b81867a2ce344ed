// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package configblock reads the Toradex configuration block from eMMC.
//
// The block is a stream of 4-byte tag headers with payloads in 4-byte
// units; its location depends on the BSP release (last sector of the
// first boot area partition since BSP 2.3, a fixed offset in the user
// area before that).
package configblock

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"

	"github.com/tegratools/go-tegrablock/blockio"
)

const (
	// BlockSize is the size of the config block read from flash.
	BlockSize = 512

	// TagValid is the id of the sentinel tag starting a valid block.
	TagValid = 0xcf01

	// TagMAC carries the ethernet address.
	TagMAC = 0x0000

	// TagHW carries the hardware identity.
	TagHW = 0x0008

	// TagFlagValid is the valid bit of the 2-bit tag flags field.
	TagFlagValid = 0x1

	// DefaultBootAreaOffset locates the config block inside the first
	// eMMC boot area partition (BSP >= 2.3), relative to its end.
	DefaultBootAreaOffset = -512

	// DefaultUserAreaOffset locates the 'ARG' partition holding the
	// config block on pre-2.3 BSP releases (0xc00 sectors of 4096 bytes).
	DefaultUserAreaOffset = 0x00000c00 * 4096
)

// tag is a decoded 4-byte tag header.
//
// On flash the first 16-bit word packs the payload length (bits 0..13,
// in 4-byte units) and the flags (bits 14..15); the second word is the
// tag id.
type tag struct {
	len   int
	flags uint8
	id    uint16
}

func decodeTag(b []byte) tag {
	w := binary.LittleEndian.Uint16(b[0:2])

	return tag{
		len:   int(w & 0x3fff),
		flags: uint8(w >> 14),
		id:    binary.LittleEndian.Uint16(b[2:4]),
	}
}

func (t tag) valid() bool {
	return t.flags&TagFlagValid != 0
}

// ConfigBlock is a decoded Toradex configuration block.
type ConfigBlock struct {
	// Hardware identity from the HW tag, nil if the tag is absent.
	Hardware *HardwareInfo

	// Ethernet address from the MAC tag, nil if the tag is absent.
	Ethernet *EthernetAddress

	// Offset is the absolute device offset the block was found at.
	Offset int64
}

// Serial returns the module serial number derived from the MAC tag, or
// zero if the tag is absent.
func (cb *ConfigBlock) Serial() uint32 {
	if cb.Ethernet == nil {
		return 0
	}

	return cb.Ethernet.Serial()
}

// SerialString returns the serial number in the label format printed on
// the module.
func (cb *ConfigBlock) SerialString() string {
	return fmt.Sprintf("%08d", cb.Serial())
}

// Read decodes the config block at the given device offset.
//
// A negative offset is relative to the end of the device. Read returns
// (nil, nil) when no valid config block is present at the offset, so
// callers can fall back to the next candidate location.
func Read(dev blockio.Reader, offset int64, opts ...Option) (*ConfigBlock, error) {
	options := applyOptions(opts...)

	abs := offset
	if offset < 0 {
		abs = int64(dev.GetSize()) + offset
	}

	if abs < 0 {
		return nil, fmt.Errorf("config block offset %d outside the device", offset)
	}

	buf := make([]byte, BlockSize)
	if err := blockio.ReadFullAt(dev, buf, abs); err != nil {
		return nil, err
	}

	if sentinel := decodeTag(buf[0:4]); !sentinel.valid() || sentinel.id != TagValid {
		return nil, nil //nolint:nilnil
	}

	cb := &ConfigBlock{
		Offset: abs,
	}

	for off := 4; off+4 <= BlockSize; {
		t := decodeTag(buf[off : off+4])
		if !t.valid() {
			break
		}

		off += 4
		payload := t.len * 4

		if off+payload > BlockSize {
			return nil, fmt.Errorf("tag 0x%04x at offset %d overruns the config block", t.id, off-4)
		}

		switch t.id {
		case TagMAC:
			if payload < EthernetAddressSize {
				return nil, fmt.Errorf("MAC tag too short: %d bytes", payload)
			}

			var addr EthernetAddress

			copy(addr[:], buf[off:off+EthernetAddressSize])

			cb.Ethernet = &addr
		case TagHW:
			if payload < hardwareInfoSize {
				return nil, fmt.Errorf("HW tag too short: %d bytes", payload)
			}

			cb.Hardware = decodeHardwareInfo(buf[off : off+hardwareInfoSize])
		default:
			options.Logger.Warn("unknown tag id in config block",
				zap.Uint16("id", t.id),
				zap.Int("offset", off-4),
			)
		}

		off += payload
	}

	return cb, nil
}
