// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package ptstructs provides accessors for the proprietary NVIDIA Tegra
// partition table on-disk structures.
//
// The layout interleaves meaningful little-endian words with unknown
// (reserved) words; accessors address only the known fields.
package ptstructs

import (
	"encoding/binary"
)

const (
	// HeaderSize is the size of the partition table header.
	HeaderSize = 72

	// EntrySize is the size of a single partition record.
	EntrySize = 80

	// EntriesOffset is the offset of the first partition record.
	EntriesOffset = HeaderSize
)

// Header is a view over the raw partition table header.
type Header []byte

// Metadata returns the first 16 bytes of the header (unknown purpose).
func (h Header) Metadata() []byte { return h[0:16] }

// Version returns the partition table version word.
func (h Header) Version() uint32 { return binary.LittleEndian.Uint32(h[8:12]) }

// TableSize returns the declared size of the partition table in bytes.
func (h Header) TableSize() uint32 { return binary.LittleEndian.Uint32(h[12:16]) }

// CheckData returns the 16-byte block that looks like a checksum or signature.
func (h Header) CheckData() []byte { return h[16:32] }

// Reserved returns the 16-byte block observed to be always zero.
func (h Header) Reserved() []byte { return h[32:48] }

// MetadataCopy returns the 16-byte backup copy of the header metadata.
func (h Header) MetadataCopy() []byte { return h[48:64] }

// NumParts returns the declared number of partition records.
func (h Header) NumParts() uint32 { return binary.LittleEndian.Uint32(h[64:68]) }

// Entry returns the n-th partition record.
func (h Header) Entry(n int) PartInfo {
	return PartInfo(h[EntriesOffset+n*EntrySize : EntriesOffset+(n+1)*EntrySize])
}

// PartInfo is a view over a raw partition record.
type PartInfo []byte

// ID returns the partition id.
func (p PartInfo) ID() uint32 { return binary.LittleEndian.Uint32(p[0:4]) }

// Name returns the raw 4-byte partition name tag.
func (p PartInfo) Name() []byte { return p[4:8] }

// AllocationPolicy returns the allocation policy.
func (p PartInfo) AllocationPolicy() uint32 { return binary.LittleEndian.Uint32(p[8:12]) }

// Name2 returns the raw secondary copy of the name tag.
func (p PartInfo) Name2() []byte { return p[20:24] }

// FilesystemType returns the filesystem type.
func (p PartInfo) FilesystemType() uint32 { return binary.LittleEndian.Uint32(p[24:28]) }

// VirtualStartSector returns the virtual start sector.
func (p PartInfo) VirtualStartSector() uint32 { return binary.LittleEndian.Uint32(p[40:44]) }

// VirtualSize returns the virtual size.
func (p PartInfo) VirtualSize() uint32 { return binary.LittleEndian.Uint32(p[48:52]) }

// StartSector returns the physical start sector.
func (p PartInfo) StartSector() uint32 { return binary.LittleEndian.Uint32(p[56:60]) }

// EndSector returns the physical end sector.
func (p PartInfo) EndSector() uint32 { return binary.LittleEndian.Uint32(p[64:68]) }

// Type returns the partition type.
func (p PartInfo) Type() uint32 { return binary.LittleEndian.Uint32(p[72:76]) }
