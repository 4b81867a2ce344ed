// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package gptstructs provides accessors for GPT on-disk structures.
//
// All fields are little-endian at fixed offsets; accessors operate over
// raw byte slices so that no memory-layout assumptions leak in.
package gptstructs

import (
	"encoding/binary"
)

// HeaderSignature is the GPT header signature ("EFI PART").
var HeaderSignature = []byte("EFI PART")

const (
	// HeaderSize is the natural (minimum) size of the GPT header.
	HeaderSize = 92

	// EntrySize is the natural size of a GPT partition entry.
	//
	// The on-disk stride may be larger; the extra bytes carry no fields.
	EntrySize = 128

	// EntryNameLength is the partition name length in UTF-16 code units.
	EntryNameLength = 36
)

// Header is a view over the raw GPT header block.
type Header []byte

// Signature returns the raw 8-byte signature.
func (h Header) Signature() []byte { return h[0:8] }

// Revision returns the GPT revision.
func (h Header) Revision() uint32 { return binary.LittleEndian.Uint32(h[8:12]) }

// HeaderSize returns the header size declared by the header itself.
//
// This size is authoritative for the checksum window.
func (h Header) HeaderSize() uint32 { return binary.LittleEndian.Uint32(h[12:16]) }

// HeaderCRC32 returns the stored header checksum.
func (h Header) HeaderCRC32() uint32 { return binary.LittleEndian.Uint32(h[16:20]) }

// MyLBA returns the LBA of the sector holding this header.
func (h Header) MyLBA() uint64 { return binary.LittleEndian.Uint64(h[24:32]) }

// AlternateLBA returns the LBA of the other copy of the header.
func (h Header) AlternateLBA() uint64 { return binary.LittleEndian.Uint64(h[32:40]) }

// FirstUsableLBA returns the first LBA usable for partitions.
func (h Header) FirstUsableLBA() uint64 { return binary.LittleEndian.Uint64(h[40:48]) }

// LastUsableLBA returns the last LBA usable for partitions.
func (h Header) LastUsableLBA() uint64 { return binary.LittleEndian.Uint64(h[48:56]) }

// DiskGUID returns the 16-byte disk GUID in on-disk (mixed-endian) order.
func (h Header) DiskGUID() []byte { return h[56:72] }

// EntriesLBA returns the starting LBA of the partition entry array.
func (h Header) EntriesLBA() uint64 { return binary.LittleEndian.Uint64(h[72:80]) }

// NumEntries returns the number of partition entries.
func (h Header) NumEntries() uint32 { return binary.LittleEndian.Uint32(h[80:84]) }

// EntrySize returns the on-disk size of a single partition entry.
func (h Header) EntrySize() uint32 { return binary.LittleEndian.Uint32(h[84:88]) }

// EntriesCRC32 returns the stored checksum of the partition entry array.
func (h Header) EntriesCRC32() uint32 { return binary.LittleEndian.Uint32(h[88:92]) }

// Entry is a view over a raw GPT partition entry.
type Entry []byte

// TypeGUID returns the partition type GUID in on-disk order.
func (e Entry) TypeGUID() []byte { return e[0:16] }

// UniqueGUID returns the unique partition GUID in on-disk order.
func (e Entry) UniqueGUID() []byte { return e[16:32] }

// StartingLBA returns the first LBA of the partition.
func (e Entry) StartingLBA() uint64 { return binary.LittleEndian.Uint64(e[32:40]) }

// EndingLBA returns the last LBA of the partition (inclusive).
func (e Entry) EndingLBA() uint64 { return binary.LittleEndian.Uint64(e[40:48]) }

// Attributes returns the raw attribute flags.
func (e Entry) Attributes() uint64 { return binary.LittleEndian.Uint64(e[48:56]) }

// Name returns the raw UTF-16LE partition name (72 bytes).
func (e Entry) Name() []byte { return e[56:128] }
