// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package gpt implements read support for GPT partition tables stored
// in the last sector of a device.
//
// Tegra images carry the GPT at the very end of the eMMC user area, so
// only the backup header is located; the header block is always read as
// the final 512 bytes regardless of the device logical sector size,
// matching the historical on-disk layout.
package gpt

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tegratools/go-tegrablock/blockio"
	"github.com/tegratools/go-tegrablock/internal/gptstructs"
	"github.com/tegratools/go-tegrablock/internal/gptutil"
)

const (
	// HeaderBlockSize is the fixed size of the header read at the end of the device.
	HeaderBlockSize = 512

	// MaxEntryArraySize caps the partition entry array allocation.
	//
	// The header checksum does not cover the entry array, so a
	// CRC-valid header may still carry a garbage entry count.
	MaxEntryArraySize = 1 << 20
)

var (
	// ErrBadSignature is returned when the header signature is not "EFI PART".
	ErrBadSignature = errors.New("invalid GPT header signature")

	// ErrEntryArrayTooBig is returned when the entry array exceeds MaxEntryArraySize.
	ErrEntryArrayTooBig = errors.New("GPT entry array too big")
)

// ChecksumError is returned when the header checksum does not match.
type ChecksumError struct {
	Expected uint32 // stored in the header
	Actual   uint32 // computed over the header bytes
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("invalid GPT header CRC 0x%08x, calculated 0x%08x", e.Expected, e.Actual)
}

// Partition is a single partition entry in GPT.
type Partition struct {
	Name string

	TypeGUID uuid.UUID
	PartGUID uuid.UUID

	FirstLBA uint64
	LastLBA  uint64

	Flags uint64
}

// Sectors returns the partition size in logical sectors.
func (p *Partition) Sectors() uint64 {
	return p.LastLBA - p.FirstLBA + 1
}

// Table is a decoded GPT header and its partition entry array.
//
// Partitions has one slot per entry in the on-disk array; unused slots
// (zero type GUID) are nil, so slice indices match on-disk entry
// numbers.
type Table struct {
	DiskGUID uuid.UUID

	Partitions []*Partition

	Revision   uint32
	HeaderSize uint32

	MyLBA          uint64
	AlternateLBA   uint64
	FirstUsableLBA uint64
	LastUsableLBA  uint64
	EntriesLBA     uint64

	NumEntries uint32
	EntrySize  uint32

	SectorSize uint
}

// Read locates and decodes the GPT in the last sector of the device.
func Read(dev blockio.Reader) (*Table, error) {
	size := dev.GetSize()
	if size < HeaderBlockSize {
		return nil, fmt.Errorf("device too small for GPT: %d bytes", size)
	}

	buf := make([]byte, HeaderBlockSize)
	if err := blockio.ReadFullAt(dev, buf, int64(size)-HeaderBlockSize); err != nil {
		return nil, err
	}

	hdr := gptstructs.Header(buf)

	if !bytes.Equal(hdr.Signature(), gptstructs.HeaderSignature) {
		return nil, ErrBadSignature
	}

	headerSize := hdr.HeaderSize()
	if headerSize < gptstructs.HeaderSize || headerSize > HeaderBlockSize {
		return nil, fmt.Errorf("invalid GPT header size %d", headerSize)
	}

	if stored, computed := hdr.HeaderCRC32(), hdr.CalculateChecksum(); stored != computed {
		return nil, &ChecksumError{
			Expected: stored,
			Actual:   computed,
		}
	}

	diskGUID, err := uuid.FromBytes(gptutil.GUIDToUUID(hdr.DiskGUID()))
	if err != nil {
		return nil, err
	}

	table := &Table{
		DiskGUID: diskGUID,

		Revision:   hdr.Revision(),
		HeaderSize: headerSize,

		MyLBA:          hdr.MyLBA(),
		AlternateLBA:   hdr.AlternateLBA(),
		FirstUsableLBA: hdr.FirstUsableLBA(),
		LastUsableLBA:  hdr.LastUsableLBA(),
		EntriesLBA:     hdr.EntriesLBA(),

		NumEntries: hdr.NumEntries(),
		EntrySize:  hdr.EntrySize(),

		SectorSize: dev.GetSectorSize(),
	}

	entries, err := readEntries(dev, table)
	if err != nil {
		return nil, err
	}

	table.Partitions = entries

	return table, nil
}

// readEntries reads the partition entry array the header points at.
//
// The read length is rounded up to a whole number of logical sectors;
// the entry stride is taken from the header and may exceed the natural
// entry size, in which case the extra bytes are skipped.
func readEntries(dev blockio.Reader, table *Table) ([]*Partition, error) {
	if table.NumEntries == 0 {
		return nil, nil
	}

	entrySize := uint64(table.EntrySize)
	if entrySize < gptstructs.EntrySize {
		return nil, fmt.Errorf("invalid GPT entry size %d", table.EntrySize)
	}

	arrayBytes := uint64(table.NumEntries) * entrySize
	if arrayBytes > MaxEntryArraySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrEntryArrayTooBig, arrayBytes)
	}

	sectorSize := uint64(table.SectorSize)
	blocks := (arrayBytes + sectorSize - 1) / sectorSize

	entriesBuf := make([]byte, blocks*sectorSize)
	if err := blockio.ReadFullAt(dev, entriesBuf, int64(table.EntriesLBA*sectorSize)); err != nil {
		return nil, err
	}

	partitions := make([]*Partition, table.NumEntries)
	zeroGUID := make([]byte, 16)

	for i := uint64(0); i < uint64(table.NumEntries); i++ {
		entry := gptstructs.Entry(entriesBuf[i*entrySize : i*entrySize+gptstructs.EntrySize])

		// unused entry slot
		if bytes.Equal(entry.TypeGUID(), zeroGUID) {
			continue
		}

		partition, err := decodeEntry(entry)
		if err != nil {
			return nil, err
		}

		partitions[i] = partition
	}

	return partitions, nil
}

func decodeEntry(entry gptstructs.Entry) (*Partition, error) {
	partGUID, err := uuid.FromBytes(gptutil.GUIDToUUID(entry.UniqueGUID()))
	if err != nil {
		return nil, err
	}

	typeGUID, err := uuid.FromBytes(gptutil.GUIDToUUID(entry.TypeGUID()))
	if err != nil {
		return nil, err
	}

	name, err := gptutil.DecodeName(entry.Name(), gptstructs.EntryNameLength)
	if err != nil {
		return nil, err
	}

	return &Partition{
		Name: name,

		TypeGUID: typeGUID,
		PartGUID: partGUID,

		FirstLBA: entry.StartingLBA(),
		LastLBA:  entry.EndingLBA(),

		Flags: entry.Attributes(),
	}, nil
}
