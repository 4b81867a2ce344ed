// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package nvpt implements read support for the proprietary NVIDIA Tegra
// partition table found in the eMMC boot area.
package nvpt

import (
	"bytes"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tegratools/go-tegrablock/internal/ptstructs"
)

const (
	// VersionMagic is the only supported partition table version.
	VersionMagic = 0x00010000

	// MaxNumParts bounds the number of partition records.
	MaxNumParts = 24

	// TableSize is the size of the partition table block; the table
	// repeats after 0x1000 bytes on flash.
	TableSize = 4096

	// BCTID is the mandatory id of the boot configuration table record.
	BCTID = 2
)

var (
	// ErrVersionMismatch is returned when the version word doesn't match VersionMagic.
	ErrVersionMismatch = errors.New("invalid partition table version")

	// ErrInvalidBCT is returned when the boot configuration table record is malformed.
	ErrInvalidBCT = errors.New("invalid boot configuration table record")

	bctName = []byte("BCT")
	gptName = []byte("GPT")
)

// Partition is a single record of the Tegra partition table.
type Partition struct {
	Name  string
	Name2 string

	ID               uint32
	AllocationPolicy uint32
	FilesystemType   uint32

	VirtualStartSector uint32
	VirtualSize        uint32
	StartSector        uint32
	EndSector          uint32

	Type uint32
}

// Table is a decoded Tegra partition table.
type Table struct {
	// GPT points into Partitions at the record marking the location of
	// the GUID partition table, if any.
	GPT *Partition

	Partitions []Partition

	Version   uint32
	TableSize uint32
	NumParts  uint32
}

// Parse decodes the partition table from the first TableSize bytes of
// the boot area.
//
// Records past one with an id >= 128 are considered corrupt and
// ignored; the records before it are still returned.
func Parse(buf []byte, opts ...Option) (*Table, error) {
	options := applyOptions(opts...)

	if len(buf) < TableSize {
		return nil, fmt.Errorf("partition table buffer too small: %d bytes, expected at least %d", len(buf), TableSize)
	}

	hdr := ptstructs.Header(buf)

	if hdr.Version() != VersionMagic {
		return nil, fmt.Errorf("%w: 0x%08x, expected 0x%08x", ErrVersionMismatch, hdr.Version(), uint32(VersionMagic))
	}

	table := &Table{
		Version:   hdr.Version(),
		TableSize: hdr.TableSize(),
		NumParts:  hdr.NumParts(),
	}

	bct := hdr.Entry(0)

	if err := validateBCT(bct); err != nil {
		return nil, err
	}

	count := int(table.NumParts)
	if count > MaxNumParts {
		count = MaxNumParts
	}

	table.Partitions = append(table.Partitions, decodeRecord(bct))

	gptIdx := -1

	for i := 1; i < count; i++ {
		p := hdr.Entry(i)

		if p.ID() >= 128 {
			// corrupt or past the end of the real table
			options.Logger.Warn("partition record id out of range, truncating table",
				zap.Int("index", i),
				zap.Uint32("id", p.ID()),
			)

			break
		}

		table.Partitions = append(table.Partitions, decodeRecord(p))

		if bytes.Equal(p.Name()[:3], gptName) && bytes.Equal(p.Name2()[:3], gptName) {
			gptIdx = len(table.Partitions) - 1
		}
	}

	if gptIdx >= 0 {
		table.GPT = &table.Partitions[gptIdx]
	}

	return table, nil
}

func validateBCT(p ptstructs.PartInfo) error {
	if p.ID() != BCTID {
		return fmt.Errorf("%w: id %d, expected %d", ErrInvalidBCT, p.ID(), BCTID)
	}

	if !bytes.Equal(p.Name()[:3], bctName) || !bytes.Equal(p.Name2()[:3], bctName) {
		return fmt.Errorf("%w: name %q/%q, expected %q", ErrInvalidBCT, nameString(p.Name()), nameString(p.Name2()), bctName)
	}

	if p.StartSector() != 0 {
		return fmt.Errorf("%w: start sector %d, expected 0", ErrInvalidBCT, p.StartSector())
	}

	return nil
}

func decodeRecord(p ptstructs.PartInfo) Partition {
	return Partition{
		Name:  nameString(p.Name()),
		Name2: nameString(p.Name2()),

		ID:               p.ID(),
		AllocationPolicy: p.AllocationPolicy(),
		FilesystemType:   p.FilesystemType(),

		VirtualStartSector: p.VirtualStartSector(),
		VirtualSize:        p.VirtualSize(),
		StartSector:        p.StartSector(),
		EndSector:          p.EndSector(),

		Type: p.Type(),
	}
}

// nameString renders a 4-byte name tag; the tag is not necessarily
// NUL-terminated.
func nameString(raw []byte) string {
	return string(bytes.TrimRight(raw, "\x00"))
}
