// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package probe ties the decoders together: it reads the Tegra
// partition table from the boot area, chases the GPT it points at, and
// walks the config block candidate locations.
package probe

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/siderolabs/go-pointer"
	"go.uber.org/zap"

	"github.com/tegratools/go-tegrablock/block"
	"github.com/tegratools/go-tegrablock/blockio"
	"github.com/tegratools/go-tegrablock/configblock"
	"github.com/tegratools/go-tegrablock/partitioning/gpt"
	"github.com/tegratools/go-tegrablock/partitioning/nvpt"
)

// Info is the combined result of probing a Tegra device pair.
type Info struct {
	// PartitionTable is the proprietary table from the boot area.
	PartitionTable *nvpt.Table

	// GPT is the GUID partition table, present only when the
	// proprietary table carries a GPT locator record and a GPT device
	// was supplied.
	GPT *gpt.Table
}

// PartitionInfo is a display-ready summary of a GPT partition.
type PartitionInfo struct {
	UUID     *uuid.UUID
	TypeUUID *uuid.UUID
	Label    *string

	Index uint // 1-based index

	Offset uint64
	Size   uint64
}

// GPTPartitions returns the GPT partitions as display-ready summaries.
//
// Unused entry slots are skipped, but the 1-based Index always reflects
// the on-disk slot number, matching the kernel partition numbering.
func (i *Info) GPTPartitions() []PartitionInfo {
	if i.GPT == nil {
		return nil
	}

	sectorSize := uint64(i.GPT.SectorSize)

	var parts []PartitionInfo

	for idx, p := range i.GPT.Partitions {
		if p == nil {
			continue
		}

		var label *string
		if p.Name != "" {
			label = pointer.To(p.Name)
		}

		parts = append(parts, PartitionInfo{
			UUID:     pointer.To(p.PartGUID),
			TypeUUID: pointer.To(p.TypeGUID),
			Label:    label,

			Index: uint(idx) + 1,

			Offset: p.FirstLBA * sectorSize,
			Size:   p.Sectors() * sectorSize,
		})
	}

	return parts
}

// Probe reads the Tegra partition table from bootDev and, if the table
// carries a GPT locator record, the GPT from gptDev.
//
// A missing locator record is not an error: the returned Info simply
// has no GPT.
func Probe(bootDev, gptDev blockio.Reader, opts ...Option) (*Info, error) {
	options := applyOptions(opts...)

	buf := make([]byte, nvpt.TableSize)
	if err := blockio.ReadFullAt(bootDev, buf, 0); err != nil {
		return nil, err
	}

	pt, err := nvpt.Parse(buf, nvpt.WithLogger(options.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Tegra partition table: %w", err)
	}

	info := &Info{
		PartitionTable: pt,
	}

	if pt.GPT == nil {
		options.Logger.Warn("no GPT locator record in the Tegra partition table")

		return info, nil
	}

	if gptDev == nil {
		return info, nil
	}

	table, err := gpt.Read(gptDev)
	if err != nil {
		return nil, fmt.Errorf("failed to read GPT: %w", err)
	}

	info.GPT = table

	return info, nil
}

// ConfigBlockLocation is a candidate device/offset pair for the config block.
type ConfigBlockLocation struct {
	Path   string
	Offset int64
}

// ReadConfigBlock tries the candidate locations in order and returns
// the first config block found.
//
// Candidates that can't be opened or hold no valid block are skipped;
// a malformed block is a hard error. Returns (nil, nil) when no
// candidate has a config block.
func ReadConfigBlock(locations []ConfigBlockLocation, opts ...Option) (*configblock.ConfigBlock, error) {
	options := applyOptions(opts...)

	for _, loc := range locations {
		dev, err := block.NewFromPath(loc.Path)
		if err != nil {
			options.Logger.Debug("skipping config block candidate",
				zap.String("path", loc.Path),
				zap.Error(err),
			)

			continue
		}

		cb, err := configblock.Read(dev, loc.Offset, configblock.WithLogger(options.Logger))

		dev.Close() //nolint:errcheck

		if err != nil {
			return nil, fmt.Errorf("failed to read config block from %s at offset %d: %w", loc.Path, loc.Offset, err)
		}

		if cb != nil {
			return cb, nil
		}

		options.Logger.Warn("no valid config block found",
			zap.String("path", loc.Path),
			zap.Int64("offset", loc.Offset),
		)
	}

	return nil, nil //nolint:nilnil
}
