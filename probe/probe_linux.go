// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build linux

package probe

import (
	"github.com/tegratools/go-tegrablock/block"
	"github.com/tegratools/go-tegrablock/configblock"
)

// Default device locations as flashed on Apalis/Colibri Tegra modules.
const (
	// DefaultBootDevice holds the Tegra partition table.
	DefaultBootDevice = "/dev/mmcblk0boot1"

	// DefaultGPTDevice holds the GPT in its last sector.
	DefaultGPTDevice = "/dev/mmcblk0"

	// DefaultConfigBlockBootDevice holds the config block on BSP >= 2.3.
	DefaultConfigBlockBootDevice = "/dev/mmcblk0boot0"
)

// DefaultConfigBlockLocations returns the candidate chain of config
// block locations, newest BSP layout first.
func DefaultConfigBlockLocations() []ConfigBlockLocation {
	return []ConfigBlockLocation{
		{
			Path:   DefaultConfigBlockBootDevice,
			Offset: configblock.DefaultBootAreaOffset,
		},
		{
			Path:   DefaultGPTDevice,
			Offset: configblock.DefaultUserAreaOffset,
		},
	}
}

// ProbePaths probes the specified boot and GPT device paths.
//
// gptPath may be empty; the GPT is then not chased even if the
// partition table carries a locator record.
func ProbePaths(bootPath, gptPath string, opts ...Option) (*Info, error) {
	bootDev, err := block.NewFromPath(bootPath)
	if err != nil {
		return nil, err
	}

	defer bootDev.Close() //nolint:errcheck

	var gptDev *block.Device

	if gptPath != "" {
		gptDev, err = block.NewFromPath(gptPath)
		if err != nil {
			return nil, err
		}

		defer gptDev.Close() //nolint:errcheck
	}

	if gptDev == nil {
		return Probe(bootDev, nil, opts...)
	}

	return Probe(bootDev, gptDev, opts...)
}
