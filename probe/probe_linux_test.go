// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build linux

package probe_test

import (
	"encoding/binary"
	"errors"
	randv2 "math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/freddierice/go-losetup/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sys/unix"

	"github.com/tegratools/go-tegrablock/configblock"
	"github.com/tegratools/go-tegrablock/probe"
)

func losetupAttachHelper(t *testing.T, rawImage string, readonly bool) losetup.Device {
	t.Helper()

	for i := 0; i < 10; i++ {
		loDev, err := losetup.Attach(rawImage, 0, readonly)
		if err != nil {
			if errors.Is(err, unix.EBUSY) {
				spraySleep := max(randv2.ExpFloat64(), 2.0)

				t.Logf("retrying after %v seconds", spraySleep)

				time.Sleep(time.Duration(spraySleep * float64(time.Second)))

				continue
			}
		}

		require.NoError(t, err)

		return loDev
	}

	t.Fatal("failed to attach loop device") //nolint:revive

	panic("unreachable")
}

func attachImage(t *testing.T, name string, data []byte) string {
	t.Helper()

	rawImage := filepath.Join(t.TempDir(), name)

	require.NoError(t, os.WriteFile(rawImage, data, 0o644))

	loDev := losetupAttachHelper(t, rawImage, true)

	t.Cleanup(func() {
		assert.NoError(t, loDev.Detach())
	})

	return loDev.Path()
}

func TestProbePaths(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("test requires root privileges")
	}

	bootPath := attachImage(t, "boot.raw", buildBootArea(
		ptRecord{id: 4, name: "GPT", start: 4096, end: 8191},
	))
	gptPath := attachImage(t, "gpt.raw", buildGPTDevice(rootEntry()))

	info, err := probe.ProbePaths(bootPath, gptPath, probe.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	require.NotNil(t, info.PartitionTable)
	require.NotNil(t, info.PartitionTable.GPT)

	require.NotNil(t, info.GPT)
	assert.Equal(t, testDiskGUID, info.GPT.DiskGUID)

	parts := info.GPTPartitions()
	require.Len(t, parts, 1)
	assert.Equal(t, "ROOT", *parts[0].Label)

	// without a GPT device path the locator is left unchased
	info, err = probe.ProbePaths(bootPath, "", probe.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	require.NotNil(t, info.PartitionTable.GPT)
	assert.Nil(t, info.GPT)
}

func TestReadConfigBlockPaths(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("test requires root privileges")
	}

	// config block in the last sector of the boot area image
	img := make([]byte, 8192)
	tail := img[len(img)-configblock.BlockSize:]

	binary.LittleEndian.PutUint16(tail[0:], 0x4000)
	binary.LittleEndian.PutUint16(tail[2:], configblock.TagValid)
	binary.LittleEndian.PutUint16(tail[4:], 0x4002)
	binary.LittleEndian.PutUint16(tail[6:], configblock.TagMAC)
	copy(tail[8:14], []byte{0x00, 0x14, 0x2d, 0x12, 0x34, 0x56})

	path := attachImage(t, "cfg.raw", img)

	cb, err := probe.ReadConfigBlock([]probe.ConfigBlockLocation{
		{Path: "/dev/does-not-exist", Offset: 0},
		{Path: path, Offset: configblock.DefaultBootAreaOffset},
	}, probe.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	require.NotNil(t, cb)
	assert.Equal(t, int64(len(img)-configblock.BlockSize), cb.Offset)
	assert.Equal(t, "00:14:2d:12:34:56", cb.Ethernet.String())
	assert.Equal(t, uint32(0x123456), cb.Serial())

	// empty device: not an error, just no config block
	emptyPath := attachImage(t, "empty.raw", make([]byte, 8192))

	cb, err = probe.ReadConfigBlock([]probe.ConfigBlockLocation{
		{Path: emptyPath, Offset: configblock.DefaultBootAreaOffset},
	}, probe.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Nil(t, cb)
}
