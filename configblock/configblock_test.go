// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package configblock_test

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tegratools/go-tegrablock/configblock"
)

type memDevice struct {
	data       []byte
	sectorSize uint
}

func (d *memDevice) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(d.data)) {
		return 0, io.EOF
	}

	n := copy(p, d.data[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (d *memDevice) GetSectorSize() uint { return d.sectorSize }

func (d *memDevice) GetSize() uint64 { return uint64(len(d.data)) }

type blockBuilder struct {
	buf []byte
	off int
}

func newBlockBuilder() *blockBuilder {
	b := &blockBuilder{
		buf: make([]byte, configblock.BlockSize),
	}

	b.tag(configblock.TagValid, configblock.TagFlagValid, nil)

	return b
}

// tag appends a tag header and its payload padded to 4-byte units.
func (b *blockBuilder) tag(id uint16, flags uint8, payload []byte) *blockBuilder {
	units := (len(payload) + 3) / 4

	binary.LittleEndian.PutUint16(b.buf[b.off:], uint16(units)|uint16(flags)<<14)
	binary.LittleEndian.PutUint16(b.buf[b.off+2:], id)
	b.off += 4

	copy(b.buf[b.off:], payload)
	b.off += units * 4

	return b
}

func (b *blockBuilder) hw(major, minor, assembly, prodID uint16) *blockBuilder {
	payload := make([]byte, 8)

	binary.LittleEndian.PutUint16(payload[0:], major)
	binary.LittleEndian.PutUint16(payload[2:], minor)
	binary.LittleEndian.PutUint16(payload[4:], assembly)
	binary.LittleEndian.PutUint16(payload[6:], prodID)

	return b.tag(configblock.TagHW, configblock.TagFlagValid, payload)
}

func (b *blockBuilder) mac(addr [6]byte) *blockBuilder {
	// the MAC payload occupies two 4-byte units
	payload := make([]byte, 8)
	copy(payload, addr[:])

	return b.tag(configblock.TagMAC, configblock.TagFlagValid, payload)
}

func TestRead(t *testing.T) {
	logger := zaptest.NewLogger(t)

	block := newBlockBuilder().
		hw(1, 1, 0, 25).
		mac([6]byte{0x00, 0x14, 0x2d, 0x00, 0x14, 0x00}).
		buf

	cb, err := configblock.Read(&memDevice{data: block, sectorSize: 512}, 0, configblock.WithLogger(logger))
	require.NoError(t, err)
	require.NotNil(t, cb)

	assert.Equal(t, int64(0), cb.Offset)

	require.NotNil(t, cb.Hardware)
	assert.Equal(t, uint16(25), cb.Hardware.ProductID)

	name, err := cb.Hardware.ModuleName()
	require.NoError(t, err)
	assert.Equal(t, "Apalis T30 2GB", name)

	model, err := cb.Hardware.Model()
	require.NoError(t, err)
	assert.Equal(t, "Toradex Apalis T30 2GB V1.1A", model)

	require.NotNil(t, cb.Ethernet)
	assert.Equal(t, "00:14:2d:00:14:00", cb.Ethernet.String())
	assert.Equal(t, uint32(0x00142d), cb.Ethernet.OUI())
	assert.Equal(t, uint32(0x001400), cb.Ethernet.NIC())

	// the NIC half of the MAC is the serial number
	assert.Equal(t, uint32(5120), cb.Serial())
	assert.Equal(t, "00005120", cb.SerialString())
}

func TestReadNegativeOffset(t *testing.T) {
	block := newBlockBuilder().
		mac([6]byte{0x00, 0x14, 0x2d, 0x12, 0x34, 0x56}).
		buf

	// config block in the last 512 bytes of a 4 KiB boot area
	img := make([]byte, 4096)
	copy(img[4096-configblock.BlockSize:], block)

	cb, err := configblock.Read(&memDevice{data: img, sectorSize: 512}, configblock.DefaultBootAreaOffset)
	require.NoError(t, err)
	require.NotNil(t, cb)

	assert.Equal(t, int64(4096-configblock.BlockSize), cb.Offset)
	assert.Equal(t, uint32(0x123456), cb.Serial())
}

func TestReadUnknownTagSkipped(t *testing.T) {
	block := newBlockBuilder().
		tag(0x002a, configblock.TagFlagValid, []byte{0xde, 0xad, 0xbe, 0xef}).
		hw(1, 0, 1, 23).
		buf

	cb, err := configblock.Read(&memDevice{data: block, sectorSize: 512}, 0, configblock.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.NotNil(t, cb)

	require.NotNil(t, cb.Hardware)

	name, err := cb.Hardware.ModuleName()
	require.NoError(t, err)
	assert.Equal(t, "Colibri T30 1GB", name)

	model, err := cb.Hardware.Model()
	require.NoError(t, err)
	assert.Equal(t, "Toradex Colibri T30 1GB V1.0B", model)

	assert.Nil(t, cb.Ethernet)
}

func TestReadNoConfigBlock(t *testing.T) {
	cb, err := configblock.Read(&memDevice{data: make([]byte, 4096), sectorSize: 512}, 0)
	require.NoError(t, err)
	assert.Nil(t, cb)
}

func TestReadShortDevice(t *testing.T) {
	_, err := configblock.Read(&memDevice{data: make([]byte, 256), sectorSize: 512}, 0)
	assert.Error(t, err)
}

func TestReadOverrunningTag(t *testing.T) {
	block := newBlockBuilder().buf

	// tag header claiming a payload past the end of the block
	binary.LittleEndian.PutUint16(block[4:], 0x3fff|configblock.TagFlagValid<<14)
	binary.LittleEndian.PutUint16(block[6:], configblock.TagHW)

	_, err := configblock.Read(&memDevice{data: block, sectorSize: 512}, 0)
	assert.Error(t, err)
}

func TestUnknownModuleID(t *testing.T) {
	for _, prodID := range []uint16{18, 19, 44, 1000} {
		block := newBlockBuilder().hw(1, 0, 0, prodID).buf

		cb, err := configblock.Read(&memDevice{data: block, sectorSize: 512}, 0)
		require.NoError(t, err)
		require.NotNil(t, cb.Hardware)

		_, err = cb.Hardware.ModuleName()

		var unknownErr *configblock.UnknownModuleIDError

		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, prodID, unknownErr.ID)
	}
}
