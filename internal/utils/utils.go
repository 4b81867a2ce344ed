// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package utils provides utility functions.
package utils

import (
	"hash/crc32"
)

// CRC32 computes the IEEE 802.3 CRC32 of buf.
//
// Initial register 0xFFFFFFFF, reflected polynomial 0xEDB88320, final
// XOR 0xFFFFFFFF: the checksum used both by GPT headers and by the
// Tegra boot tools.
func CRC32(buf []byte) uint32 {
	return crc32.ChecksumIEEE(buf)
}

// IsPowerOf2 returns true if num is a power of 2.
func IsPowerOf2[T uint8 | uint16 | uint32 | uint64 | uint](num T) bool {
	return (num != 0 && ((num & (num - 1)) == 0))
}
