// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gptstructs

import (
	"slices"

	"github.com/tegratools/go-tegrablock/internal/utils"
)

// CalculateChecksum calculates the checksum of the header.
//
// The window covers exactly the header-declared size, with the checksum
// field itself (bytes 16..19) zeroed.
func (h Header) CalculateChecksum() uint32 {
	b := slices.Clone(h[:h.HeaderSize()])

	b[16] = 0
	b[17] = 0
	b[18] = 0
	b[19] = 0

	return utils.CRC32(b)
}
