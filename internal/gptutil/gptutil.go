// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package gptutil implements helper functions for GPT tables.
package gptutil

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

// GUIDToUUID converts an on-disk GPT GUID to RFC 4122 byte order.
//
// The first three fields are stored little-endian, the clock sequence
// and node are stored as-is.
func GUIDToUUID(g []byte) []byte {
	return append(
		[]byte{
			g[3], g[2], g[1], g[0],
			g[5], g[4],
			g[7], g[6],
			g[8], g[9],
		},
		g[10:16]...,
	)
}

// UUIDToGUID converts an RFC 4122 UUID to on-disk GPT GUID byte order.
func UUIDToGUID(u []byte) []byte {
	return append(
		[]byte{
			u[3], u[2], u[1], u[0],
			u[5], u[4],
			u[7], u[6],
			u[8], u[9],
		},
		u[10:16]...,
	)
}

const (
	surrogateMin    = 0xd800
	surrogateLowMin = 0xdc00
	surrogateMax    = 0xe000
)

// DecodeName decodes a fixed-length UTF-16LE name field.
//
// Decoding stops at the first NUL code unit or at the first malformed
// surrogate pair, whichever comes first, and the result is truncated to
// maxLen runes. A partial name is never an error.
func DecodeName(raw []byte, maxLen int) (string, error) {
	end := 0

	for end+1 < len(raw) {
		u := binary.LittleEndian.Uint16(raw[end:])

		switch {
		case u == 0:
			// terminator
		case u >= surrogateMin && u < surrogateLowMin:
			// high surrogate, must be followed by a low surrogate
			if end+3 >= len(raw) {
				break
			}

			next := binary.LittleEndian.Uint16(raw[end+2:])
			if next < surrogateLowMin || next >= surrogateMax {
				break
			}

			end += 4

			continue
		case u >= surrogateLowMin && u < surrogateMax:
			// dangling low surrogate
		default:
			end += 2

			continue
		}

		break
	}

	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw[:end])
	if err != nil {
		return "", err
	}

	runes := []rune(string(decoded))
	if maxLen > 0 && len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	return string(runes), nil
}
