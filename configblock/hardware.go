// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package configblock

import (
	"encoding/binary"
	"fmt"
)

const hardwareInfoSize = 8

// HardwareInfo is the hardware identity stored in the HW tag.
type HardwareInfo struct {
	VerMajor    uint16
	VerMinor    uint16
	VerAssembly uint16
	ProductID   uint16
}

func decodeHardwareInfo(b []byte) *HardwareInfo {
	return &HardwareInfo{
		VerMajor:    binary.LittleEndian.Uint16(b[0:2]),
		VerMinor:    binary.LittleEndian.Uint16(b[2:4]),
		VerAssembly: binary.LittleEndian.Uint16(b[4:6]),
		ProductID:   binary.LittleEndian.Uint16(b[6:8]),
	}
}

// UnknownModuleIDError is returned when the product id is not in the
// module name table.
type UnknownModuleIDError struct {
	ID uint16
}

func (e *UnknownModuleIDError) Error() string {
	return fmt.Sprintf("unknown Toradex module id %d", e.ID)
}

// moduleNames maps product ids to module names; ids 18 and 19 were
// never assigned.
var moduleNames = []string{
	0:  "invalid",
	1:  "Colibri PXA270 312MHz",
	2:  "Colibri PXA270 520MHz",
	3:  "Colibri PXA320 806MHz",
	4:  "Colibri PXA300 208MHz",
	5:  "Colibri PXA310 624MHz",
	6:  "Colibri PXA320 806MHz IT",
	7:  "Colibri PXA300 208MHz XT",
	8:  "Colibri PXA270 312MHz",
	9:  "Colibri PXA270 520MHz",
	10: "Colibri VF50 128MB",
	11: "Colibri VF61 256MB",
	12: "Colibri VF61 256MB IT",
	13: "Colibri VF50 128MB IT",
	14: "Colibri iMX6 Solo 256MB",
	15: "Colibri iMX6 DualLite 512MB",
	16: "Colibri iMX6 Solo 256MB IT",
	17: "Colibri iMX6 DualLite 512MB IT",
	20: "Colibri T20 256MB",
	21: "Colibri T20 512MB",
	22: "Colibri T20 512MB IT",
	23: "Colibri T30 1GB",
	24: "Colibri T20 256MB IT",
	25: "Apalis T30 2GB",
	26: "Apalis T30 1GB",
	27: "Apalis iMX6 Quad 1GB",
	28: "Apalis iMX6 Quad 2GB IT",
	29: "Apalis iMX6 Dual 512MB",
	30: "Colibri T30 1GB IT",
	31: "Apalis T30 1GB IT",
}

// ModuleName returns the human-readable module name for the product id.
func (hw *HardwareInfo) ModuleName() (string, error) {
	if int(hw.ProductID) >= len(moduleNames) || moduleNames[hw.ProductID] == "" {
		return "", &UnknownModuleIDError{ID: hw.ProductID}
	}

	return moduleNames[hw.ProductID], nil
}

// Model returns the full model designation, e.g.
// "Toradex Apalis T30 2GB V1.1A".
func (hw *HardwareInfo) Model() (string, error) {
	name, err := hw.ModuleName()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Toradex %s V%d.%d%c", name, hw.VerMajor, hw.VerMinor, 'A'+rune(hw.VerAssembly)), nil
}
