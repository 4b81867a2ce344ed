// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package configblock

import (
	"fmt"
)

// EthernetAddressSize is the size of the MAC tag payload that carries data.
const EthernetAddressSize = 6

// EthernetAddress is the module MAC address in transmission order:
// the OUI in the first three bytes, the NIC in the last three.
type EthernetAddress [EthernetAddressSize]byte

// OUI returns the organizationally unique identifier half of the address.
func (a *EthernetAddress) OUI() uint32 {
	return uint32(a[0])<<16 | uint32(a[1])<<8 | uint32(a[2])
}

// NIC returns the network interface controller half of the address.
func (a *EthernetAddress) NIC() uint32 {
	return uint32(a[3])<<16 | uint32(a[4])<<8 | uint32(a[5])
}

// Serial returns the module serial number.
//
// Toradex assigns the NIC half of the MAC address as the module serial
// number.
func (a *EthernetAddress) Serial() uint32 {
	return a.NIC()
}

// String renders the address in colon-separated hex.
func (a *EthernetAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}
