// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"net"
	"time"
)

// NetAddress defines information about a peer on the network, as it is
// encoded on the wire: a timestamp, the services it advertises, its IP (as
// a 16-byte value, v4-mapped when needed), and its port.
type NetAddress struct {
	Timestamp time.Time
	Services  ServiceFlag
	IP        net.IP
	Port      uint16
}

// HasService returns whether the NetAddress advertises the given service.
func (na *NetAddress) HasService(service ServiceFlag) bool {
	return na.Services&service == service
}

// AddService adds service as one the NetAddress supports.
func (na *NetAddress) AddService(service ServiceFlag) {
	na.Services |= service
}

// NewNetAddressIPPort returns a new NetAddress from an IP and port, with the
// timestamp defaulted to now.
func NewNetAddressIPPort(ip net.IP, port uint16, services ServiceFlag) *NetAddress {
	return &NetAddress{
		Timestamp: time.Now(),
		Services:  services,
		IP:        ip,
		Port:      port,
	}
}

func readNetAddress(r io.Reader, pver uint32, na *NetAddress, ts bool) error {
	var ip [16]byte

	if ts {
		var stamp uint32
		if err := ReadElement(r, &stamp); err != nil {
			return err
		}
		na.Timestamp = time.Unix(int64(stamp), 0)
	}

	if err := ReadElement(r, &na.Services); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, ip[:]); err != nil {
		return err
	}

	var port [2]byte
	if _, err := io.ReadFull(r, port[:]); err != nil {
		return err
	}

	*na = NetAddress{
		Timestamp: na.Timestamp,
		Services:  na.Services,
		IP:        net.IP(append([]byte(nil), ip[:]...)),
		Port:      uint16(port[0])<<8 | uint16(port[1]),
	}
	return nil
}

func writeNetAddress(w io.Writer, pver uint32, na *NetAddress, ts bool) error {
	if ts {
		if err := WriteElement(w, uint32(na.Timestamp.Unix())); err != nil {
			return err
		}
	}

	if err := WriteElement(w, na.Services); err != nil {
		return err
	}

	var ip [16]byte
	if na.IP != nil {
		copy(ip[:], na.IP.To16())
	}
	if _, err := w.Write(ip[:]); err != nil {
		return err
	}

	port := [2]byte{byte(na.Port >> 8), byte(na.Port)}
	_, err := w.Write(port[:])
	return err
}

// maxNetAddressPayload returns the maximum length of an encoded NetAddress.
func maxNetAddressPayload(pver uint32) uint64 {
	// timestamp 4 + services 8 + ip 16 + port 2
	return 30
}
