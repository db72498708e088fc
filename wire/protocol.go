// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

// ProtocolVersion is the latest protocol version this package supports and
// advertises in the version handshake.
const ProtocolVersion uint32 = 70013

// MinAcceptableProtocolVersion is the lowest version a remote peer may
// advertise and still be accepted, per the node's own version negotiation.
const MinAcceptableProtocolVersion uint32 = 70000

// CommandSize is the fixed size in bytes of a message command/type field.
const CommandSize = 12

// MessageHeaderSize is the number of bytes in a wire protocol message
// header: magic(4) + command(12) + length(4) + checksum(4).
const MessageHeaderSize = 4 + CommandSize + 4 + 4

// MaxMessagePayload is the maximum size, in bytes, a message payload may be.
const MaxMessagePayload = 32 * 1024 * 1024 // 32 MiB

// CurrencyNet describes which chain's wire magic is in use.
type CurrencyNet uint32

// Magic values for the supported networks.
const (
	MainNet CurrencyNet = 0xd9b4bef9
	TestNet CurrencyNet = 0x0709110b
	SimNet  CurrencyNet = 0x12141c16
)

// String returns the CurrencyNet in human-readable form.
func (n CurrencyNet) String() string {
	switch n {
	case MainNet:
		return "MainNet"
	case TestNet:
		return "TestNet"
	case SimNet:
		return "SimNet"
	default:
		return "Unknown CurrencyNet"
	}
}

// ServiceFlag identifies services supported by a peer.
type ServiceFlag uint64

// Service flags understood by this node.
const (
	SFNodeNetwork ServiceFlag = 1 << iota
	SFNodeGetUTXO
	SFNodeBloom
	SFNodeWitness
)

// Commands used in message headers which describe the type of message.
const (
	CmdVersion     = "version"
	CmdVerAck      = "verack"
	CmdPing        = "ping"
	CmdPong        = "pong"
	CmdAddr        = "addr"
	CmdGetAddr     = "getaddr"
	CmdInv         = "inv"
	CmdGetData     = "getdata"
	CmdNotFound    = "notfound"
	CmdGetBlocks   = "getblocks"
	CmdGetHeaders  = "getheaders"
	CmdHeaders     = "headers"
	CmdBlock       = "block"
	CmdTx          = "tx"
	CmdReject      = "reject"
	CmdSendHeaders = "sendheaders"
	CmdSendCmpct   = "sendcmpct"
	CmdFeeFilter   = "feefilter"
)

// InvType represents the allowed types of inventory vectors.
type InvType uint32

// Inventory vector object types.
const (
	InvTypeError InvType = iota
	InvTypeTx
	InvTypeBlock
	InvTypeFilteredBlock
	InvTypeWitnessBlock
	InvTypeWitnessTx
)

// String returns the InvType in human-readable form.
func (t InvType) String() string {
	switch t {
	case InvTypeError:
		return "ERROR"
	case InvTypeTx:
		return "MSG_TX"
	case InvTypeBlock:
		return "MSG_BLOCK"
	case InvTypeFilteredBlock:
		return "MSG_FILTERED_BLOCK"
	case InvTypeWitnessBlock:
		return "MSG_WITNESS_BLOCK"
	case InvTypeWitnessTx:
		return "MSG_WITNESS_TX"
	default:
		return "Unknown InvType"
	}
}

// RejectCode represents a numeric value by which a remote peer indicates why
// a message was rejected.
type RejectCode uint8

// Supported reject codes.
const (
	RejectMalformed       RejectCode = 0x01
	RejectInvalid         RejectCode = 0x10
	RejectObsolete        RejectCode = 0x11
	RejectDuplicate       RejectCode = 0x12
	RejectNonStandard     RejectCode = 0x40
	RejectInsufficientFee RejectCode = 0x42
	RejectCheckpoint      RejectCode = 0x43
)
