// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
)

// Message is the interface every wire protocol message type implements: a
// command name plus symmetric (de)serialization.
type Message interface {
	Command() string
	BtcDecode(r io.Reader, pver uint32) error
	BtcEncode(w io.Writer, pver uint32) error
	MaxPayloadLength(pver uint32) uint64
}

// messageHeader is the fixed-size prefix that precedes every message
// payload on the wire.
type messageHeader struct {
	magic    CurrencyNet
	command  string
	length   uint32
	checksum [4]byte
}

func readMessageHeader(r io.Reader) (*messageHeader, error) {
	var hdr messageHeader
	if err := ReadElement(r, &hdr.magic); err != nil {
		return nil, err
	}

	var command [CommandSize]byte
	if err := ReadElement(r, &command); err != nil {
		return nil, err
	}
	cmd, ok := commandString(command)
	if !ok {
		return nil, messageError("readMessageHeader", "command is not properly NUL padded")
	}
	hdr.command = cmd

	if err := ReadElement(r, &hdr.length); err != nil {
		return nil, err
	}
	if err := ReadElement(r, &hdr.checksum); err != nil {
		return nil, err
	}
	return &hdr, nil
}

// commandString extracts the ASCII command from its fixed-size field. Every
// byte after the first NUL must also be NUL, otherwise the frame is
// malformed and the connection it arrived on must be closed.
func commandString(raw [CommandSize]byte) (string, bool) {
	end := CommandSize
	for i, b := range raw {
		if b == 0x00 {
			end = i
			break
		}
	}
	for _, b := range raw[end:] {
		if b != 0x00 {
			return "", false
		}
	}
	return string(raw[:end]), true
}

func encodeCommand(command string) ([CommandSize]byte, error) {
	var buf [CommandSize]byte
	if len(command) > CommandSize {
		return buf, messageError("encodeCommand", fmt.Sprintf(
			"command %q exceeds max length of %d", command, CommandSize))
	}
	copy(buf[:], command)
	return buf, nil
}

// MakeEmptyMessage returns a new, empty concrete message for the given
// command string so it can be decoded into, or an error for unrecognized
// commands so callers can log and drop them without treating it as fatal.
func MakeEmptyMessage(command string) (Message, error) {
	switch command {
	case CmdVersion:
		return &MsgVersion{}, nil
	case CmdVerAck:
		return &MsgVerAck{}, nil
	case CmdPing:
		return &MsgPing{}, nil
	case CmdPong:
		return &MsgPong{}, nil
	case CmdAddr:
		return &MsgAddr{}, nil
	case CmdGetAddr:
		return &MsgGetAddr{}, nil
	case CmdInv:
		return &MsgInv{}, nil
	case CmdGetData:
		return &MsgGetData{}, nil
	case CmdNotFound:
		return &MsgNotFound{}, nil
	case CmdGetBlocks:
		return &MsgGetBlocks{}, nil
	case CmdGetHeaders:
		return &MsgGetHeaders{}, nil
	case CmdHeaders:
		return &MsgHeaders{}, nil
	case CmdBlock:
		return &MsgBlock{}, nil
	case CmdTx:
		return &MsgTx{}, nil
	case CmdReject:
		return &MsgReject{}, nil
	case CmdSendHeaders:
		return &MsgSendHeaders{}, nil
	case CmdSendCmpct:
		return &MsgSendCmpct{}, nil
	case CmdFeeFilter:
		return &MsgFeeFilter{}, nil
	}
	return nil, messageError("MakeEmptyMessage", fmt.Sprintf("unhandled command [%s]", command))
}

// WriteMessageN writes a complete wire message (header+payload) for msg to
// w and returns the total number of bytes written.
func WriteMessageN(w io.Writer, msg Message, pver uint32, xnet CurrencyNet) (int, error) {
	var bw bytes.Buffer
	if err := msg.BtcEncode(&bw, pver); err != nil {
		return 0, err
	}
	payload := bw.Bytes()
	lenp := uint64(len(payload))

	mpl := msg.MaxPayloadLength(pver)
	if lenp > mpl {
		return 0, messageError("WriteMessageN", fmt.Sprintf(
			"message payload is too large - encoded %d bytes, but maximum message payload is %d bytes",
			lenp, mpl))
	}
	if lenp > MaxMessagePayload {
		return 0, messageError("WriteMessageN", fmt.Sprintf(
			"message payload is too large - encoded %d bytes, but maximum message payload is %d bytes",
			lenp, MaxMessagePayload))
	}

	command, err := encodeCommand(msg.Command())
	if err != nil {
		return 0, err
	}

	checksum := chainhash.DoubleHashB(payload)

	var hw bytes.Buffer
	if err := WriteElement(&hw, xnet); err != nil {
		return 0, err
	}
	if err := WriteElement(&hw, command); err != nil {
		return 0, err
	}
	if err := WriteElement(&hw, uint32(lenp)); err != nil {
		return 0, err
	}
	if _, err := hw.Write(checksum[:4]); err != nil {
		return 0, err
	}

	n, err := w.Write(hw.Bytes())
	if err != nil {
		return n, err
	}
	n2, err := w.Write(payload)
	return n + n2, err
}

// ReadMessageN reads a single complete wire message from r and returns the
// decoded header, the concrete Message, and the raw payload bytes. Unknown
// commands return a nil Message and a nil error so the caller can log and
// drop rather than disconnect.
func ReadMessageN(r io.Reader, pver uint32, xnet CurrencyNet) (int, Message, []byte, error) {
	hdr, err := readMessageHeader(r)
	if err != nil {
		return 0, nil, nil, err
	}
	if hdr.magic != xnet {
		return 0, nil, nil, messageError("ReadMessageN", fmt.Sprintf(
			"unexpected network magic %v for net %v", hdr.magic, xnet))
	}
	if hdr.length > MaxMessagePayload {
		return 0, nil, nil, messageError("ReadMessageN", fmt.Sprintf(
			"message payload is too large - header length %d, max %d", hdr.length, MaxMessagePayload))
	}

	payload := make([]byte, hdr.length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, nil, err
	}

	checksum := chainhash.DoubleHashB(payload)
	if !bytes.Equal(checksum[:4], hdr.checksum[:]) {
		return 0, nil, nil, messageError("ReadMessageN", fmt.Sprintf(
			"payload checksum failed - header indicates %x, calculated %x",
			hdr.checksum, checksum[:4]))
	}

	msg, err := MakeEmptyMessage(hdr.command)
	if err != nil {
		// Unknown command: logged and dropped by the caller, not fatal.
		return MessageHeaderSize + len(payload), nil, payload, nil
	}

	mpl := msg.MaxPayloadLength(pver)
	if uint64(len(payload)) > mpl {
		return 0, nil, nil, messageError("ReadMessageN", fmt.Sprintf(
			"payload exceeds max length for command [%s] - encoded %d bytes, max %d",
			hdr.command, len(payload), mpl))
	}

	if err := msg.BtcDecode(bytes.NewReader(payload), pver); err != nil {
		return 0, nil, nil, err
	}

	return MessageHeaderSize + len(payload), msg, payload, nil
}
