// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"net"
	"testing"
)

func TestWriteReadMessageRoundTrip(t *testing.T) {
	me := NewNetAddressIPPort(net.ParseIP("127.0.0.1"), 8333, SFNodeNetwork)
	you := NewNetAddressIPPort(net.ParseIP("127.0.0.2"), 8333, SFNodeNetwork)
	msg := NewMsgVersion(me, you, 123456789, 500000)

	var buf bytes.Buffer
	if _, err := WriteMessageN(&buf, msg, ProtocolVersion, MainNet); err != nil {
		t.Fatalf("WriteMessageN: %v", err)
	}

	_, out, _, err := ReadMessageN(&buf, ProtocolVersion, MainNet)
	if err != nil {
		t.Fatalf("ReadMessageN: %v", err)
	}

	gotVersion, ok := out.(*MsgVersion)
	if !ok {
		t.Fatalf("decoded message has type %T, want *MsgVersion", out)
	}
	if gotVersion.Nonce != msg.Nonce {
		t.Errorf("Nonce = %d, want %d", gotVersion.Nonce, msg.Nonce)
	}
	if gotVersion.UserAgent != msg.UserAgent {
		t.Errorf("UserAgent = %q, want %q", gotVersion.UserAgent, msg.UserAgent)
	}
	if gotVersion.LastBlock != msg.LastBlock {
		t.Errorf("LastBlock = %d, want %d", gotVersion.LastBlock, msg.LastBlock)
	}
}

func TestReadMessageBadChecksum(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteMessageN(&buf, NewMsgPing(42), ProtocolVersion, MainNet); err != nil {
		t.Fatalf("WriteMessageN: %v", err)
	}

	raw := buf.Bytes()
	// Corrupt a payload byte without touching the header's checksum.
	raw[len(raw)-1] ^= 0xff

	if _, _, _, err := ReadMessageN(bytes.NewReader(raw), ProtocolVersion, MainNet); err == nil {
		t.Fatal("expected checksum mismatch to be detected")
	}
}

func TestDecoderFeedsPartialThenCompletes(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteMessageN(&buf, NewMsgVerAck(), ProtocolVersion, MainNet); err != nil {
		t.Fatalf("WriteMessageN: %v", err)
	}
	raw := buf.Bytes()

	dec := NewDecoder(ProtocolVersion, MainNet)
	dec.Feed(raw[:MessageHeaderSize-1])

	if _, _, ok, err := dec.Next(); err != nil || ok {
		t.Fatalf("Next with partial header: ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	dec.Feed(raw[MessageHeaderSize-1:])
	m, _, ok, err := dec.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !ok {
		t.Fatal("expected a complete message after feeding remaining bytes")
	}
	if m.Command() != CmdVerAck {
		t.Errorf("Command() = %q, want %q", m.Command(), CmdVerAck)
	}
	if dec.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0", dec.Buffered())
	}
}

func TestMakeEmptyMessageUnknownCommand(t *testing.T) {
	if _, err := MakeEmptyMessage("bogus"); err == nil {
		t.Fatal("expected an error for an unrecognized command")
	}
}

func TestReadMessageRejectsUnpaddedCommand(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteMessageN(&buf, NewMsgPing(42), ProtocolVersion, MainNet); err != nil {
		t.Fatalf("WriteMessageN: %v", err)
	}

	raw := buf.Bytes()
	// Plant a non-NUL byte after the command's terminating NUL. The
	// command field starts right after the 4-byte magic.
	raw[4+CommandSize-1] = 'x'

	if _, _, _, err := ReadMessageN(bytes.NewReader(raw), ProtocolVersion, MainNet); err == nil {
		t.Fatal("expected a command that is not NUL padded to be rejected")
	}
}
