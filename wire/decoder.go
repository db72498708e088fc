// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
)

// Decoder incrementally reassembles complete wire messages out of a byte
// stream delivered in arbitrary-sized chunks, as TCP reads arrive. Callers
// Feed bytes as they are read from the socket and repeatedly call Next
// until it reports no further complete message is buffered; any partial
// trailing message is retained across Feed calls.
type Decoder struct {
	pver uint32
	net  CurrencyNet
	buf  bytes.Buffer
}

// NewDecoder returns a new streaming Decoder for the given protocol version
// and network magic.
func NewDecoder(pver uint32, net CurrencyNet) *Decoder {
	return &Decoder{pver: pver, net: net}
}

// Feed appends newly read bytes to the decoder's internal buffer.
func (d *Decoder) Feed(b []byte) {
	d.buf.Write(b)
}

// Buffered returns the number of bytes currently buffered and not yet
// consumed by a complete message.
func (d *Decoder) Buffered() int {
	return d.buf.Len()
}

// Next attempts to extract one complete message from the buffered bytes. It
// returns (nil, nil, false, nil) when fewer bytes than a full header plus
// payload are currently buffered - the caller should Feed more and retry.
// A decode error is fatal to the connection the bytes came from.
func (d *Decoder) Next() (msg Message, rawPayload []byte, ok bool, err error) {
	avail := d.buf.Bytes()
	if len(avail) < MessageHeaderSize {
		return nil, nil, false, nil
	}

	hdr, err := readMessageHeader(bytes.NewReader(avail[:MessageHeaderSize]))
	if err != nil {
		return nil, nil, false, err
	}
	if hdr.magic != d.net {
		return nil, nil, false, messageError("Decoder.Next", "unexpected network magic")
	}
	if hdr.length > MaxMessagePayload {
		return nil, nil, false, messageError("Decoder.Next", "message payload too large")
	}

	total := MessageHeaderSize + int(hdr.length)
	if len(avail) < total {
		return nil, nil, false, nil
	}

	frame := make([]byte, total)
	copy(frame, avail[:total])

	_, m, payload, err := ReadMessageN(bytes.NewReader(frame), d.pver, d.net)
	if err != nil {
		return nil, nil, false, err
	}

	remaining := make([]byte, len(avail)-total)
	copy(remaining, avail[total:])
	d.buf.Reset()
	d.buf.Write(remaining)

	return m, payload, true, nil
}

// Drain repeatedly calls Next, invoking fn for every complete message found
// until the buffer is exhausted or fn returns a non-nil error, or a decode
// error occurs. Unknown-command messages (nil Message, nil error from Next)
// are skipped rather than passed to fn.
func (d *Decoder) Drain(fn func(Message, []byte) error) error {
	for {
		m, payload, ok, err := d.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if m == nil {
			continue
		}
		if err := fn(m, payload); err != nil {
			return err
		}
	}
}
