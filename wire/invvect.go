// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
)

// maxInvPerMsg is the maximum number of inventory vectors that can be in a
// single inv, getdata, or notfound message.
const maxInvPerMsg = 50000

// InvVect defines a bitcoin inventory vector which is used to describe data,
// as specified by the Type field, that a peer has or wants.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

// NewInvVect returns a new InvVect using the provided type and hash.
func NewInvVect(typ InvType, hash *chainhash.Hash) *InvVect {
	return &InvVect{Type: typ, Hash: *hash}
}

func readInvVect(r io.Reader, pver uint32, iv *InvVect) error {
	if err := ReadElement(r, &iv.Type); err != nil {
		return err
	}
	return ReadElement(r, &iv.Hash)
}

func writeInvVect(w io.Writer, pver uint32, iv *InvVect) error {
	if err := WriteElement(w, iv.Type); err != nil {
		return err
	}
	return WriteElement(w, iv.Hash)
}
