// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// parseScript preprocesses a raw script into a list of parsed opcodes while
// potentially also checking its validity.
func parseScript(script []byte) ([]parsedOpcode, error) {
	var parsed []parsedOpcode
	for i := 0; i < len(script); {
		instr := script[i]
		op := &opcodeArray[instr]

		var pop parsedOpcode
		pop.opcode = op

		switch {
		case op.length == 1:
			i++

		case op.length > 1:
			if len(script[i:]) < op.length {
				return nil, scriptError(ErrMalformedPush, fmt.Sprintf(
					"opcode %s requires %d bytes, but script only has %d remaining",
					op.name, op.length, len(script[i:])))
			}
			pop.data = script[i+1 : i+op.length]
			i += op.length

		case op.length < 0:
			var l int
			off := i + 1
			switch op.length {
			case -1:
				if len(script[off:]) < 1 {
					return nil, scriptError(ErrMalformedPush, "OP_PUSHDATA1 missing length byte")
				}
				l = int(script[off])
				off++
			case -2:
				if len(script[off:]) < 2 {
					return nil, scriptError(ErrMalformedPush, "OP_PUSHDATA2 missing length bytes")
				}
				l = int(script[off]) | int(script[off+1])<<8
				off += 2
			case -4:
				if len(script[off:]) < 4 {
					return nil, scriptError(ErrMalformedPush, "OP_PUSHDATA4 missing length bytes")
				}
				l = int(script[off]) | int(script[off+1])<<8 | int(script[off+2])<<16 | int(script[off+3])<<24
				off += 4
			}
			if l < 0 || len(script[off:]) < l {
				return nil, scriptError(ErrMalformedPush, "pushdata length exceeds remaining script")
			}
			pop.data = script[off : off+l]
			i = off + l
		}

		parsed = append(parsed, pop)
	}
	return parsed, nil
}

// unparseScript reverses parseScript, reconstructing the original script
// bytes from the parsed representation.
func unparseScript(pops []parsedOpcode) ([]byte, error) {
	var script []byte
	for _, pop := range pops {
		script = append(script, pop.bytes()...)
	}
	return script, nil
}

func (pop *parsedOpcode) bytes() []byte {
	var retbytes []byte
	if pop.opcode.length > 0 {
		retbytes = make([]byte, 1, pop.opcode.length)
	} else {
		retbytes = make([]byte, 1, 1+len(pop.data)-pop.opcode.length)
	}

	retbytes[0] = pop.opcode.value
	if pop.opcode.length == 1 {
		return retbytes
	}

	switch pop.opcode.length {
	case -1:
		retbytes = append(retbytes, byte(len(pop.data)))
	case -2:
		retbytes = append(retbytes, byte(len(pop.data)), byte(len(pop.data)>>8))
	case -4:
		retbytes = append(retbytes, byte(len(pop.data)), byte(len(pop.data)>>8),
			byte(len(pop.data)>>16), byte(len(pop.data)>>24))
	}

	return append(retbytes, pop.data...)
}
