// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

// Packer - accumulates the canonical byte form of a record
//
// all multi-node-visible digests are computed over buffers built with
// this type, so the field order used by callers is part of the wire
// protocol
type Packer struct {
	buffer []byte
}

// NewPacker - create a packer with a reasonable initial capacity
func NewPacker() *Packer {
	return &Packer{
		buffer: make([]byte, 0, 256),
	}
}

// Uint64 - append a varint encoded unsigned integer
func (p *Packer) Uint64(value uint64) *Packer {
	p.buffer = append(p.buffer, ToVarint64(value)...)
	return p
}

// Bytes - append a varint length followed by the raw bytes
func (p *Packer) Bytes(data []byte) *Packer {
	p.buffer = append(p.buffer, ToVarint64(uint64(len(data)))...)
	p.buffer = append(p.buffer, data...)
	return p
}

// String - append a varint length followed by the string bytes
func (p *Packer) String(s string) *Packer {
	return p.Bytes([]byte(s))
}

// Pack - the accumulated canonical bytes
func (p *Packer) Pack() []byte {
	return p.buffer
}

// Unpacker - walks a canonical buffer produced by Packer
type Unpacker struct {
	buffer []byte
	offset int
	failed bool
}

// NewUnpacker - create an unpacker over a canonical buffer
func NewUnpacker(buffer []byte) *Unpacker {
	return &Unpacker{buffer: buffer}
}

// Uint64 - read a varint encoded unsigned integer
func (u *Unpacker) Uint64() uint64 {
	if u.failed {
		return 0
	}
	value, n := FromVarint64(u.buffer[u.offset:])
	if 0 == n {
		u.failed = true
		return 0
	}
	u.offset += n
	return value
}

// Bytes - read a varint length followed by that many raw bytes
func (u *Unpacker) Bytes() []byte {
	if u.failed {
		return nil
	}
	length, n := FromVarint64(u.buffer[u.offset:])
	if 0 == n || u.offset+n+int(length) > len(u.buffer) {
		u.failed = true
		return nil
	}
	u.offset += n
	data := u.buffer[u.offset : u.offset+int(length)]
	u.offset += int(length)
	return data
}

// String - read a varint length followed by the string bytes
func (u *Unpacker) String() string {
	return string(u.Bytes())
}

// Ok - false if any read ran off the end of the buffer or any bytes
// remain unread
func (u *Unpacker) Ok() bool {
	return !u.failed && u.offset == len(u.buffer)
}
