package models

import (
	"encoding/binary"

	"lukechampine.com/uint128"
)

var byteOrder = binary.LittleEndian

// accountReader walks a fixed layout front to back. The buffer length is
// checked once in newAccountReader, so individual reads never bounds-fail.
type accountReader struct {
	buf []byte
	off int
}

func newAccountReader(data []byte, kind AccountKind, version LayoutVersion, header int) (*accountReader, error) {
	minLen, err := LayoutSize(kind, version)
	if err != nil {
		return nil, err
	}
	if len(data) < minLen {
		return nil, &MalformedAccountError{Kind: kind, Version: version, MinLen: minLen, Actual: len(data)}
	}
	return &accountReader{buf: data, off: header}, nil
}

func (r *accountReader) u8() uint8 {
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *accountReader) boolean() bool {
	return r.u8() != 0
}

func (r *accountReader) u16() uint16 {
	v := byteOrder.Uint16(r.buf[r.off:])
	r.off += 2
	return v
}

func (r *accountReader) u64() uint64 {
	v := byteOrder.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}

func (r *accountReader) i64() int64 {
	return int64(r.u64())
}

// u128 joins two little-endian halves: low + high<<64.
func (r *accountReader) u128() uint128.Uint128 {
	lo := r.u64()
	hi := r.u64()
	return uint128.New(lo, hi)
}

func (r *accountReader) pubkey() PublicKey {
	var pk PublicKey
	copy(pk[:], r.buf[r.off:r.off+len(pk)])
	r.off += len(pk)
	return pk
}
