// Package wire provides the MVT-agnostic protobuf append primitives the
// builder core streams into: tagged varints, length-delimited fields,
// packed-repeated numeric fields, and vectored splicing of several
// already-encoded byte ranges under a single outer length prefix.
//
// Everything here is a thin layer over google.golang.org/protobuf's
// low-level protowire package; it adds no buffering or state of its own,
// matching the "external collaborator" role spec.md assigns to the
// low-level protobuf writer.
package wire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// AppendVarintField appends a tagged varint field: tag(field, Varint) + v.
func AppendVarintField(dst []byte, field protowire.Number, v uint64) []byte {
	dst = protowire.AppendTag(dst, field, protowire.VarintType)
	return protowire.AppendVarint(dst, v)
}

// AppendZigZagField appends a tagged signed varint using zig-zag encoding,
// the convention MVT uses for AttributeScaling.offset and similar signed
// fields that are not part of a packed geometry stream.
func AppendZigZagField(dst []byte, field protowire.Number, v int64) []byte {
	return AppendVarintField(dst, field, ZigZagEncode(v))
}

// AppendStringField appends a tagged length-delimited UTF-8 string field.
func AppendStringField(dst []byte, field protowire.Number, s string) []byte {
	dst = protowire.AppendTag(dst, field, protowire.BytesType)
	return protowire.AppendString(dst, s)
}

// AppendBytesField appends a tagged length-delimited opaque byte field.
func AppendBytesField(dst []byte, field protowire.Number, b []byte) []byte {
	dst = protowire.AppendTag(dst, field, protowire.BytesType)
	return protowire.AppendBytes(dst, b)
}

// AppendDoubleField appends a tagged fixed64 double field.
func AppendDoubleField(dst []byte, field protowire.Number, v float64) []byte {
	dst = protowire.AppendTag(dst, field, protowire.Fixed64Type)
	return protowire.AppendFixed64(dst, math.Float64bits(v))
}

// AppendFloatField appends a tagged fixed32 float field.
func AppendFloatField(dst []byte, field protowire.Number, v float32) []byte {
	dst = protowire.AppendTag(dst, field, protowire.Fixed32Type)
	return protowire.AppendFixed32(dst, math.Float32bits(v))
}

// AppendBytesVectored writes a single tagged length-delimited field whose
// total length is the sum of every part's length, then appends each part
// in order — splicing several already-encoded byte ranges (a layer's
// header bytes, its keys table, its values table, ...) into one outer
// field without first concatenating them into a temporary buffer.
func AppendBytesVectored(dst []byte, field protowire.Number, parts ...[]byte) []byte {
	var total int
	for _, p := range parts {
		total += len(p)
	}
	dst = protowire.AppendTag(dst, field, protowire.BytesType)
	dst = protowire.AppendVarint(dst, uint64(total))
	for _, p := range parts {
		dst = append(dst, p...)
	}
	return dst
}

// AppendPackedVarints appends a tagged length-delimited field containing
// the concatenation of each value's varint encoding — the MVT "packed
// repeated uint32" convention used for geometry and tag/attribute streams.
func AppendPackedVarints(dst []byte, field protowire.Number, values []uint32) []byte {
	body := make([]byte, 0, len(values)*2)
	for _, v := range values {
		body = protowire.AppendVarint(body, uint64(v))
	}
	return AppendBytesField(dst, field, body)
}

// AppendPackedUint64 appends a tagged packed-varint field of uint64 values,
// used for the v3 int_values table.
func AppendPackedUint64(dst []byte, field protowire.Number, values []uint64) []byte {
	body := make([]byte, 0, len(values)*2)
	for _, v := range values {
		body = protowire.AppendVarint(body, v)
	}
	return AppendBytesField(dst, field, body)
}

// AppendPackedDouble appends a tagged packed fixed64 field of doubles,
// used for the v3 double_values table.
func AppendPackedDouble(dst []byte, field protowire.Number, values []float64) []byte {
	body := make([]byte, 0, len(values)*8)
	for _, v := range values {
		body = protowire.AppendFixed64(body, math.Float64bits(v))
	}
	return AppendBytesField(dst, field, body)
}

// AppendPackedFloat appends a tagged packed fixed32 field of float32
// values, used for the v3 float_values table.
func AppendPackedFloat(dst []byte, field protowire.Number, values []float32) []byte {
	body := make([]byte, 0, len(values)*4)
	for _, v := range values {
		body = protowire.AppendFixed32(body, math.Float32bits(v))
	}
	return AppendBytesField(dst, field, body)
}

// AppendPackedZigZag appends a tagged packed-varint field of signed
// values, each zig-zag encoded independently (no delta chaining) — the
// convention this package uses for elevation samples, which unlike
// geometry coordinates are absolute rather than relative to a cursor.
func AppendPackedZigZag(dst []byte, field protowire.Number, values []int64) []byte {
	body := make([]byte, 0, len(values)*2)
	for _, v := range values {
		body = protowire.AppendVarint(body, ZigZagEncode(v))
	}
	return AppendBytesField(dst, field, body)
}

// ZigZagEncode maps a signed integer to an unsigned one so that small
// magnitudes (positive or negative) both encode as small varints.
func ZigZagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

// ZigZagDecode is the inverse of ZigZagEncode.
func ZigZagDecode(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}

// ConsumeStringEntries walks data as a sequence of repeated tagged
// length-delimited string fields (the encoding a string table uses
// internally) and calls fn with the content of each entry in order. It
// stops at the first decoding error or when data is exhausted. This is the
// same technique the reference encoder uses to linear-scan an
// already-serialized table without maintaining a side index.
func ConsumeStringEntries(data []byte, fn func(content []byte) bool) {
	for len(data) > 0 {
		_, _, tagLen := protowire.ConsumeTag(data)
		if tagLen < 0 {
			return
		}
		content, contentLen := protowire.ConsumeBytes(data[tagLen:])
		if contentLen < 0 {
			return
		}
		if !fn(content) {
			return
		}
		data = data[tagLen+contentLen:]
	}
}
