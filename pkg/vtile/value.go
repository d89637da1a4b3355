package vtile

import "vtilebuilder/pkg/wire"

// EncodedValue is a pre-encoded v1/v2 Value-message body: the tagged
// content of exactly one of string_value/float_value/double_value/
// int_value/uint_value/sint_value/bool_value, ready to be interned into a
// layer's values table. Building one of these does not touch any layer;
// it is a pure function of the logical value, and two EncodedValue built
// from the same logical value and the same constructor always compare
// equal byte-for-byte (so the table's dedup recognizes them), while two
// different encodings of what a caller considers "the same number" (int
// 19 vs uint 19) are deliberately distinct, matching spec.md §9's note
// that this is intentional in the source and must be preserved.
type EncodedValue struct {
	data []byte
}

// Data returns the encoded content bytes.
func (v EncodedValue) Data() []byte {
	return v.data
}

func StringValue(s string) EncodedValue {
	return EncodedValue{data: wire.AppendStringField(nil, valueFieldString, s)}
}

func FloatValue(f float32) EncodedValue {
	return EncodedValue{data: wire.AppendFloatField(nil, valueFieldFloat, f)}
}

func DoubleValue(d float64) EncodedValue {
	return EncodedValue{data: wire.AppendDoubleField(nil, valueFieldDouble, d)}
}

func IntValue(i int64) EncodedValue {
	return EncodedValue{data: wire.AppendVarintField(nil, valueFieldInt, uint64(i))}
}

func UintValue(u uint64) EncodedValue {
	return EncodedValue{data: wire.AppendVarintField(nil, valueFieldUint, u)}
}

func SintValue(i int64) EncodedValue {
	return EncodedValue{data: wire.AppendZigZagField(nil, valueFieldSint, i)}
}

func BoolValue(b bool) EncodedValue {
	var v uint64
	if b {
		v = 1
	}
	return EncodedValue{data: wire.AppendVarintField(nil, valueFieldBool, v)}
}
