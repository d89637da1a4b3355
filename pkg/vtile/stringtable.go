package vtile

import (
	"vtilebuilder/pkg/types"
	"vtilebuilder/pkg/wire"

	"google.golang.org/protobuf/encoding/protowire"
)

// stringTable is a per-layer interning table for a single repeated string
// field (keys, v3's string_values, or the v1/v2 values table, whose
// pre-encoded Value bodies go through AddBytes/AddBytesWithoutDupCheck). It stores the
// table already encoded as a run of tagged length-delimited entries using
// its own field number, so its bytes can be spliced directly into a
// layer's output with wire.AppendBytesVectored: no re-encoding at build
// time.
//
// Below maxEntriesFlat entries, Add does a linear scan of the encoded
// bytes. At the promotion point the scan is replaced by a hash map
// populated once, lazily, from those same bytes — the same two-phase
// scheme the reference encoder uses, chosen so that small layers (the
// common case) never pay hash-map overhead.
type stringTable struct {
	field protowire.Number
	data  []byte
	index map[string]types.Index // populated lazily once data grows past maxEntriesFlat
	num   uint32
}

func newStringTable(field protowire.Number) *stringTable {
	return &stringTable{field: field}
}

// Data returns the already-encoded table bytes, ready to be spliced as
// this table's field into the enclosing layer message.
func (t *stringTable) Data() []byte {
	return t.data
}

// Len reports the number of interned entries.
func (t *stringTable) Len() int {
	return int(t.num)
}

// AddWithoutDupCheck appends text as a new table entry unconditionally,
// even if it duplicates an existing one.
func (t *stringTable) AddWithoutDupCheck(text string) types.Index {
	idx := types.Index(t.num)
	t.data = wire.AppendStringField(t.data, t.field, text)
	t.num++
	if t.index != nil {
		t.index[text] = idx
	}
	return idx
}

// Add returns the index of an existing entry equal to text, interning a
// new one if none is found.
func (t *stringTable) Add(text string) types.Index {
	if idx := t.find(text); idx.Valid() {
		return idx
	}
	return t.AddWithoutDupCheck(text)
}

// AddBytesWithoutDupCheck is AddWithoutDupCheck for an opaque byte range
// (used for pre-encoded v1/v2 property values, which are not valid UTF-8
// in general).
func (t *stringTable) AddBytesWithoutDupCheck(content []byte) types.Index {
	return t.AddWithoutDupCheck(string(content))
}

// AddBytes is Add for an opaque byte range.
func (t *stringTable) AddBytes(content []byte) types.Index {
	return t.Add(string(content))
}

func (t *stringTable) find(text string) types.Index {
	if t.num < maxEntriesFlat {
		return findInEncodedTable(t.data, text)
	}

	if t.index == nil {
		t.index = make(map[string]types.Index, t.num)
		populateStringIndex(t.data, t.index)
	}

	if idx, ok := t.index[text]; ok {
		return idx
	}
	return types.InvalidIndex
}

// findInEncodedTable linear-scans an already-encoded repeated-string table
// and returns the index of the first entry equal to text, or
// types.InvalidIndex.
func findInEncodedTable(data []byte, text string) types.Index {
	needle := []byte(text)
	var idx types.Index
	found := types.InvalidIndex
	wire.ConsumeStringEntries(data, func(content []byte) bool {
		if string(content) == string(needle) {
			found = idx
			return false
		}
		idx++
		return true
	})
	return found
}

// populateStringIndex decodes an already-encoded table and records the
// index of each entry's content in dst, last-entry-wins for duplicates
// (matching the reference encoder's plain map insertion order, which the
// encoder never relies on since duplicates are never knowingly written by
// Add — only AddWithoutDupCheck can introduce them).
func populateStringIndex(data []byte, dst map[string]types.Index) {
	var idx types.Index
	wire.ConsumeStringEntries(data, func(content []byte) bool {
		dst[string(content)] = idx
		idx++
		return true
	})
}
