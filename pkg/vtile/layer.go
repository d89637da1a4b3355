package vtile

import (
	"vtilebuilder/pkg/types"
	"vtilebuilder/pkg/wire"
)

// LayerBuilder owns one layer's in-progress byte buffer, its key/value
// dictionaries, and its feature count. It is created through
// TileBuilder.AddLayer and lives until the enclosing TileBuilder is
// serialized.
//
// A LayerBuilder is movable but not copyable: it is referenced by pointer
// from the TileBuilder that owns it and from at most one in-flight
// FeatureBuilder at a time. Copying a LayerBuilder by value would alias
// the same dictionaries from two places and corrupt the active-feature
// discipline; never do that — always hold and pass *LayerBuilder.
type LayerBuilder struct {
	version Version
	name    string
	extent  uint32
	locator *TileLocator

	buf          []byte
	numFeatures  int
	activeChild  bool

	keys         *stringTable
	values       *stringTable // v1/v2 only
	stringValues *stringTable // v3 only

	doubleValues numericTable[float64] // v3 only
	floatValues  numericTable[float32] // v3 only
	intValues    numericTable[uint64]  // v3 only

	elevationScaling  types.Scaling
	attributeScalings []types.Scaling
}

// Version and TileLocator are re-exported here under the package's own
// names so callers of pkg/vtile need not import pkg/types for the common
// case.
type Version = types.Version
type TileLocator = types.TileLocator

const (
	Version1 = types.Version1
	Version2 = types.Version2
	Version3 = types.Version3
)

func newLayerBuilder(name string, version Version, extent uint32, locator *TileLocator) *LayerBuilder {
	if !version.Valid() {
		panicInvariant("layer %q: version %d is not one of {1,2,3}", name, version)
	}
	if locator != nil && version != Version3 {
		panicInvariant("layer %q: a tile locator is only valid at version 3, got version %d", name, version)
	}
	if extent == 0 {
		extent = defaultExtent
	}

	lb := &LayerBuilder{
		version: version,
		name:    name,
		extent:  extent,
		locator: locator,
		keys:    newStringTable(layerFieldKeys),
	}
	if version < Version3 {
		lb.values = newStringTable(layerFieldValues)
	} else {
		lb.stringValues = newStringTable(layerFieldStringVal)
	}

	lb.buf = wire.AppendVarintField(lb.buf, layerFieldVersion, uint64(version))
	lb.buf = wire.AppendStringField(lb.buf, layerFieldName, name)
	lb.buf = wire.AppendVarintField(lb.buf, layerFieldExtent, uint64(extent))
	return lb
}

// Version reports the schema dialect this layer was built against.
func (lb *LayerBuilder) Version() Version { return lb.version }

// Name reports the layer's name.
func (lb *LayerBuilder) Name() string { return lb.name }

// Extent reports the layer's coordinate grid resolution.
func (lb *LayerBuilder) Extent() uint32 { return lb.extent }

// NumFeatures reports how many features have been committed so far.
func (lb *LayerBuilder) NumFeatures() int { return lb.numFeatures }

// AddKeyWithoutDupCheck interns text unconditionally, even if it
// duplicates an existing key.
func (lb *LayerBuilder) AddKeyWithoutDupCheck(text string) types.Index {
	return lb.keys.AddWithoutDupCheck(text)
}

// AddKey interns text, returning the index of an existing equal key if
// one exists.
func (lb *LayerBuilder) AddKey(text string) types.Index {
	return lb.keys.Add(text)
}

// AddValueWithoutDupCheck interns a pre-encoded v1/v2 property value
// unconditionally. Valid only below version 3.
func (lb *LayerBuilder) AddValueWithoutDupCheck(v EncodedValue) types.Index {
	lb.requireBelowV3("add_value_without_dup_check")
	return lb.values.AddBytesWithoutDupCheck(v.Data())
}

// AddValue interns a pre-encoded v1/v2 property value, returning the index
// of a bitwise-equal existing entry if one exists. Valid only below
// version 3.
func (lb *LayerBuilder) AddValue(v EncodedValue) types.Index {
	lb.requireBelowV3("add_value")
	return lb.values.AddBytes(v.Data())
}

// AddStringValueWithoutDupCheck interns a v3 string_values entry
// unconditionally.
func (lb *LayerBuilder) AddStringValueWithoutDupCheck(s string) types.Index {
	lb.requireV3("add_string_value_without_dup_check")
	return lb.stringValues.AddWithoutDupCheck(s)
}

// AddStringValue interns a v3 string_values entry.
func (lb *LayerBuilder) AddStringValue(s string) types.Index {
	lb.requireV3("add_string_value")
	return lb.stringValues.Add(s)
}

// AddDoubleValueWithoutDupCheck interns a v3 double_values entry
// unconditionally.
func (lb *LayerBuilder) AddDoubleValueWithoutDupCheck(v float64) types.Index {
	lb.requireV3("add_double_value_without_dup_check")
	return lb.doubleValues.AddWithoutDupCheck(v)
}

// AddDoubleValue interns a v3 double_values entry.
func (lb *LayerBuilder) AddDoubleValue(v float64) types.Index {
	lb.requireV3("add_double_value")
	return lb.doubleValues.Add(v)
}

// AddFloatValueWithoutDupCheck interns a v3 float_values entry
// unconditionally.
func (lb *LayerBuilder) AddFloatValueWithoutDupCheck(v float32) types.Index {
	lb.requireV3("add_float_value_without_dup_check")
	return lb.floatValues.AddWithoutDupCheck(v)
}

// AddFloatValue interns a v3 float_values entry.
func (lb *LayerBuilder) AddFloatValue(v float32) types.Index {
	lb.requireV3("add_float_value")
	return lb.floatValues.Add(v)
}

// AddIntValueWithoutDupCheck interns a v3 int_values entry unconditionally.
func (lb *LayerBuilder) AddIntValueWithoutDupCheck(v uint64) types.Index {
	lb.requireV3("add_int_value_without_dup_check")
	return lb.intValues.AddWithoutDupCheck(v)
}

// AddIntValue interns a v3 int_values entry.
func (lb *LayerBuilder) AddIntValue(v uint64) types.Index {
	lb.requireV3("add_int_value")
	return lb.intValues.Add(v)
}

// AddAttributeScaling appends a v3 attribute scaling record and returns
// its index.
func (lb *LayerBuilder) AddAttributeScaling(s types.Scaling) types.Index {
	lb.requireV3("add_attribute_scaling")
	idx := types.Index(len(lb.attributeScalings))
	lb.attributeScalings = append(lb.attributeScalings, s)
	return idx
}

// AttributeScaling returns the scaling record at idx.
func (lb *LayerBuilder) AttributeScaling(idx types.Index) (types.Scaling, error) {
	i := int(idx)
	if i < 0 || i >= len(lb.attributeScalings) {
		return types.Scaling{}, &RangeError{Index: i, Len: len(lb.attributeScalings)}
	}
	return lb.attributeScalings[i], nil
}

// SetElevationScaling sets the single per-layer elevation scaling record.
func (lb *LayerBuilder) SetElevationScaling(s types.Scaling) {
	lb.requireV3("set_elevation_scaling")
	lb.elevationScaling = s
}

// ElevationScaling returns the current elevation scaling record (the zero
// value if none was set).
func (lb *LayerBuilder) ElevationScaling() types.Scaling {
	return lb.elevationScaling
}

func (lb *LayerBuilder) requireV3(op string) {
	if lb.version != Version3 {
		panicInvariant("%s: layer %q is version %d, not 3", op, lb.name, lb.version)
	}
}

func (lb *LayerBuilder) requireBelowV3(op string) {
	if lb.version >= Version3 {
		panicInvariant("%s: layer %q is version %d, must be below 3", op, lb.name, lb.version)
	}
}

// mark returns the current length of the layer buffer, to be passed back
// to truncateTo for rollback.
func (lb *LayerBuilder) mark() int {
	return len(lb.buf)
}

// truncateTo restores the layer buffer to a length previously returned by
// mark, discarding anything appended since.
func (lb *LayerBuilder) truncateTo(mark int) {
	lb.buf = lb.buf[:mark]
}

// append appends an already wire-encoded chunk to the layer buffer.
func (lb *LayerBuilder) append(b []byte) {
	lb.buf = append(lb.buf, b...)
}

// beginFeature enforces the "at most one active feature builder per
// layer" discipline and returns the rollback mark for the new feature.
func (lb *LayerBuilder) beginFeature() int {
	if lb.activeChild {
		panicInvariant("layer %q: a feature builder is already in flight", lb.name)
	}
	lb.activeChild = true
	return lb.mark()
}

// endFeature releases the active-feature discipline flag. Called by both
// commit and rollback.
func (lb *LayerBuilder) endFeature() {
	lb.activeChild = false
}

// commitFeature appends an encoded Feature submessage body as the
// layer's next `features` field and increments the feature count.
func (lb *LayerBuilder) commitFeature(body []byte) {
	lb.append(wire.AppendBytesField(nil, layerFieldFeatures, body))
	lb.numFeatures++
}

// estimatedSize returns a heuristic byte-size estimate used by the
// enclosing TileBuilder to pre-size its output buffer.
func (lb *LayerBuilder) estimatedSize() int {
	const overhead = 14
	size := len(lb.buf) + lb.keys.Len()*8 + overhead
	if lb.values != nil {
		size += len(lb.values.Data())
	}
	if lb.stringValues != nil {
		size += len(lb.stringValues.Data())
	}
	size += lb.doubleValues.Len()*8 + lb.floatValues.Len()*4 + lb.intValues.Len()*4
	return size
}

// build appends this layer's complete encoded `layers` field (header +
// features + dictionaries, spliced without an intermediate copy) to dst,
// returning the result. It does nothing if the layer has no committed
// features: a layer with zero features must never appear in the output.
func (lb *LayerBuilder) build(dst []byte) []byte {
	if lb.numFeatures == 0 {
		return dst
	}

	if lb.version < Version3 {
		return wire.AppendBytesVectored(dst, tileFieldLayers, lb.buf, lb.keys.Data(), lb.values.Data())
	}

	var tail []byte
	if lb.doubleValues.Len() > 0 {
		tail = wire.AppendPackedDouble(tail, layerFieldDoubleVal, lb.doubleValues.Values())
	}
	if lb.floatValues.Len() > 0 {
		tail = wire.AppendPackedFloat(tail, layerFieldFloatVal, lb.floatValues.Values())
	}
	if lb.intValues.Len() > 0 {
		tail = wire.AppendPackedUint64(tail, layerFieldIntVal, lb.intValues.Values())
	}
	if lb.elevationScaling != (types.Scaling{}) {
		tail = append(tail, wire.AppendBytesField(nil, layerFieldElevScale, encodeScaling(lb.elevationScaling))...)
	}
	for _, s := range lb.attributeScalings {
		tail = append(tail, wire.AppendBytesField(nil, layerFieldAttrScale, encodeScaling(s))...)
	}
	if lb.locator != nil {
		tail = append(tail, wire.AppendBytesField(nil, layerFieldTile, encodeTileLocator(*lb.locator))...)
	}

	return wire.AppendBytesVectored(dst, tileFieldLayers, lb.buf, lb.keys.Data(), lb.stringValues.Data(), tail)
}

func encodeScaling(s types.Scaling) []byte {
	var b []byte
	b = wire.AppendZigZagField(b, scalingFieldOffset, s.Offset)
	b = wire.AppendDoubleField(b, scalingFieldMultiplier, s.Multiplier)
	b = wire.AppendDoubleField(b, scalingFieldBase, s.Base)
	return b
}

func encodeTileLocator(t types.TileLocator) []byte {
	var b []byte
	b = wire.AppendVarintField(b, tileLocatorFieldZoom, uint64(t.Zoom))
	b = wire.AppendVarintField(b, tileLocatorFieldX, uint64(t.X))
	b = wire.AppendVarintField(b, tileLocatorFieldY, uint64(t.Y))
	b = wire.AppendVarintField(b, tileLocatorFieldExtent, uint64(t.Extent))
	return b
}
