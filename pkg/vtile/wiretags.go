package vtile

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers for the Tile, Layer, Feature and Value messages. The v1/v2
// numbers below are the stable, published MVT tags. The v3 numbers (marked
// below) belong to the still-evolving MVT v3 draft; this implementation
// pins one self-consistent revision of that draft, as spec.md §9 requires,
// and documents the pin in DESIGN.md.
const (
	tileFieldLayers protowire.Number = 3

	layerFieldName      protowire.Number = 1
	layerFieldFeatures  protowire.Number = 2
	layerFieldKeys      protowire.Number = 3
	layerFieldValues    protowire.Number = 4
	layerFieldExtent    protowire.Number = 5
	layerFieldVersion   protowire.Number = 15
	layerFieldStringVal protowire.Number = 6  // v3
	layerFieldDoubleVal protowire.Number = 7  // v3
	layerFieldFloatVal  protowire.Number = 8  // v3
	layerFieldIntVal    protowire.Number = 9  // v3
	layerFieldElevScale protowire.Number = 10 // v3
	layerFieldAttrScale protowire.Number = 11 // v3
	layerFieldTile      protowire.Number = 12 // v3

	featureFieldID         protowire.Number = 1
	featureFieldTags       protowire.Number = 2
	featureFieldType       protowire.Number = 3
	featureFieldGeometry   protowire.Number = 4
	featureFieldStringID   protowire.Number = 12 // v3
	featureFieldAttrs      protowire.Number = 13 // v3
	featureFieldGeomAttrs  protowire.Number = 14 // v3
	featureFieldElevations protowire.Number = 15 // v3

	valueFieldString protowire.Number = 1
	valueFieldFloat  protowire.Number = 2
	valueFieldDouble protowire.Number = 3
	valueFieldInt    protowire.Number = 4
	valueFieldUint   protowire.Number = 5
	valueFieldSint   protowire.Number = 6
	valueFieldBool   protowire.Number = 7

	scalingFieldOffset     protowire.Number = 1 // v3
	scalingFieldMultiplier protowire.Number = 2 // v3
	scalingFieldBase       protowire.Number = 3 // v3

	tileLocatorFieldZoom   protowire.Number = 1 // v3
	tileLocatorFieldX      protowire.Number = 2 // v3
	tileLocatorFieldY      protowire.Number = 3 // v3
	tileLocatorFieldExtent protowire.Number = 4 // v3
)

const defaultExtent = 4096

// maxEntriesFlat is the dedup-table size below which key/value lookup is a
// linear scan of the already-serialized table bytes. At this count the
// table is promoted to a hash index populated lazily from those bytes.
const maxEntriesFlat = 20

// maxPointCount is 2^29, one past the largest command-count a single
// MoveTo/LineTo run can carry in the 29-bit count field of an MVT command
// integer (maxPointsPerCommand in geometry.go is that largest count).
const maxPointCount = 1 << 29
