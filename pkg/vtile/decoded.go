package vtile

import "vtilebuilder/pkg/types"

// DecodedFeature is the minimal view a decoder must expose for a feature
// to be copied verbatim into a new layer via CopyFeature. It is an
// external collaborator: this package never decodes a tile itself, it
// only consumes whatever a decoder implementation hands it.
type DecodedFeature interface {
	// ID reports the feature's integer id and whether one was present.
	// Mutually exclusive with StringID — a well-formed source reports at
	// most one of the two.
	ID() (uint64, bool)

	// StringID reports the feature's v3 string id and whether one was
	// present. Mutually exclusive with ID.
	StringID() (string, bool)

	// GeometryType reports the feature's geometry type.
	GeometryType() types.GeomType

	// EncodedGeometry returns the feature's already wire-encoded geometry
	// field body (the packed command/parameter stream, without its tag
	// or length prefix).
	EncodedGeometry() []byte

	// EncodedTags returns the feature's tags field body (v1/v2 packed
	// key/value index pairs), without its own tag or length prefix, or
	// nil if not applicable.
	EncodedTags() []byte

	// EncodedAttributes returns the feature's v3 attributes field body
	// (packed key/value-index pairs), without its own tag or length
	// prefix, or nil if not applicable.
	EncodedAttributes() []byte

	// EncodedGeometricAttributes returns the feature's v3
	// geometric_attributes field body, without its own tag or length
	// prefix, or nil if not applicable.
	EncodedGeometricAttributes() []byte

	// EncodedElevations returns the feature's v3 elevations field body,
	// without its own tag or length prefix, or nil if not applicable.
	EncodedElevations() []byte
}

// DecodedLayer is the minimal view a decoder must expose for a layer to
// be spliced verbatim into a new tile via TileBuilder.AddExistingLayer.
type DecodedLayer interface {
	// Name reports the layer's name.
	Name() string

	// Version reports the layer's schema dialect.
	Version() types.Version

	// Extent reports the layer's coordinate grid resolution.
	Extent() uint32

	// EncodedBytes returns the layer's complete already-encoded `layers`
	// submessage body, including its own header, feature list, and
	// dictionaries — ready to be spliced as an opaque byte range.
	EncodedBytes() []byte
}
