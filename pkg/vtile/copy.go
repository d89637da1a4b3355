package vtile

import (
	"vtilebuilder/pkg/types"
	"vtilebuilder/pkg/wire"
)

// copyFrom splices a decoded feature into a feature builder's scratch
// content verbatim: its id, geometry, and tag/attribute data are copied as
// opaque byte ranges rather than re-validated or re-encoded. This is the
// same byte-splice technique LayerBuilder.build uses for its dictionaries,
// applied one level down.
//
// Identifiers are copied by kind, matching whichever of ID/StringID src
// reports rather than the destination layer's version, so that copying a
// v3 feature into a v3 layer preserves its string id verbatim. v1/v2 tags
// vs. v3 attributes/geometric_attributes/elevations are gated on the
// destination layer's version, same as the rest of this package.
//
// f must be freshly created (no SetID/SetGeometry/AddProperty calls yet)
// and is left committed; calling Commit or Rollback on it afterward
// is a no-op.
func (f *baseFeatureBuilder) copyFrom(src DecodedFeature) {
	f.requireState(featureInit, "copy_feature")

	if id, ok := src.ID(); ok {
		f.id = id
		f.hasID = true
		f.scratch = wire.AppendVarintField(f.scratch, featureFieldID, id)
	} else if sid, ok := src.StringID(); ok {
		f.stringID = sid
		f.hasSID = true
		f.scratch = wire.AppendStringField(f.scratch, featureFieldStringID, sid)
	}

	f.scratch = wire.AppendVarintField(f.scratch, featureFieldType, uint64(src.GeometryType()))
	f.scratch = wire.AppendBytesField(f.scratch, featureFieldGeometry, src.EncodedGeometry())

	if f.layer.Version() == Version3 {
		if attrs := src.EncodedAttributes(); len(attrs) > 0 {
			f.scratch = wire.AppendBytesField(f.scratch, featureFieldAttrs, attrs)
		}
		if geomAttrs := src.EncodedGeometricAttributes(); len(geomAttrs) > 0 {
			f.scratch = wire.AppendBytesField(f.scratch, featureFieldGeomAttrs, geomAttrs)
		}
		if elevations := src.EncodedElevations(); len(elevations) > 0 {
			f.scratch = wire.AppendBytesField(f.scratch, featureFieldElevations, elevations)
		}
	} else if tags := src.EncodedTags(); len(tags) > 0 {
		f.scratch = wire.AppendBytesField(f.scratch, featureFieldTags, tags)
	}

	f.state = featureGeomSet
	f.Commit()
}

// CopyFeature splices src into layer as a new, already-committed feature,
// without re-validating or re-encoding its geometry or tags.
func CopyFeature(layer *LayerBuilder, src DecodedFeature) {
	f := newBaseFeatureBuilder(layer)
	f.copyFrom(src)
}

// AddPointsFromContainer validates and sets points as f's geometry from
// any slice-like source already materialized as a []types.Point,
// pre-checking the container's length against the 2^29 command-count
// limit before doing any per-point work — the reference encoder's rule
// that a too-large container must fail fast rather than partway through
// encoding.
func AddPointsFromContainer(f *PointFeatureBuilder, points []types.Point) error {
	if err := checkPointCount(len(points)); err != nil {
		return err
	}
	return f.SetGeometry(points)
}
