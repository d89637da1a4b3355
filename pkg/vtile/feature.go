package vtile

import (
	"vtilebuilder/pkg/types"
	"vtilebuilder/pkg/wire"
)

// featureState tracks progress through the required construction order
// id? -> geometry -> properties? -> commit|rollback. Skipping a step is
// fine (id and properties are optional); doing them out of order is a
// programmer error and panics. Commit or Rollback after either one has
// already run is a no-op.
type featureState int

const (
	featureInit featureState = iota
	featureIDSet
	featureGeomSet
	featureDone
)

// baseFeatureBuilder holds the state shared by every concrete feature
// builder variant (point/linestring/polygon, v1/v2/v3). It stages a
// feature's content into its own scratch buffer rather than the parent
// layer's buffer directly, so that rollback is a matter of discarding
// this struct and never touches the layer at all; only commit splices
// the finished submessage into the layer, inside the mark/truncateTo
// window the layer opened for it.
//
// A baseFeatureBuilder is movable but not copyable: at most one is ever
// in flight for a given *LayerBuilder, enforced by beginFeature.
type baseFeatureBuilder struct {
	layer *LayerBuilder
	mark  int
	state featureState

	id       uint64
	hasID    bool
	stringID string
	hasSID   bool

	scratch []byte
}

func newBaseFeatureBuilder(layer *LayerBuilder) baseFeatureBuilder {
	return baseFeatureBuilder{
		layer: layer,
		mark:  layer.beginFeature(),
	}
}

// SetID sets the feature's integer id. Valid only from the INIT state:
// identifiers are mutually exclusive, so a builder that already has an
// id (integer or string) rejects a second call.
func (f *baseFeatureBuilder) SetID(id uint64) {
	f.requireState(featureInit, "set_id")
	f.id = id
	f.hasID = true
	f.state = featureIDSet
}

// SetStringID sets the feature's v3 string id. Valid only at version 3,
// matching the reference encoder's "string ids are not allowed below
// version 3" rule, and only from the INIT state, for the same
// mutual-exclusion reason as SetID.
func (f *baseFeatureBuilder) SetStringID(id string) {
	f.layer.requireV3("set_string_id")
	f.requireState(featureInit, "set_string_id")
	f.stringID = id
	f.hasSID = true
	f.state = featureIDSet
}

func (f *baseFeatureBuilder) requireState(want featureState, op string) {
	if f.state != want {
		panicInvariant("%s: feature builder for layer %q is not in the expected state", op, f.layer.name)
	}
}

// setGeometry records an already-encoded geometry field body and advances
// the state machine past the point where id can still be set.
func (f *baseFeatureBuilder) setGeometry(geomType types.GeomType, encodedGeom []byte) {
	if f.state != featureInit && f.state != featureIDSet {
		panicInvariant("set_geometry: feature builder for layer %q already has a geometry", f.layer.name)
	}

	if f.hasID {
		f.scratch = wire.AppendVarintField(f.scratch, featureFieldID, f.id)
	}
	if f.hasSID {
		f.scratch = wire.AppendStringField(f.scratch, featureFieldStringID, f.stringID)
	}
	f.scratch = wire.AppendVarintField(f.scratch, featureFieldType, uint64(geomType))
	f.scratch = append(f.scratch, encodedGeom...)
	f.state = featureGeomSet
}

// addEncodedTags appends an already wire-encoded v1/v2 packed tags field
// to the feature's scratch buffer. Valid only after geometry has been
// set, and only below version 3.
func (f *baseFeatureBuilder) addEncodedTags(tags []byte) {
	f.requireGeomSet("add_tags")
	f.layer.requireBelowV3("add_tags")
	f.scratch = append(f.scratch, tags...)
}

func (f *baseFeatureBuilder) requireGeomSet(op string) {
	if f.state != featureGeomSet {
		panicInvariant("%s: feature builder for layer %q has no geometry yet", op, f.layer.name)
	}
}

// Commit finalizes the feature: its scratch buffer is wrapped as the
// layer's next `features` entry and appended past the mark that was
// opened when this builder was created. A feature with no geometry set
// cannot be committed. Calling it again after it already succeeded (or
// after a Rollback) is a no-op: DONE is a terminal state for both
// finalizers.
func (f *baseFeatureBuilder) Commit() {
	if f.state == featureDone {
		return
	}
	if f.state != featureGeomSet {
		panicInvariant("commit: feature builder for layer %q has no geometry set", f.layer.name)
	}
	f.layer.commitFeature(f.scratch)
	f.layer.endFeature()
	f.state = featureDone
}

// Rollback discards everything staged so far. The layer buffer is
// unaffected since nothing was ever appended to it; this only releases
// the active-feature discipline flag and the buffer's mark. Calling it
// again, or calling it after Commit, is a no-op: DONE is a terminal
// state for both finalizers.
func (f *baseFeatureBuilder) Rollback() {
	if f.state == featureDone {
		return
	}
	f.layer.truncateTo(f.mark)
	f.layer.endFeature()
	f.state = featureDone
}

// PointFeatureBuilder builds a single feature whose geometry is a
// Point/MultiPoint.
type PointFeatureBuilder struct {
	baseFeatureBuilder
}

// NewPointFeatureBuilder begins a new point feature in layer.
func NewPointFeatureBuilder(layer *LayerBuilder) *PointFeatureBuilder {
	return &PointFeatureBuilder{baseFeatureBuilder: newBaseFeatureBuilder(layer)}
}

// SetGeometry validates and stages points as this feature's geometry.
func (f *PointFeatureBuilder) SetGeometry(points []types.Point) error {
	encoded, err := encodePointGeometry(points)
	if err != nil {
		return err
	}
	f.setGeometry(types.GeomPoint, encoded)
	return nil
}

// LineStringFeatureBuilder builds a single feature whose geometry is a
// LineString/MultiLineString.
type LineStringFeatureBuilder struct {
	baseFeatureBuilder
}

// NewLineStringFeatureBuilder begins a new linestring feature in layer.
func NewLineStringFeatureBuilder(layer *LayerBuilder) *LineStringFeatureBuilder {
	return &LineStringFeatureBuilder{baseFeatureBuilder: newBaseFeatureBuilder(layer)}
}

// SetGeometry validates and stages parts as this feature's geometry.
func (f *LineStringFeatureBuilder) SetGeometry(parts [][]types.Point) error {
	encoded, err := encodeLineStringGeometry(parts)
	if err != nil {
		return err
	}
	f.setGeometry(types.GeomLineString, encoded)
	return nil
}

// PolygonFeatureBuilder builds a single feature whose geometry is a
// Polygon/MultiPolygon.
type PolygonFeatureBuilder struct {
	baseFeatureBuilder
}

// NewPolygonFeatureBuilder begins a new polygon feature in layer.
func NewPolygonFeatureBuilder(layer *LayerBuilder) *PolygonFeatureBuilder {
	return &PolygonFeatureBuilder{baseFeatureBuilder: newBaseFeatureBuilder(layer)}
}

// SetGeometry validates and stages rings as this feature's geometry.
func (f *PolygonFeatureBuilder) SetGeometry(rings [][]types.Point) error {
	encoded, err := encodePolygonGeometry(rings)
	if err != nil {
		return err
	}
	f.setGeometry(types.GeomPolygon, encoded)
	return nil
}

// AddProperty interns key/value and appends the resulting index pair to
// the feature's v1/v2 tags stream. Valid only below version 3 and only
// after geometry has been set.
func (f *baseFeatureBuilder) AddProperty(key string, value EncodedValue) {
	ki := f.layer.AddKey(key)
	vi := f.layer.AddValue(value)
	f.addEncodedTags(wire.AppendPackedVarints(nil, featureFieldTags, []uint32{uint32(ki), uint32(vi)}))
}

// AddAttribute interns key and appends its index, paired with valueIndex
// (an index the caller already obtained from one of the layer's v3 value
// tables, used as given), to the feature's v3 attributes stream. Valid only at version 3 and only after geometry
// has been set.
func (f *baseFeatureBuilder) AddAttribute(key string, valueIndex types.Index) {
	f.layer.requireV3("add_attribute")
	f.requireGeomSet("add_attribute")
	ki := f.layer.AddKey(key)
	f.scratch = wire.AppendPackedVarints(f.scratch, featureFieldAttrs, []uint32{uint32(ki), uint32(valueIndex)})
}

// AddGeometricAttribute interns key and appends the resulting key-index
// paired with a value-table index to the feature's v3 geometric_attributes
// stream. Unlike AddAttribute's feature-level attributes, a geometric
// attribute is understood by convention to carry one value per geometry
// vertex rather than one value per feature, but the wire shape — a packed
// key-index/value-index pair referencing the same per-layer value tables
// — is identical, so it reuses the same encoding. Valid only at version 3
// and only after geometry has been set.
func (f *baseFeatureBuilder) AddGeometricAttribute(key string, valueIndex types.Index) {
	f.layer.requireV3("add_geometric_attribute")
	f.requireGeomSet("add_geometric_attribute")
	ki := f.layer.AddKey(key)
	f.scratch = wire.AppendPackedVarints(f.scratch, featureFieldGeomAttrs, []uint32{uint32(ki), uint32(valueIndex)})
}

// AddElevations appends one elevation sample per geometry vertex to the
// feature's v3 elevations stream, zig-zag encoded as a packed varint
// field. Samples are in the layer's elevation_scaling units, unscaled by
// this call — scaling is applied by whoever renders the tile, per the
// layer's ElevationScaling record. Valid only at version 3 and only after
// geometry has been set.
func (f *baseFeatureBuilder) AddElevations(elevations []int64) {
	f.layer.requireV3("add_elevations")
	f.requireGeomSet("add_elevations")
	f.scratch = wire.AppendPackedZigZag(f.scratch, featureFieldElevations, elevations)
}
