package vtile

import (
	"testing"

	"vtilebuilder/pkg/types"

	"google.golang.org/protobuf/encoding/protowire"
)

// S1 — version gating: set_string_id must fail below v3 and succeed at
// v3, with the serialized feature carrying the string id and no integer
// id.
func TestVersionGatingStringID(t *testing.T) {
	tb := NewTileBuilder()
	v2 := tb.AddLayer("v2layer", Version2, 0)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatalf("expected panic calling SetStringID below v3")
			}
		}()
		fb := NewPointFeatureBuilder(v2)
		fb.SetStringID("foo")
	}()

	tb2 := NewTileBuilder()
	v3 := tb2.AddLayer("v3layer", Version3, 0)
	fb := NewPointFeatureBuilder(v3)
	fb.SetStringID("foo")
	if err := fb.SetGeometry([]types.Point{{X: 1, Y: 1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fb.Commit()

	layer := scanLayer(t, mustSingleLayer(t, tb2.Serialize()))
	if layer.numFeatures != 1 {
		t.Fatalf("expected 1 feature, got %d", layer.numFeatures)
	}

	feature := layer.features[0]
	var stringID string
	var sawStringID bool
	for len(feature) > 0 {
		num, typ, n := protowire.ConsumeTag(feature)
		requireOK(t, n)
		feature = feature[n:]
		switch num {
		case featureFieldID:
			t.Fatalf("feature with a string id must not carry an integer id")
		case featureFieldStringID:
			s, sn := protowire.ConsumeBytes(feature)
			requireOK(t, sn)
			stringID, sawStringID = string(s), true
		}
		sz := protowire.ConsumeFieldValue(num, typ, feature)
		if sz < 0 {
			t.Fatalf("failed to skip field %d", num)
		}
		feature = feature[sz:]
	}
	if !sawStringID || stringID != "foo" {
		t.Fatalf("expected string id %q, got %q (present=%v)", "foo", stringID, sawStringID)
	}
}

// S2 — add keys/values: dedup indices behave exactly as spec.md's example.
func TestAddKeysValuesDedup(t *testing.T) {
	tb := NewTileBuilder()
	layer := tb.AddLayer("layer", Version2, 0)

	i1 := layer.AddKey("key1")
	i2 := layer.AddKey("key2")
	i3 := layer.AddKey("key1")
	if i1 == i2 {
		t.Fatalf("key1 and key2 got the same index")
	}
	if i1 != i3 {
		t.Fatalf("key1 did not dedup with itself: %d vs %d", i1, i3)
	}

	v1 := layer.AddValue(StringValue("value1"))
	v1b := layer.AddValue(StringValue("value1"))
	v4 := layer.AddValue(IntValue(19))
	v5 := layer.AddValue(DoubleValue(19.0))
	v6 := layer.AddValue(IntValue(22))
	v4b := layer.AddValue(IntValue(19))

	if v1 != v1b {
		t.Fatalf("duplicate string value did not dedup")
	}
	if v4 != v4b {
		t.Fatalf("duplicate int value did not dedup")
	}
	if v4 == v5 {
		t.Fatalf("int 19 and double 19.0 must not dedup (different encodings)")
	}
	if v4 == v6 {
		t.Fatalf("int 19 and int 22 got the same index")
	}
	if v1 == v4 {
		t.Fatalf("string value1 and int 19 got the same index")
	}
}

// S3 — rollback set: only committed features survive, in commit order.
func TestRollbackSet(t *testing.T) {
	tb := NewTileBuilder()
	layer := tb.AddLayer("layer", Version2, 0)

	commit := func(id uint64) {
		fb := NewPointFeatureBuilder(layer)
		fb.SetID(id)
		if err := fb.SetGeometry([]types.Point{{X: int64(id), Y: 0}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fb.Commit()
	}
	rollback := func(id uint64) {
		fb := NewPointFeatureBuilder(layer)
		fb.SetID(id)
		if err := fb.SetGeometry([]types.Point{{X: int64(id), Y: 0}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fb.Rollback()
	}

	commit(1)
	for id := uint64(2); id <= 7; id++ {
		rollback(id)
	}
	commit(8)

	layerBytes := mustSingleLayer(t, tb.Serialize())
	scanned := scanLayer(t, layerBytes)
	if scanned.numFeatures != 2 {
		t.Fatalf("expected exactly 2 features, got %d", scanned.numFeatures)
	}

	id1 := mustFeatureID(t, scanned.features[0])
	id2 := mustFeatureID(t, scanned.features[1])
	if id1 != 1 || id2 != 8 {
		t.Fatalf("expected feature ids [1, 8], got [%d, %d]", id1, id2)
	}
}

// S4 — tile locator round-trips through serialization.
func TestTileLocator(t *testing.T) {
	tb := NewTileBuilder()
	locator := &types.TileLocator{Zoom: 12, X: 5, Y: 3, Extent: 8192}
	layer := tb.AddLayerWithLocator("layer", Version3, 0, locator)

	fb := NewPointFeatureBuilder(layer)
	fb.SetID(1)
	if err := fb.SetGeometry([]types.Point{{X: 0, Y: 0}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fb.Commit()

	out := tb.Serialize()
	if len(out) == 0 {
		t.Fatalf("expected non-empty tile")
	}

	body := mustSingleLayer(t, out)
	var got types.TileLocator
	var sawTile bool
	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		requireOK(t, n)
		body = body[n:]
		if num == layerFieldTile {
			tile, tn := protowire.ConsumeBytes(body)
			requireOK(t, tn)
			sawTile = true
			for len(tile) > 0 {
				fnum, _, fn := protowire.ConsumeTag(tile)
				requireOK(t, fn)
				v, vn := protowire.ConsumeVarint(tile[fn:])
				requireOK(t, vn)
				tile = tile[fn+vn:]
				switch fnum {
				case tileLocatorFieldZoom:
					got.Zoom = uint32(v)
				case tileLocatorFieldX:
					got.X = uint32(v)
				case tileLocatorFieldY:
					got.Y = uint32(v)
				case tileLocatorFieldExtent:
					got.Extent = uint32(v)
				}
			}
		}
		sz := protowire.ConsumeFieldValue(num, typ, body)
		if sz < 0 {
			t.Fatalf("failed to skip field %d", num)
		}
		body = body[sz:]
	}
	if !sawTile || got != *locator {
		t.Fatalf("expected tile locator %+v, got %+v (present=%v)", *locator, got, sawTile)
	}
}

// S5 — too-many-points fails with a geometry error, and the feature
// leaves no trace in the layer. checkPointCount is exercised directly at
// the real 2^29 boundary (materializing an actual container of that size
// would need several gigabytes and isn't necessary to prove the
// pre-check fires before any per-point work happens); the rollback half
// of the scenario is exercised with a small geometry error instead, which
// takes the exact same commit/rollback path.
func TestTooManyPointsPreCheck(t *testing.T) {
	if err := checkPointCount(maxPointsPerCommand); err != nil {
		t.Fatalf("unexpected error at the exact limit: %v", err)
	}
	err := checkPointCount(maxPointsPerCommand + 1)
	if err == nil {
		t.Fatalf("expected a geometry error just past the limit")
	}
	if _, ok := err.(*GeometryError); !ok {
		t.Fatalf("expected *GeometryError, got %T", err)
	}
}

func TestFailedGeometryRollsBack(t *testing.T) {
	tb := NewTileBuilder()
	layer := tb.AddLayer("layer", Version2, 0)
	before := layer.mark()

	fb := NewPointFeatureBuilder(layer)
	fb.SetID(1)
	if err := fb.SetGeometry(nil); err == nil {
		t.Fatalf("expected a geometry error for an empty point list")
	}
	fb.Rollback()

	if layer.mark() != before {
		t.Fatalf("layer buffer grew despite the feature being rolled back")
	}
}

// S6 — scalings round-trip and out-of-range lookups fail.
func TestScalings(t *testing.T) {
	tb := NewTileBuilder()
	layer := tb.AddLayer("layer", Version3, 0)

	layer.SetElevationScaling(types.Scaling{Offset: 11, Multiplier: 2.2, Base: 3.3})
	i0 := layer.AddAttributeScaling(types.Scaling{Offset: 1, Multiplier: 1, Base: 0})
	i1 := layer.AddAttributeScaling(types.Scaling{Offset: 2, Multiplier: 1, Base: 0})
	i2 := layer.AddAttributeScaling(types.Scaling{Offset: 3, Multiplier: 1, Base: 0})

	for i, want := range []types.Index{i0, i1, i2} {
		got, err := layer.AttributeScaling(want)
		if err != nil {
			t.Fatalf("unexpected error reading back scaling %d: %v", i, err)
		}
		if got.Offset != int64(i+1) {
			t.Fatalf("scaling %d has offset %d, want %d", i, got.Offset, i+1)
		}
	}

	if _, err := layer.AttributeScaling(types.Index(99)); err == nil {
		t.Fatalf("expected a range error for an out-of-range index")
	}
}

func TestActiveFeatureDiscipline(t *testing.T) {
	tb := NewTileBuilder()
	layer := tb.AddLayer("layer", Version2, 0)

	fb1 := NewPointFeatureBuilder(layer)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic creating a second active feature builder")
		}
	}()
	_ = fb1
	NewPointFeatureBuilder(layer)
}

// Identifiers are mutually exclusive: once one kind of id is set, the
// other (or a repeat of the same one) must panic rather than silently
// overwrite it.
func TestIdentifiersAreMutuallyExclusive(t *testing.T) {
	tb := NewTileBuilder()
	v3 := tb.AddLayer("layer", Version3, 0)

	fb := NewPointFeatureBuilder(v3)
	fb.SetID(1)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic calling SetStringID after SetID")
		}
	}()
	fb.SetStringID("foo")
}

func TestSetIDTwicePanics(t *testing.T) {
	tb := NewTileBuilder()
	layer := tb.AddLayer("layer", Version2, 0)

	fb := NewPointFeatureBuilder(layer)
	fb.SetID(1)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic calling SetID twice")
		}
	}()
	fb.SetID(2)
}

// DONE is terminal: a second Commit, or a Rollback after a successful
// Commit, must be a silent no-op rather than a panic.
func TestCommitAndRollbackAreNoOpsAfterDone(t *testing.T) {
	tb := NewTileBuilder()
	layer := tb.AddLayer("layer", Version2, 0)

	fb := NewPointFeatureBuilder(layer)
	fb.SetID(1)
	if err := fb.SetGeometry([]types.Point{{X: 0, Y: 0}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fb.Commit()
	if layer.NumFeatures() != 1 {
		t.Fatalf("expected 1 committed feature, got %d", layer.NumFeatures())
	}

	fb.Commit()
	fb.Rollback()
	if layer.NumFeatures() != 1 {
		t.Fatalf("commit/rollback after DONE must not change feature count, got %d", layer.NumFeatures())
	}
}

// Geometric attributes and elevations are v3-only producer paths, each
// gated the same way AddAttribute is gated; both must serialize.
func TestAddGeometricAttributeAndElevations(t *testing.T) {
	tb := NewTileBuilder()
	layer := tb.AddLayer("layer", Version3, 0)
	layer.SetElevationScaling(types.Scaling{Offset: 0, Multiplier: 1, Base: 0})

	fb := NewPointFeatureBuilder(layer)
	fb.SetID(1)
	if err := fb.SetGeometry([]types.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vi := layer.AddDoubleValue(12.5)
	fb.AddGeometricAttribute("slope", vi)
	fb.AddElevations([]int64{100, -50})
	fb.Commit()

	layerBytes := mustSingleLayer(t, tb.Serialize())
	scanned := scanLayer(t, layerBytes)
	if len(scanned.features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(scanned.features))
	}

	feature := scanned.features[0]
	var sawGeomAttrs, sawElevs bool
	for len(feature) > 0 {
		num, typ, n := protowire.ConsumeTag(feature)
		if n <= 0 {
			t.Fatalf("failed to consume feature tag")
		}
		feature = feature[n:]
		switch num {
		case featureFieldGeomAttrs:
			sawGeomAttrs = true
		case featureFieldElevations:
			sawElevs = true
		}
		sz := protowire.ConsumeFieldValue(num, typ, feature)
		if sz < 0 {
			t.Fatalf("failed to skip field %d", num)
		}
		feature = feature[sz:]
	}
	if !sawGeomAttrs || !sawElevs {
		t.Fatalf("feature missing geometric_attributes or elevations: geomAttrs=%v elevs=%v", sawGeomAttrs, sawElevs)
	}
}

func TestAddGeometricAttributeBelowV3Panics(t *testing.T) {
	tb := NewTileBuilder()
	layer := tb.AddLayer("layer", Version2, 0)

	fb := NewPointFeatureBuilder(layer)
	fb.SetID(1)
	if err := fb.SetGeometry([]types.Point{{X: 0, Y: 0}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic calling AddGeometricAttribute below v3")
		}
	}()
	fb.AddGeometricAttribute("slope", types.Index(0))
}

func mustSingleLayer(t *testing.T, tile []byte) []byte {
	t.Helper()
	layers := scanTileLayers(t, tile)
	if len(layers) != 1 {
		t.Fatalf("expected exactly 1 layer in output, got %d", len(layers))
	}
	return layers[0]
}

func mustFeatureID(t *testing.T, feature []byte) uint64 {
	t.Helper()
	num, _, n := protowire.ConsumeTag(feature)
	if n <= 0 {
		t.Fatalf("failed to consume feature's first tag")
	}
	if num != featureFieldID {
		t.Fatalf("expected feature's first field to be id, got field %d", num)
	}
	v, vn := protowire.ConsumeVarint(feature[n:])
	if vn <= 0 {
		t.Fatalf("failed to consume feature id varint")
	}
	return v
}
