package vtile

import "vtilebuilder/pkg/types"

// tileLayer is anything that can contribute a `layers` field to a tile's
// output: either a LayerBuilder under active construction or an
// ExistingLayerBuilder wrapping already-encoded bytes.
type tileLayer interface {
	estimatedSize() int
	build(dst []byte) []byte
}

// TileBuilder accumulates layers, in the order they were added, and
// serializes them into a complete MVT Tile message. It holds no
// reference to any decoder; layers it did not build itself arrive
// through DecodedLayer, an external collaborator interface.
//
// A TileBuilder is movable but not copyable: its layers slice holds
// pointers into memory each LayerBuilder privately owns, and copying the
// struct would not duplicate that memory. Always hold and pass
// *TileBuilder.
type TileBuilder struct {
	layers []tileLayer
}

// NewTileBuilder returns an empty tile builder.
func NewTileBuilder() *TileBuilder {
	return &TileBuilder{}
}

// AddLayer begins a new layer of the given name, version, and extent (0
// selects the default extent) and returns a builder for it. The returned
// LayerBuilder is owned by this TileBuilder and must not outlive it.
func (t *TileBuilder) AddLayer(name string, version types.Version, extent uint32) *LayerBuilder {
	return t.AddLayerWithLocator(name, version, extent, nil)
}

// AddLayerWithLocator is AddLayer for a v3 layer that also carries a tile
// locator (zoom/x/y/extent). locator must be nil for versions below 3.
func (t *TileBuilder) AddLayerWithLocator(name string, version types.Version, extent uint32, locator *types.TileLocator) *LayerBuilder {
	lb := newLayerBuilder(name, version, extent, locator)
	t.layers = append(t.layers, lb)
	return lb
}

// AddExistingLayer appends an already-decoded layer to be spliced into
// this tile's output unmodified.
func (t *TileBuilder) AddExistingLayer(layer DecodedLayer) *ExistingLayerBuilder {
	elb := newExistingLayerBuilder(layer)
	t.layers = append(t.layers, elb)
	return elb
}

// NumLayers reports how many layers (built or existing) have been added,
// including ones that will end up suppressed at Serialize time for
// having no features.
func (t *TileBuilder) NumLayers() int {
	return len(t.layers)
}

// Serialize encodes every added layer, in insertion order, into a single
// Tile message. Layers with no committed features (LayerBuilder) or no
// body bytes (ExistingLayerBuilder) are silently omitted, matching the
// reference encoder's rule that an empty layer never appears in the
// output.
func (t *TileBuilder) Serialize() []byte {
	size := 0
	for _, l := range t.layers {
		size += l.estimatedSize()
	}

	dst := make([]byte, 0, size)
	for _, l := range t.layers {
		dst = l.build(dst)
	}
	return dst
}
