package vtile

import (
	"vtilebuilder/pkg/types"
	"vtilebuilder/pkg/wire"
)

// ExistingLayerBuilder wraps an already-encoded layer (typically obtained
// from a decoder) so it can be spliced into a new tile unmodified. It
// implements the same splice-at-build-time discipline as LayerBuilder but
// never re-encodes anything: the bytes a decoder handed it are opaque and
// pass straight through.
type ExistingLayerBuilder struct {
	name    string
	version types.Version
	extent  uint32
	body    []byte
}

func newExistingLayerBuilder(layer DecodedLayer) *ExistingLayerBuilder {
	return &ExistingLayerBuilder{
		name:    layer.Name(),
		version: layer.Version(),
		extent:  layer.Extent(),
		body:    layer.EncodedBytes(),
	}
}

// Name reports the wrapped layer's name.
func (e *ExistingLayerBuilder) Name() string { return e.name }

// Version reports the wrapped layer's schema dialect.
func (e *ExistingLayerBuilder) Version() types.Version { return e.version }

// Extent reports the wrapped layer's coordinate grid resolution.
func (e *ExistingLayerBuilder) Extent() uint32 { return e.extent }

func (e *ExistingLayerBuilder) estimatedSize() int {
	return len(e.body) + 8
}

// build appends the wrapped layer's bytes verbatim, under the tile's
// `layers` field, as a single opaque splice. An existing layer with no
// body is treated the same as a freshly built layer with zero features:
// it is never written out.
func (e *ExistingLayerBuilder) build(dst []byte) []byte {
	if len(e.body) == 0 {
		return dst
	}
	return wire.AppendBytesField(dst, tileFieldLayers, e.body)
}
