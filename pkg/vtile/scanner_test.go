package vtile

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

// testLayer is a minimal hand-decoded view of an encoded `layers` field
// body, built only to make assertions readable in this package's own
// tests. It is not a production decoder: spec.md keeps decoding out of
// scope for this module, so this scanner only understands exactly the
// fields the tests below need.
type testLayer struct {
	name        string
	version     uint64
	extent      uint64
	numFeatures int
	keys        []string
	values      [][]byte
	features    [][]byte
}

func scanLayer(t *testing.T, body []byte) testLayer {
	t.Helper()
	var out testLayer
	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n <= 0 {
			t.Fatalf("bad tag in layer body")
		}
		body = body[n:]
		switch num {
		case layerFieldName:
			s, sn := protowire.ConsumeBytes(body)
			requireOK(t, sn)
			out.name = string(s)
			body = body[sn:]
		case layerFieldVersion:
			v, vn := protowire.ConsumeVarint(body)
			requireOK(t, vn)
			out.version = v
			body = body[vn:]
		case layerFieldExtent:
			v, vn := protowire.ConsumeVarint(body)
			requireOK(t, vn)
			out.extent = v
			body = body[vn:]
		case layerFieldFeatures:
			b, bn := protowire.ConsumeBytes(body)
			requireOK(t, bn)
			out.features = append(out.features, b)
			out.numFeatures++
			body = body[bn:]
		case layerFieldKeys:
			b, bn := protowire.ConsumeBytes(body)
			requireOK(t, bn)
			out.keys = append(out.keys, string(b))
			body = body[bn:]
		case layerFieldValues:
			b, bn := protowire.ConsumeBytes(body)
			requireOK(t, bn)
			out.values = append(out.values, b)
			body = body[bn:]
		default:
			switch typ {
			case protowire.VarintType:
				_, vn := protowire.ConsumeVarint(body)
				requireOK(t, vn)
				body = body[vn:]
			case protowire.BytesType:
				_, bn := protowire.ConsumeBytes(body)
				requireOK(t, bn)
				body = body[bn:]
			case protowire.Fixed64Type:
				_, fn := protowire.ConsumeFixed64(body)
				requireOK(t, fn)
				body = body[fn:]
			case protowire.Fixed32Type:
				_, fn := protowire.ConsumeFixed32(body)
				requireOK(t, fn)
				body = body[fn:]
			default:
				t.Fatalf("unsupported wire type %v", typ)
			}
		}
	}
	return out
}

// scanTileLayers splits a serialized tile into its raw `layers` field
// bodies, in order, without interpreting their contents.
func scanTileLayers(t *testing.T, tile []byte) [][]byte {
	t.Helper()
	var out [][]byte
	for len(tile) > 0 {
		num, _, n := protowire.ConsumeTag(tile)
		requireOK(t, n)
		tile = tile[n:]
		b, bn := protowire.ConsumeBytes(tile)
		requireOK(t, bn)
		if num == tileFieldLayers {
			out = append(out, b)
		}
		tile = tile[bn:]
	}
	return out
}

func requireOK(t *testing.T, n int) {
	t.Helper()
	if n <= 0 {
		t.Fatalf("failed to consume wire value")
	}
}
