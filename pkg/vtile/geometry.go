package vtile

import (
	"vtilebuilder/pkg/types"
	"vtilebuilder/pkg/wire"
)

// geometry command ids, packed into the low 3 bits of each command
// integer in an MVT geometry command stream.
const (
	cmdMoveTo    = 1
	cmdLineTo    = 2
	cmdClosePath = 7
)

const maxPointsPerCommand = maxPointCount - 1

// checkPointCount reports a GeometryError if n cannot fit in a single
// MoveTo command's 29-bit repeat-count field. It exists as its own
// function so a pre-check against a container's length (see
// AddPointsFromContainer in copy.go) can run before any per-point work,
// matching the reference encoder's "fail fast on an oversized container"
// rule without needing to materialize the container first.
func checkPointCount(n int) error {
	if n > maxPointsPerCommand {
		return newGeometryError("point geometry has %d points, exceeding the %d command-count limit", n, maxPointsPerCommand)
	}
	return nil
}

// encodeCommand packs a command id and repeat count into a single command
// integer, as described for the `geometry` field's packed uint32 stream.
func encodeCommand(id uint32, count uint32) uint32 {
	return (count << 3) | id
}

// geometryEncoder accumulates a packed command/parameter stream for one
// feature's geometry field. Coordinates are encoded as zig-zag deltas
// from the cursor position left behind by the previous command, per the
// MVT geometry encoding convention; the cursor resets to (0, 0) at the
// start of every feature.
type geometryEncoder struct {
	commands []uint32
	cursorX  int64
	cursorY  int64
}

func (g *geometryEncoder) moveTo(count uint32) {
	g.commands = append(g.commands, encodeCommand(cmdMoveTo, count))
}

func (g *geometryEncoder) lineTo(count uint32) {
	g.commands = append(g.commands, encodeCommand(cmdLineTo, count))
}

func (g *geometryEncoder) closePath() {
	g.commands = append(g.commands, encodeCommand(cmdClosePath, 1))
}

func (g *geometryEncoder) point(p types.Point) {
	dx := p.X - g.cursorX
	dy := p.Y - g.cursorY
	g.cursorX, g.cursorY = p.X, p.Y
	g.commands = append(g.commands,
		uint32(wire.ZigZagEncode(dx)),
		uint32(wire.ZigZagEncode(dy)),
	)
}

// encode appends this geometry's packed field to dst.
func (g *geometryEncoder) encode(dst []byte) []byte {
	return wire.AppendPackedVarints(dst, featureFieldGeometry, g.commands)
}

// encodePointGeometry validates and encodes a MultiPoint/Point geometry
// from a flat list of points: a single MoveTo command whose repeat count
// is the point count, followed by one coordinate pair per point.
func encodePointGeometry(points []types.Point) ([]byte, error) {
	n := len(points)
	if n == 0 {
		return nil, newGeometryError("point geometry must have at least one point")
	}
	if err := checkPointCount(n); err != nil {
		return nil, err
	}

	var g geometryEncoder
	g.moveTo(uint32(n))
	for _, p := range points {
		g.point(p)
	}
	return g.encode(nil), nil
}

// encodeLineStringGeometry validates and encodes a MultiLineString/
// LineString geometry from a list of parts, each a sequence of points.
// Every part must have at least two points (the vtzero reference
// encoder's rule: a single-point "line" is not a line).
func encodeLineStringGeometry(parts [][]types.Point) ([]byte, error) {
	if len(parts) == 0 {
		return nil, newGeometryError("linestring geometry must have at least one part")
	}

	var g geometryEncoder
	for _, part := range parts {
		if len(part) < 2 {
			return nil, newGeometryError("linestring part has %d points, need at least 2", len(part))
		}
		if len(part)-1 > maxPointsPerCommand {
			return nil, newGeometryError("linestring part has %d points, exceeding the %d command-count limit", len(part), maxPointsPerCommand+1)
		}
		g.moveTo(1)
		g.point(part[0])
		g.lineTo(uint32(len(part) - 1))
		for _, p := range part[1:] {
			g.point(p)
		}
	}
	return g.encode(nil), nil
}

// encodePolygonGeometry validates and encodes a MultiPolygon/Polygon
// geometry from a list of rings. Every ring must have at least four
// points including its explicit closing point (the vtzero reference
// encoder's rule), and is terminated by a ClosePath command rather than
// an explicit coordinate pair for the repeated first point.
func encodePolygonGeometry(rings [][]types.Point) ([]byte, error) {
	if len(rings) == 0 {
		return nil, newGeometryError("polygon geometry must have at least one ring")
	}

	var g geometryEncoder
	for _, ring := range rings {
		if len(ring) < 4 {
			return nil, newGeometryError("polygon ring has %d points, need at least 4 (including the closing point)", len(ring))
		}
		if ring[0] != ring[len(ring)-1] {
			return nil, newGeometryError("polygon ring is not closed: first point %v != last point %v", ring[0], ring[len(ring)-1])
		}
		body := ring[:len(ring)-1]
		if len(body)-1 > maxPointsPerCommand {
			return nil, newGeometryError("polygon ring has %d points, exceeding the %d command-count limit", len(ring), maxPointsPerCommand+1)
		}
		g.moveTo(1)
		g.point(body[0])
		g.lineTo(uint32(len(body) - 1))
		for _, p := range body[1:] {
			g.point(p)
		}
		g.closePath()
	}
	return g.encode(nil), nil
}
