package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane is a plane ax + by + cz + d = 0 with (a, b, c) the normal and d the distance from
// the origin. Points with a non-negative signed distance are on the inner side.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum holds the six planes of a view volume, all facing inward.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// NewFrustum extracts the planes of a combined projection * view matrix with the
// Gribb/Hartmann method.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the column-major projection * view matrix
//
// Returns:
//   - Frustum: the frustum with normalized planes
func NewFrustum(viewProj mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 { return viewProj.Row(i) }
	planes := [6]mgl32.Vec4{
		row(3).Add(row(0)),
		row(3).Sub(row(0)),
		row(3).Add(row(1)),
		row(3).Sub(row(1)),
		row(3).Add(row(2)),
		row(3).Sub(row(2)),
	}

	var f Frustum
	for i, p := range planes {
		normal := p.Vec3()
		length := normal.Len()
		if length > 0 {
			normal = normal.Mul(1 / length)
			p[3] /= length
		}
		f.Planes[i] = Plane{Normal: normal, Distance: p[3]}
	}
	return f
}

// IntersectsBox reports whether an axis-aligned box is at least partly inside the frustum.
// Boxes straddling a plane count as inside.
//
// Parameters:
//   - lo: the box minimum corner
//   - hi: the box maximum corner
//
// Returns:
//   - bool: false only if the box lies entirely outside one plane
func (f *Frustum) IntersectsBox(lo, hi mgl32.Vec3) bool {
	for _, p := range f.Planes {
		// The corner furthest along the normal.
		var v mgl32.Vec3
		for c := 0; c < 3; c++ {
			if p.Normal[c] >= 0 {
				v[c] = hi[c]
			} else {
				v[c] = lo[c]
			}
		}
		if p.Normal.Dot(v)+p.Distance < 0 {
			return false
		}
	}
	return true
}

// RecordBounds returns the world-space bounding box of a record's POSITION data.
// The accessor's declared min/max are used when present; otherwise the positions are read.
//
// Parameters:
//   - r: the draw record
//
// Returns:
//   - mgl32.Vec3: the box minimum
//   - mgl32.Vec3: the box maximum
//   - bool: false if the primitive has no readable positions
func RecordBounds(r DrawRecord) (mgl32.Vec3, mgl32.Vec3, bool) {
	pos, ok := r.Primitive.Position()
	if !ok || pos.Count == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}

	var lo, hi mgl32.Vec3
	if len(pos.Min) == 3 && len(pos.Max) == 3 {
		lo = mgl32.Vec3{pos.Min[0], pos.Min[1], pos.Min[2]}
		hi = mgl32.Vec3{pos.Max[0], pos.Max[1], pos.Max[2]}
	} else {
		points, err := pos.Vec3s()
		if err != nil {
			return mgl32.Vec3{}, mgl32.Vec3{}, false
		}
		lo, hi = emptyBox()
		for _, p := range points {
			lo, hi = grow(lo, hi, p)
		}
	}

	wlo, whi := emptyBox()
	for corner := 0; corner < 8; corner++ {
		local := lo
		for c := 0; c < 3; c++ {
			if corner&(1<<c) != 0 {
				local[c] = hi[c]
			}
		}
		wlo, whi = grow(wlo, whi, mgl32.TransformCoordinate(local, r.World))
	}
	return wlo, whi, true
}

// Bounds returns the world-space box enclosing every record with positions.
//
// Parameters:
//   - records: the draw records
//
// Returns:
//   - mgl32.Vec3: the box minimum
//   - mgl32.Vec3: the box maximum
//   - bool: false if no record has positions
func Bounds(records []DrawRecord) (mgl32.Vec3, mgl32.Vec3, bool) {
	lo, hi := emptyBox()
	found := false
	for _, r := range records {
		rlo, rhi, ok := RecordBounds(r)
		if !ok {
			continue
		}
		lo, hi = grow(lo, hi, rlo)
		lo, hi = grow(lo, hi, rhi)
		found = true
	}
	return lo, hi, found
}

// Cull returns the records whose bounds intersect the frustum, in their original order.
// Records without positions are kept.
//
// Parameters:
//   - records: the draw records
//   - f: the view frustum
//
// Returns:
//   - []DrawRecord: the visible records
func Cull(records []DrawRecord, f Frustum) []DrawRecord {
	visible := make([]DrawRecord, 0, len(records))
	for _, r := range records {
		lo, hi, ok := RecordBounds(r)
		if ok && !f.IntersectsBox(lo, hi) {
			continue
		}
		visible = append(visible, r)
	}
	return visible
}

func emptyBox() (mgl32.Vec3, mgl32.Vec3) {
	inf := float32(math.Inf(1))
	return mgl32.Vec3{inf, inf, inf}, mgl32.Vec3{-inf, -inf, -inf}
}

func grow(lo, hi, p mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	for c := 0; c < 3; c++ {
		lo[c] = min(lo[c], p[c])
		hi[c] = max(hi[c], p[c])
	}
	return lo, hi
}
