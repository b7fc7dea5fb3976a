// Copyright (c) 2024-2026, The Wiplan Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package geom holds the room geometry model: bounding volumes, walls,
// openings and furniture, plus the planar primitives the propagation and
// placement code needs. All values are in meters, in the coordinate frame of
// the RoomModel that produced them.
package geom

import (
	"math"

	. "github.com/wiplan/wiplan/types"
)

// BoundingBox is an axis-aligned box. Invariant: Min.X<=Max.X, Min.Y<=Max.Y,
// Min.Z<=Max.Z. A zero box is degenerate but permitted; callers treat it as
// an empty volume.
type BoundingBox struct {
	Min Point3D `yaml:"min" json:"min"`
	Max Point3D `yaml:"max" json:"max"`
}

// NewBoundingBox builds a box from two arbitrary corner points.
func NewBoundingBox(a, b Point3D) BoundingBox {
	return BoundingBox{
		Min: Point3D{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: Point3D{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

func (bb BoundingBox) Contains(p Point3D) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X &&
		p.Y >= bb.Min.Y && p.Y <= bb.Max.Y &&
		p.Z >= bb.Min.Z && p.Z <= bb.Max.Z
}

// Contains2D ignores the vertical axis, for floor-plan membership tests.
func (bb BoundingBox) Contains2D(p Point3D) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X &&
		p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}

func (bb BoundingBox) Center() Point3D {
	return Point3D{
		X: (bb.Min.X + bb.Max.X) / 2,
		Y: (bb.Min.Y + bb.Max.Y) / 2,
		Z: (bb.Min.Z + bb.Max.Z) / 2,
	}
}

func (bb BoundingBox) Size() Point3D {
	return bb.Max.Sub(bb.Min)
}

// FloorArea returns the horizontal footprint area in square meters.
func (bb BoundingBox) FloorArea() float64 {
	sz := bb.Size()
	return sz.X * sz.Y
}

// IsDegenerate reports whether the box has no usable floor footprint.
func (bb BoundingBox) IsDegenerate() bool {
	sz := bb.Size()
	return sz.X <= 0 || sz.Y <= 0
}

// Union returns the smallest box containing both boxes.
func (bb BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		Min: Point3D{X: math.Min(bb.Min.X, o.Min.X), Y: math.Min(bb.Min.Y, o.Min.Y), Z: math.Min(bb.Min.Z, o.Min.Z)},
		Max: Point3D{X: math.Max(bb.Max.X, o.Max.X), Y: math.Max(bb.Max.Y, o.Max.Y), Z: math.Max(bb.Max.Z, o.Max.Z)},
	}
}

// SegmentIntersection2D intersects segments a1-a2 and b1-b2 in the horizontal
// plane. On intersection it returns ok=true with t being the fractional
// position along a1-a2 and u along b1-b2, both in [0,1].
func SegmentIntersection2D(a1, a2, b1, b2 Point3D) (t, u float64, ok bool) {
	rx := a2.X - a1.X
	ry := a2.Y - a1.Y
	sx := b2.X - b1.X
	sy := b2.Y - b1.Y

	denom := rx*sy - ry*sx
	if math.Abs(denom) < 1e-12 {
		// parallel or collinear; collinear overlap is not counted as a crossing
		return 0, 0, false
	}

	qpx := b1.X - a1.X
	qpy := b1.Y - a1.Y
	t = (qpx*sy - qpy*sx) / denom
	u = (qpx*ry - qpy*rx) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, 0, false
	}
	return t, u, true
}

// PointToSegmentDistance2D returns the horizontal-plane distance from p to the
// segment a-b. Same closest-point construction as a segment/sphere test, in 2-D.
func PointToSegmentDistance2D(p, a, b Point3D) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	den := abx*abx + aby*aby
	if den == 0 {
		return p.DistanceTo2D(a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := Point3D{X: a.X + abx*t, Y: a.Y + aby*t}
	return p.DistanceTo2D(closest)
}

// lerp3D returns the point at fraction t along the segment a-b, in 3-D.
func lerp3D(a, b Point3D, t float64) Point3D {
	return a.Add(b.Sub(a).Scale(t))
}
