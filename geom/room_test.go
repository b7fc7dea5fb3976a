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

package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/wiplan/wiplan/types"
)

func testRoom(walls []WallElement, openings []Opening) *RoomModel {
	bounds := NewBoundingBox(Point3D{}, Point3D{X: 10, Y: 10, Z: 2.5})
	return NewRoomModel("test", "Test Room", bounds, walls, nil, openings)
}

func fullHeightWall(id string, x float64, mat WallMaterial) WallElement {
	return WallElement{
		ID:        id,
		Start:     Point3D{X: x, Y: 0},
		End:       Point3D{X: x, Y: 10},
		Height:    2.5,
		Thickness: 0.1,
		Material:  mat,
	}
}

func TestSegmentIntersection2D(t *testing.T) {
	// perpendicular cross in the middle
	_, u, ok := SegmentIntersection2D(
		Point3D{X: 0, Y: 5}, Point3D{X: 10, Y: 5},
		Point3D{X: 5, Y: 0}, Point3D{X: 5, Y: 10})
	assert.True(t, ok)
	assert.InDelta(t, 0.5, u, 1e-9)

	// parallel segments never intersect
	_, _, ok = SegmentIntersection2D(
		Point3D{X: 0, Y: 0}, Point3D{X: 10, Y: 0},
		Point3D{X: 0, Y: 1}, Point3D{X: 10, Y: 1})
	assert.False(t, ok)

	// miss: segments on intersecting lines but too short
	_, _, ok = SegmentIntersection2D(
		Point3D{X: 0, Y: 5}, Point3D{X: 4, Y: 5},
		Point3D{X: 5, Y: 0}, Point3D{X: 5, Y: 10})
	assert.False(t, ok)
}

func TestCrossedWalls(t *testing.T) {
	room := testRoom([]WallElement{
		fullHeightWall("w1", 3, MaterialDrywall),
		fullHeightWall("w2", 7, MaterialConcrete),
	}, nil)

	crossings := room.CrossedWalls(Point3D{X: 1, Y: 5, Z: 1}, Point3D{X: 9, Y: 5, Z: 1})
	assert.Equal(t, 2, len(crossings))
	assert.Equal(t, "w1", crossings[0].Wall.ID)
	assert.Equal(t, "w2", crossings[1].Wall.ID)
	assert.InDelta(t, 5.0, crossings[0].AlongM, 1e-9)

	// no crossing when the path stays on one side
	crossings = room.CrossedWalls(Point3D{X: 1, Y: 5, Z: 1}, Point3D{X: 2, Y: 8, Z: 1})
	assert.Equal(t, 0, len(crossings))
}

func TestCrossedWallsHalfHeightWall(t *testing.T) {
	wall := fullHeightWall("low", 5, MaterialWood)
	wall.Height = 1.0
	room := testRoom([]WallElement{wall}, nil)

	// below the top of the wall: crossed
	crossings := room.CrossedWalls(Point3D{X: 1, Y: 5, Z: 0.5}, Point3D{X: 9, Y: 5, Z: 0.5})
	assert.Equal(t, 1, len(crossings))

	// above the wall: clear
	crossings = room.CrossedWalls(Point3D{X: 1, Y: 5, Z: 2.0}, Point3D{X: 9, Y: 5, Z: 2.0})
	assert.Equal(t, 0, len(crossings))
}

func TestObstructionLossDb(t *testing.T) {
	room := testRoom([]WallElement{
		fullHeightWall("w1", 3, MaterialDrywall),
		fullHeightWall("w2", 7, MaterialConcrete),
	}, nil)

	loss, n := room.ObstructionLossDb(Point3D{X: 1, Y: 5, Z: 1}, Point3D{X: 9, Y: 5, Z: 1})
	assert.Equal(t, 2, n)
	assert.InDelta(t, float64(MaterialDrywall.AttenuationDb()+MaterialConcrete.AttenuationDb()), loss, 1e-9)

	loss, n = room.ObstructionLossDb(Point3D{X: 1, Y: 5, Z: 1}, Point3D{X: 2, Y: 5, Z: 1})
	assert.Equal(t, 0, n)
	assert.Equal(t, DbValue(0), loss)
}

func TestOpeningRelief(t *testing.T) {
	// door footprint between 4 m and 5 m along the wall, full height
	room := testRoom(
		[]WallElement{fullHeightWall("w1", 5, MaterialConcrete)},
		[]Opening{{ID: "d1", WallID: "w1", Kind: OpeningDoor, AlongM: 4, WidthM: 1, SillM: 0, HeightM: 2.1}})

	// path through the door pays the residual door loss only
	loss, n := room.ObstructionLossDb(Point3D{X: 1, Y: 4.5, Z: 1}, Point3D{X: 9, Y: 4.5, Z: 1})
	assert.Equal(t, 1, n)
	assert.InDelta(t, float64(OpeningDoor.AttenuationDb()), loss, 1e-9)

	// path beside the door pays the full wall loss
	loss, _ = room.ObstructionLossDb(Point3D{X: 1, Y: 8, Z: 1}, Point3D{X: 9, Y: 8, Z: 1})
	assert.InDelta(t, float64(MaterialConcrete.AttenuationDb()), loss, 1e-9)

	// path above the door opening pays the full wall loss
	loss, _ = room.ObstructionLossDb(Point3D{X: 1, Y: 4.5, Z: 2.3}, Point3D{X: 9, Y: 4.5, Z: 2.3})
	assert.InDelta(t, float64(MaterialConcrete.AttenuationDb()), loss, 1e-9)
}

func TestMinWallDistance2D(t *testing.T) {
	room := testRoom([]WallElement{fullHeightWall("w1", 5, MaterialDrywall)}, nil)
	assert.InDelta(t, 2.0, room.MinWallDistance2D(Point3D{X: 3, Y: 5}), 1e-9)
	assert.InDelta(t, 0.0, room.MinWallDistance2D(Point3D{X: 5, Y: 5}), 1e-9)
}

func TestBoundingBox(t *testing.T) {
	bb := NewBoundingBox(Point3D{X: 5, Y: 4, Z: 2.5}, Point3D{})
	assert.Equal(t, Point3D{}, bb.Min)
	assert.True(t, bb.Contains(Point3D{X: 2.5, Y: 2, Z: 1}))
	assert.False(t, bb.Contains(Point3D{X: 6, Y: 2, Z: 1}))
	assert.True(t, bb.Contains2D(Point3D{X: 2.5, Y: 2, Z: 99}))
	assert.InDelta(t, 20.0, bb.FloorArea(), 1e-9)
	assert.False(t, bb.IsDegenerate())

	flat := NewBoundingBox(Point3D{}, Point3D{X: 5})
	assert.True(t, flat.IsDegenerate())
}

func TestRoomModelDegenerate(t *testing.T) {
	var nilRoom *RoomModel
	assert.True(t, nilRoom.IsDegenerate())

	room := NewRoomModel("r", "r", NewBoundingBox(Point3D{}, Point3D{}), nil, nil, nil)
	assert.True(t, room.IsDegenerate())
}

func TestParsers(t *testing.T) {
	mat, ok := ParseWallMaterial("concrete")
	assert.True(t, ok)
	assert.Equal(t, MaterialConcrete, mat)
	_, ok = ParseWallMaterial("cardboard")
	assert.False(t, ok)

	kind, ok := ParseFurnitureKind("table")
	assert.True(t, ok)
	assert.True(t, kind.SupportsPlacement())

	ok2, ok := ParseOpeningKind("window")
	assert.True(t, ok)
	assert.Equal(t, OpeningWindow, ok2)
}
