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
	. "github.com/wiplan/wiplan/types"
)

// WallMaterial determines the RF attenuation a wall adds per crossing.
type WallMaterial int

const (
	MaterialDrywall WallMaterial = iota
	MaterialConcrete
	MaterialGlass
	MaterialMetal
	MaterialWood
)

// Per-crossing attenuation constants in dB. Measured values vary per
// construction; these match common survey-tool defaults for single walls.
var materialAttenuationDb = []DbValue{
	MaterialDrywall:  6.0,
	MaterialConcrete: 15.0,
	MaterialGlass:    4.0,
	MaterialMetal:    26.0,
	MaterialWood:     5.0,
}

var materialNames = []string{"drywall", "concrete", "glass", "metal", "wood"}

func (m WallMaterial) AttenuationDb() DbValue {
	if m < 0 || int(m) >= len(materialAttenuationDb) {
		return materialAttenuationDb[MaterialDrywall]
	}
	return materialAttenuationDb[m]
}

func (m WallMaterial) String() string {
	if m < 0 || int(m) >= len(materialNames) {
		return "unknown"
	}
	return materialNames[m]
}

// ParseWallMaterial parses a material name from scenario files.
func ParseWallMaterial(s string) (WallMaterial, bool) {
	for i, n := range materialNames {
		if n == s {
			return WallMaterial(i), true
		}
	}
	return MaterialDrywall, false
}

// WallElement is a vertical wall extruded from the segment Start-End. The wall
// rises from Start.Z to Start.Z+Height. Immutable once built; a wall belongs
// to exactly one RoomModel.
type WallElement struct {
	ID        string
	Start     Point3D
	End       Point3D
	Height    float64
	Thickness float64
	Material  WallMaterial
}

// LengthM returns the wall's horizontal length.
func (w *WallElement) LengthM() float64 {
	return w.Start.DistanceTo2D(w.End)
}

// OpeningKind distinguishes doors and windows, which leak signal through an
// otherwise attenuating wall.
type OpeningKind int

const (
	OpeningDoor OpeningKind = iota
	OpeningWindow
	OpeningPassage
)

// Residual attenuation when a line passes through the opening footprint
// instead of the solid wall. A passage (archway, missing wall section) is
// free space.
var openingAttenuationDb = []DbValue{
	OpeningDoor:    2.0,
	OpeningWindow:  3.0,
	OpeningPassage: 0.0,
}

func (k OpeningKind) AttenuationDb() DbValue {
	if k < 0 || int(k) >= len(openingAttenuationDb) {
		return 0
	}
	return openingAttenuationDb[k]
}

func (k OpeningKind) String() string {
	switch k {
	case OpeningDoor:
		return "door"
	case OpeningWindow:
		return "window"
	case OpeningPassage:
		return "passage"
	}
	return "unknown"
}

func ParseOpeningKind(s string) (OpeningKind, bool) {
	switch s {
	case "door":
		return OpeningDoor, true
	case "window":
		return OpeningWindow, true
	case "passage":
		return OpeningPassage, true
	}
	return OpeningDoor, false
}

// Opening is a door or window cut into one wall. Its footprint spans
// [AlongM, AlongM+WidthM] measured from the wall's Start, and vertically
// [SillM, SillM+HeightM] above the wall base.
type Opening struct {
	ID      string
	WallID  string
	Kind    OpeningKind
	AlongM  float64
	WidthM  float64
	SillM   float64
	HeightM float64
}

// FurnitureKind influences both RF visibility and placement suitability.
type FurnitureKind int

const (
	FurnitureTable FurnitureKind = iota
	FurnitureDesk
	FurnitureShelf
	FurnitureCabinet
	FurnitureSofa
	FurnitureBed
	FurnitureChair
	FurnitureTvStand
	FurnitureAppliance
	FurnitureOther
)

var furnitureNames = []string{
	"table", "desk", "shelf", "cabinet", "sofa", "bed", "chair", "tvstand", "appliance", "other",
}

func (k FurnitureKind) String() string {
	if k < 0 || int(k) >= len(furnitureNames) {
		return "other"
	}
	return furnitureNames[k]
}

// ParseFurnitureKind parses a furniture kind name from scenario files.
func ParseFurnitureKind(s string) (FurnitureKind, bool) {
	for i, n := range furnitureNames {
		if n == s {
			return FurnitureKind(i), true
		}
	}
	return FurnitureOther, false
}

// SupportsPlacement reports whether a transmitter may sit on this kind of
// furniture. Soft seating and beds are excluded: devices placed there get
// moved, blocked or knocked off.
func (k FurnitureKind) SupportsPlacement() bool {
	switch k {
	case FurnitureTable, FurnitureDesk, FurnitureShelf, FurnitureCabinet:
		return true
	}
	return false
}

// EmitsInterference reports whether the furniture kind typically hosts
// electronics that degrade a nearby transmitter.
func (k FurnitureKind) EmitsInterference() bool {
	return k == FurnitureTvStand || k == FurnitureAppliance
}

// FurnitureItem is a detected furniture volume. Confidence is inherited from
// the upstream geometry pipeline and never recomputed here.
type FurnitureItem struct {
	ID                string
	Kind              FurnitureKind
	Bounds            BoundingBox
	PlacementSurfaces []Point3D
	Confidence        float64
}

// FloorPlan is the usable floor footprint of a room.
type FloorPlan struct {
	Bounds BoundingBox
	AreaM2 float64
}

// RoomModel is the full geometric description of one scanned room. It is
// constructed once per scan and read-only thereafter, so it may be shared
// across goroutines without locking.
type RoomModel struct {
	ID        string
	Name      string
	Bounds    BoundingBox
	Walls     []WallElement
	Furniture []FurnitureItem
	Openings  []Opening
	FloorPlan FloorPlan
}

// NewRoomModel derives the floor plan from the bounds and returns the model.
func NewRoomModel(id, name string, bounds BoundingBox, walls []WallElement, furniture []FurnitureItem, openings []Opening) *RoomModel {
	return &RoomModel{
		ID:        id,
		Name:      name,
		Bounds:    bounds,
		Walls:     walls,
		Furniture: furniture,
		Openings:  openings,
		FloorPlan: FloorPlan{Bounds: bounds, AreaM2: bounds.FloorArea()},
	}
}

// IsDegenerate reports whether the room has no usable floor area. Degenerate
// rooms still get best-effort predictions, at reduced confidence.
func (r *RoomModel) IsDegenerate() bool {
	return r == nil || r.Bounds.IsDegenerate()
}

// WallCrossing records one wall pierced by a transmitter-to-target segment.
type WallCrossing struct {
	Wall   *WallElement
	Point  Point3D // where the segment pierces the wall plane
	AlongM float64 // distance of the pierce point from the wall's Start
}

// CrossedWalls casts the segment a-b against every wall and returns the walls
// it pierces. The test runs in the horizontal plane; a wall whose vertical
// extent does not reach the segment's height at the crossing is skipped.
func (r *RoomModel) CrossedWalls(a, b Point3D) []WallCrossing {
	if r == nil {
		return nil
	}
	var crossings []WallCrossing
	for i := range r.Walls {
		w := &r.Walls[i]
		t, u, ok := SegmentIntersection2D(a, b, w.Start, w.End)
		if !ok {
			continue
		}
		pierce := lerp3D(a, b, t)
		if w.Height > 0 && (pierce.Z < w.Start.Z || pierce.Z > w.Start.Z+w.Height) {
			continue // segment passes under or over the wall
		}
		crossings = append(crossings, WallCrossing{
			Wall:   w,
			Point:  pierce,
			AlongM: u * w.LengthM(),
		})
	}
	return crossings
}

// CrossingAttenuationDb returns the attenuation for one wall crossing, taking
// openings into account: a line through a door or window footprint pays the
// opening's residual loss instead of the wall material's.
func (r *RoomModel) CrossingAttenuationDb(c WallCrossing) DbValue {
	for i := range r.Openings {
		o := &r.Openings[i]
		if o.WallID != c.Wall.ID {
			continue
		}
		if c.AlongM < o.AlongM || c.AlongM > o.AlongM+o.WidthM {
			continue
		}
		zAbove := c.Point.Z - c.Wall.Start.Z
		if zAbove < o.SillM || zAbove > o.SillM+o.HeightM {
			continue
		}
		return o.Kind.AttenuationDb()
	}
	return c.Wall.Material.AttenuationDb()
}

// ObstructionLossDb sums the attenuation of every wall the segment a-b
// crosses and also reports the number of crossings.
func (r *RoomModel) ObstructionLossDb(a, b Point3D) (DbValue, int) {
	crossings := r.CrossedWalls(a, b)
	loss := DbValue(0)
	for _, c := range crossings {
		loss += r.CrossingAttenuationDb(c)
	}
	return loss, len(crossings)
}

// MinWallDistance2D returns the horizontal distance from p to the nearest
// wall segment, or a large value when the room has no walls.
func (r *RoomModel) MinWallDistance2D(p Point3D) float64 {
	const far = 1e9
	if r == nil || len(r.Walls) == 0 {
		return far
	}
	min := far
	for i := range r.Walls {
		w := &r.Walls[i]
		if d := PointToSegmentDistance2D(p, w.Start, w.End); d < min {
			min = d
		}
	}
	return min
}
