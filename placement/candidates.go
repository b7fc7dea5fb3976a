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

package placement

import (
	"github.com/wiplan/wiplan/geom"
	. "github.com/wiplan/wiplan/types"
)

// candidate generation parameters
const (
	centralOffsetM       = 1.0  // lateral offsets around the room center
	centralHeightM       = 1.2  // default install height for central points
	cornerInsetM         = 0.5  // pull elevated corner points off the walls
	cornerHeightFraction = 0.75 // elevated points sit at this fraction of room height
)

// CandidateSource records how a candidate location was generated.
type CandidateSource int

const (
	SourceCentral CandidateSource = iota
	SourceElevated
	SourceFurniture
)

func (s CandidateSource) String() string {
	switch s {
	case SourceElevated:
		return "elevated"
	case SourceFurniture:
		return "furniture"
	default:
		return "central"
	}
}

// Candidate is a possible transmitter location before constraint filtering.
type Candidate struct {
	Position  Point3D
	Source    CandidateSource
	Furniture *geom.FurnitureItem // set for furniture-surface candidates
}

// generateCandidates enumerates central, elevated-corner and furniture-surface
// locations for the room. The unmodified room center is always emitted first,
// so a room too small for offset candidates still yields one location.
func generateCandidates(room *geom.RoomModel, c Constraints) []Candidate {
	var out []Candidate
	bounds := room.Bounds
	center := bounds.Center()

	// (a) central points: center plus small offsets, clipped to bounds
	centralZ := bounds.Min.Z + centralHeightM
	if centralZ > bounds.Max.Z {
		centralZ = center.Z
	}
	offsets := []Point3D{
		{},
		{X: centralOffsetM}, {X: -centralOffsetM},
		{Y: centralOffsetM}, {Y: -centralOffsetM},
	}
	for _, off := range offsets {
		p := Point3D{X: center.X + off.X, Y: center.Y + off.Y, Z: centralZ}
		if !bounds.Contains2D(p) {
			continue
		}
		out = append(out, Candidate{Position: p, Source: SourceCentral})
	}

	// (b) elevated corner points at a fraction of room height
	elevZ := bounds.Min.Z + cornerHeightFraction*bounds.Size().Z
	if elevZ > c.MaxHeightM {
		elevZ = c.MaxHeightM
	}
	corners := []Point3D{
		{X: bounds.Min.X + cornerInsetM, Y: bounds.Min.Y + cornerInsetM},
		{X: bounds.Max.X - cornerInsetM, Y: bounds.Min.Y + cornerInsetM},
		{X: bounds.Min.X + cornerInsetM, Y: bounds.Max.Y - cornerInsetM},
		{X: bounds.Max.X - cornerInsetM, Y: bounds.Max.Y - cornerInsetM},
	}
	for _, p := range corners {
		p.Z = elevZ
		if !bounds.Contains2D(p) {
			continue
		}
		out = append(out, Candidate{Position: p, Source: SourceElevated})
	}

	// (c) placement surfaces of suitable furniture within the height window
	for i := range room.Furniture {
		f := &room.Furniture[i]
		if !f.Kind.SupportsPlacement() {
			continue
		}
		for _, surf := range f.PlacementSurfaces {
			h := surf.Z - bounds.Min.Z
			if h < c.MinHeightM || h > c.MaxHeightM {
				continue
			}
			out = append(out, Candidate{Position: surf, Source: SourceFurniture, Furniture: f})
		}
	}
	return out
}

// passesConstraints applies the physical installation filters. All must pass.
func passesConstraints(cand Candidate, room *geom.RoomModel, c Constraints) bool {
	h := cand.Position.Z - room.Bounds.Min.Z
	if h < c.MinHeightM || h > c.MaxHeightM {
		return false
	}
	wallDist := room.MinWallDistance2D(cand.Position)
	if wallDist < c.MinWallDistanceM {
		return false
	}
	// power outlets live along walls; proximity to a wall proxies outlet reach
	if c.RequiresPowerOutlet && len(room.Walls) > 0 && wallDist > c.MaxOutletDistanceM {
		return false
	}
	if c.InternetAccess != nil && !c.InternetAccess.HasInternetAccess(cand.Position) {
		return false
	}
	return true
}
