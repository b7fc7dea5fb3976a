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

package coverage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wiplan/wiplan/geom"
	"github.com/wiplan/wiplan/propagation"
	. "github.com/wiplan/wiplan/types"
)

func testRoom(w, d float64) *geom.RoomModel {
	bounds := geom.NewBoundingBox(Point3D{}, Point3D{X: w, Y: d, Z: 2.5})
	return geom.NewRoomModel("test", "Test Room", bounds, nil, nil, nil)
}

func powerRouter(id string, pos Point3D, txDbm DbValue) *propagation.RouterConfiguration {
	dev := &propagation.DeviceSpec{
		Model:      "test-ap",
		TxPowerDbm: [BandCount]DbValue{txDbm, txDbm, UndefinedDbValue},
	}
	return &propagation.RouterConfiguration{ID: id, Position: pos, Device: dev}
}

func TestGenerateGridDimensions(t *testing.T) {
	g := NewGenerator(propagation.NewModel(nil), nil)
	room := testRoom(5, 4)
	routers := []*propagation.RouterConfiguration{
		powerRouter("r1", Point3D{X: 2.5, Y: 2, Z: 1.5}, 100),
	}

	m, err := g.Generate(context.Background(), routers, room, 0.5, nil)
	assert.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, 10, m.Cols)
	assert.Equal(t, 8, m.Rows)
	assert.Equal(t, 80, m.Stats.TotalCells)
	assert.Equal(t, 80, len(m.Cells))

	// unrealistically high power and no walls: full coverage, and every cell
	// pinned at the RSSI ceiling means a perfectly uniform signal
	assert.Equal(t, 1.0, m.Stats.CoveragePercentage)
	assert.Equal(t, 1.0, m.Stats.Uniformity)
	assert.Equal(t, 0, len(m.DeadZones))
}

func TestGenerateUnconfigured(t *testing.T) {
	g := NewGenerator(propagation.NewModel(nil), nil)

	m, err := g.Generate(context.Background(), nil, testRoom(5, 4), 0.5, nil)
	assert.NoError(t, err)
	assert.Nil(t, m)

	m, err = g.Generate(context.Background(),
		[]*propagation.RouterConfiguration{powerRouter("r1", Point3D{}, 20)}, nil, 0.5, nil)
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestStatisticsBounds(t *testing.T) {
	g := NewGenerator(propagation.NewModel(nil), nil)
	room := testRoom(20, 20)
	routers := []*propagation.RouterConfiguration{
		powerRouter("weak", Point3D{X: 0.5, Y: 0.5, Z: 1.5}, -10),
	}

	m, err := g.Generate(context.Background(), routers, room, 1.0, nil)
	assert.NoError(t, err)
	assert.NotNil(t, m)

	assert.GreaterOrEqual(t, m.Stats.CoveragePercentage, 0.0)
	assert.LessOrEqual(t, m.Stats.CoveragePercentage, 1.0)
	assert.GreaterOrEqual(t, m.Stats.RedundancyPercentage, 0.0)
	assert.LessOrEqual(t, m.Stats.RedundancyPercentage, 1.0)
	assert.GreaterOrEqual(t, m.Stats.Uniformity, 0.0)
	assert.LessOrEqual(t, m.Stats.Uniformity, 1.0)
	assert.GreaterOrEqual(t, m.Stats.QualityScore, 0.0)
	assert.LessOrEqual(t, m.Stats.QualityScore, 1.0)

	// every below-threshold cell belongs to exactly one dead zone
	belowFair := 0
	for _, c := range m.Cells {
		if c.BestRssiDbm < RssiFairDbm {
			belowFair++
		}
	}
	zoneCells := 0
	for _, dz := range m.DeadZones {
		zoneCells += dz.Cells
		assert.GreaterOrEqual(t, dz.Severity, 0.0)
		assert.LessOrEqual(t, dz.Severity, 1.0)
	}
	assert.Equal(t, belowFair, zoneCells)
}

func TestRedundancy(t *testing.T) {
	g := NewGenerator(propagation.NewModel(nil), nil)
	room := testRoom(4, 4)
	routers := []*propagation.RouterConfiguration{
		powerRouter("r1", Point3D{X: 1, Y: 2, Z: 1.5}, 100),
		powerRouter("r2", Point3D{X: 3, Y: 2, Z: 1.5}, 100),
	}

	m, err := g.Generate(context.Background(), routers, room, 0.5, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, m.Stats.RedundancyPercentage,
		"two max-power routers cover every cell twice")
}

func TestGenerateCancellation(t *testing.T) {
	g := NewGenerator(propagation.NewModel(nil), nil)
	room := testRoom(5, 4)
	routers := []*propagation.RouterConfiguration{
		powerRouter("r1", Point3D{X: 2.5, Y: 2, Z: 1.5}, 20),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := g.Generate(ctx, routers, room, 0.5, nil)
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestGenerateProgress(t *testing.T) {
	g := NewGenerator(propagation.NewModel(nil), nil)
	room := testRoom(10, 10)
	routers := []*propagation.RouterConfiguration{
		powerRouter("r1", Point3D{X: 5, Y: 5, Z: 1.5}, 20),
	}

	var fractions []float64
	m, err := g.Generate(context.Background(), routers, room, 0.25, func(fraction float64) {
		fractions = append(fractions, fraction)
	})
	assert.NoError(t, err)
	assert.NotNil(t, m)
	assert.NotEmpty(t, fractions)
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}

func TestCellLookup(t *testing.T) {
	g := NewGenerator(propagation.NewModel(nil), nil)
	room := testRoom(5, 4)
	routers := []*propagation.RouterConfiguration{
		powerRouter("r1", Point3D{X: 2.5, Y: 2, Z: 1.5}, 20),
	}

	m, err := g.Generate(context.Background(), routers, room, 0.5, nil)
	assert.NoError(t, err)

	c := m.CellAt(0, 0)
	assert.NotNil(t, c)
	assert.InDelta(t, 0.25, c.Center.X, 1e-9)
	assert.InDelta(t, 0.25, c.Center.Y, 1e-9)
	assert.Nil(t, m.CellAt(-1, 0))
	assert.Nil(t, m.CellAt(10, 0))

	n := m.CellNear(Point3D{X: 2.6, Y: 2.1})
	assert.NotNil(t, n)
	assert.InDelta(t, 2.75, n.Center.X, 1e-9)

	// outside the mapped bounds there is no nearest cell
	assert.Nil(t, m.CellNear(Point3D{X: 99, Y: 99}))
	assert.Nil(t, m.CellNear(Point3D{X: -0.1, Y: 2}))
	assert.Nil(t, m.CellNear(Point3D{X: 2.5, Y: 4.01}))

	// the max edge still belongs to the last sampled cell
	edge := m.CellNear(Point3D{X: 5, Y: 4})
	assert.NotNil(t, edge)
	assert.InDelta(t, 4.75, edge.Center.X, 1e-9)
	assert.InDelta(t, 3.75, edge.Center.Y, 1e-9)
}
