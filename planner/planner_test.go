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

package planner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wiplan/wiplan/geom"
	"github.com/wiplan/wiplan/progctx"
	. "github.com/wiplan/wiplan/types"
)

const testScenario = `
room:
  id: living
  name: Living Room
  min: [0, 0, 0]
  max: [8, 6, 2.5]
  walls:
    - id: w1
      start: [4, 0, 0]
      end: [4, 6, 0]
      height: 2.5
      thickness: 0.12
      material: drywall
  openings:
    - id: d1
      wall: w1
      kind: door
      along: 2.0
      width: 0.9
      sill: 0
      height: 2.0
  furniture:
    - id: desk1
      kind: desk
      min: [1, 1, 0]
      max: [2.2, 1.6, 0.75]
      surfaces:
        - [1.6, 1.3, 0.75]
      confidence: 0.9
devices:
  - model: ACME-X1
    manufacturer: Acme
    tx: {"2.4GHz": 19, "5GHz": 22}
    gain: {"2.4GHz": 2, "5GHz": 3}
    standards: [802.11ax]
routers:
  - id: main
    position: [2, 3, 1.5]
    model: WP-AX3000
  - id: aux
    position: [6, 4, 1.2]
    model: ACME-X1
`

const testMeasurements = `
measurements:
  - location: [3, 3, 1]
    rssi: -52
    network: home
    band: 5GHz
  - location: [6, 3, 1]
    rssi: -64
    network: home
    band: bogus
`

func newTestPlanner(t *testing.T) *Planner {
	t.Helper()
	return NewPlanner(progctx.New(nil), DefaultConfig())
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(fn, []byte(content), 0644))
	return fn
}

func TestLoadScenario(t *testing.T) {
	p := newTestPlanner(t)
	err := p.LoadScenario(writeTemp(t, "scenario.yaml", testScenario))
	assert.NoError(t, err)

	room := p.Room()
	assert.NotNil(t, room)
	assert.Equal(t, "living", room.ID)
	assert.Equal(t, "Living Room", room.Name)
	assert.InDelta(t, 48.0, room.Bounds.FloorArea(), 1e-9)
	assert.Len(t, room.Walls, 1)
	assert.Equal(t, geom.MaterialDrywall, room.Walls[0].Material)
	assert.Len(t, room.Openings, 1)
	assert.Equal(t, geom.OpeningDoor, room.Openings[0].Kind)
	assert.Len(t, room.Furniture, 1)
	assert.Equal(t, geom.FurnitureDesk, room.Furniture[0].Kind)

	routers := p.Routers()
	assert.Len(t, routers, 2)
	assert.Equal(t, "main", routers[0].ID)
	assert.Equal(t, "WP-AX3000", routers[0].Device.Model)
	assert.Equal(t, Point3D{X: 2, Y: 3, Z: 1.5}, routers[0].Position)

	// the scenario's custom device joined the catalog and backs the second router
	assert.Equal(t, "ACME-X1", routers[1].Device.Model)
	assert.Equal(t, 22.0, routers[1].Device.TxPowerDbm[Band5GHz])
	assert.False(t, routers[1].Device.SupportsBand(Band6GHz))

	// reloading the same scenario is idempotent
	assert.NoError(t, p.LoadScenario(writeTemp(t, "scenario2.yaml", testScenario)))
	assert.Len(t, p.Routers(), 2)
}

func TestLoadScenarioErrors(t *testing.T) {
	p := newTestPlanner(t)

	assert.Error(t, p.LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, p.LoadScenario(writeTemp(t, "bad.yaml", "room: [not a map")))
	assert.Error(t, p.LoadScenario(writeTemp(t, "noroom.yaml", "routers: []")))

	badMaterial := `
room:
  id: r
  name: r
  min: [0, 0, 0]
  max: [4, 4, 2.5]
  walls:
    - id: w1
      start: [1, 0, 0]
      end: [1, 4, 0]
      height: 2.5
      thickness: 0.1
      material: adamantium
`
	err := p.LoadScenario(writeTemp(t, "badmat.yaml", badMaterial))
	assert.ErrorContains(t, err, "unknown material")

	badDevice := `
room:
  id: r
  name: r
  min: [0, 0, 0]
  max: [4, 4, 2.5]
devices:
  - model: X9
    tx: {"900MHz": 20}
`
	err = p.LoadScenario(writeTemp(t, "baddev.yaml", badDevice))
	assert.ErrorContains(t, err, "unknown band")

	noBands := `
room:
  id: r
  name: r
  min: [0, 0, 0]
  max: [4, 4, 2.5]
devices:
  - model: X9
`
	err = p.LoadScenario(writeTemp(t, "nobands.yaml", noBands))
	assert.ErrorContains(t, err, "supports no band")
}

// A scenario named in the config is loaded as part of session setup.
func TestConfigScenarioFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScenarioFile = writeTemp(t, "scenario.yaml", testScenario)

	p := NewPlanner(progctx.New(nil), cfg)
	assert.NotNil(t, p.Room())
	assert.Len(t, p.Routers(), 2)
}

func TestCorrelationToggle(t *testing.T) {
	now := time.Now()
	loc := Point3D{X: 1, Y: 1, Z: 1}
	ms := []WiFiMeasurement{{Location: loc, Timestamp: now, SignalStrengthDbm: -50, Band: Band5GHz}}
	state := ControllerState{
		Device: "ctrl", Band: Band5GHz, SignalStrengthDbm: -50, Timestamp: now, Location: &loc,
	}

	p := newTestPlanner(t)
	assert.Len(t, p.Correlate(ms, state), 1, "correlation is on by default")

	cfg := DefaultConfig()
	cfg.Correlation = false
	off := NewPlanner(progctx.New(nil), cfg)
	assert.Nil(t, off.Correlate(ms, state))
}

// Two sessions with the same seed and fading sigma must agree on every
// prediction.
func TestRandomSeedReproducible(t *testing.T) {
	predict := func() DbValue {
		cfg := DefaultConfig()
		cfg.RandomSeed = 42
		cfg.ShadowSigmaDb = 4
		p := NewPlanner(progctx.New(nil), cfg)
		assert.NoError(t, p.LoadScenario(writeTemp(t, "scenario.yaml", testScenario)))
		pred := p.PredictAt(Point3D{X: 6, Y: 2, Z: 1})
		assert.NotNil(t, pred)
		return pred.BestRssiDbm
	}
	assert.Equal(t, predict(), predict())
}

func TestAddRemoveRouter(t *testing.T) {
	p := newTestPlanner(t)

	r, err := p.AddRouter("a", Point3D{X: 1, Y: 1, Z: 1.5}, "")
	assert.NoError(t, err)
	assert.NotNil(t, r.Device)

	_, err = p.AddRouter("a", Point3D{X: 2, Y: 2, Z: 1.5}, "")
	assert.ErrorContains(t, err, "already exists")

	_, err = p.AddRouter("b", Point3D{}, "no-such-model")
	assert.ErrorContains(t, err, "unknown device model")

	assert.NoError(t, p.RemoveRouter("a"))
	assert.ErrorContains(t, p.RemoveRouter("a"), "no router")
	assert.Empty(t, p.Routers())
}

func TestPredictAt(t *testing.T) {
	p := newTestPlanner(t)
	assert.Nil(t, p.PredictAt(Point3D{X: 1, Y: 1, Z: 1}), "no routers configured")

	assert.NoError(t, p.LoadScenario(writeTemp(t, "scenario.yaml", testScenario)))
	far, err := p.AddRouter("corner", Point3D{X: 7.5, Y: 5.5, Z: 1.5}, "")
	assert.NoError(t, err)
	assert.NotNil(t, far)

	// next to the main router its prediction wins
	pred := p.PredictAt(Point3D{X: 2, Y: 3.2, Z: 1.5})
	assert.NotNil(t, pred)
	assert.Equal(t, SignalExcellent, pred.Quality)

	solo := p.Model().Predict(p.Routers()[0], Point3D{X: 2, Y: 3.2, Z: 1.5}, p.Room())
	assert.Equal(t, solo.BestRssiDbm, pred.BestRssiDbm)
}

func TestGenerateCoverageAndReport(t *testing.T) {
	p := newTestPlanner(t)
	assert.NoError(t, p.LoadScenario(writeTemp(t, "scenario.yaml", testScenario)))

	m, err := p.GenerateCoverage(0, nil)
	assert.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, m, p.LastCoverage())

	fn := filepath.Join(t.TempDir(), "report.json")
	assert.NoError(t, p.SaveReport(fn))

	data, err := os.ReadFile(fn)
	assert.NoError(t, err)
	var rep Report
	assert.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, "living", rep.RoomID)
	assert.Len(t, rep.Routers, 2)
	assert.NotNil(t, rep.Stats)
	assert.InDelta(t, m.Stats.CoveragePercentage, rep.Stats.CoveragePercentage, 1e-9)

	// a coverage map always yields a quality verdict
	assert.NotNil(t, rep.MeetsRequirements)
}

func TestSaveReportNoRoom(t *testing.T) {
	p := newTestPlanner(t)
	assert.ErrorContains(t, p.SaveReport("x.json"), "no room")
}

func TestLoadMeasurements(t *testing.T) {
	ms, err := LoadMeasurements(writeTemp(t, "survey.yaml", testMeasurements))
	assert.NoError(t, err)
	assert.Len(t, ms, 2)
	assert.Equal(t, -52.0, ms[0].SignalStrengthDbm)
	assert.Equal(t, Band5GHz, ms[0].Band)
	// unknown band names fall back to 2.4 GHz
	assert.Equal(t, Band2GHz, ms[1].Band)

	_, err = LoadMeasurements(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateIntegration(t *testing.T) {
	p := newTestPlanner(t)
	assert.NoError(t, p.LoadScenario(writeTemp(t, "scenario.yaml", testScenario)))

	loc := Point3D{X: 3, Y: 3, Z: 1}
	pred := p.PredictAt(loc)
	assert.NotNil(t, pred)

	// measurements equal to the model's own prediction validate perfectly
	ms := []WiFiMeasurement{{Location: loc, SignalStrengthDbm: pred.BestRssiDbm, Band: Band5GHz}}
	res := p.Validate(ms)
	assert.Equal(t, 1, res.ValidationPoints)
	assert.InDelta(t, 1.0, res.Accuracy, 1e-9)
	assert.True(t, res.LowConfidence)
	assert.Len(t, p.Validator().History(), 1)
}

func TestOptimizePlacementSession(t *testing.T) {
	p := newTestPlanner(t)
	assert.NoError(t, p.LoadScenario(writeTemp(t, "scenario.yaml", testScenario)))

	recs, err := p.OptimizePlacement(2)
	assert.NoError(t, err)
	assert.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), 2)
}

func TestSetRoomInvalidatesCoverage(t *testing.T) {
	p := newTestPlanner(t)
	assert.NoError(t, p.LoadScenario(writeTemp(t, "scenario.yaml", testScenario)))

	_, err := p.GenerateCoverage(1.0, nil)
	assert.NoError(t, err)
	assert.NotNil(t, p.LastCoverage())

	p.SetRoom(p.Room())
	assert.Nil(t, p.LastCoverage())
}
