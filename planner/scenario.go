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
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wiplan/wiplan/geom"
	"github.com/wiplan/wiplan/logger"
	"github.com/wiplan/wiplan/propagation"
	. "github.com/wiplan/wiplan/types"
)

// Scenario file schema. Geometry normally comes from the external scan
// pipeline; the YAML form exists for planning without a scan and for tests.

type vec3 [3]float64

func (v vec3) point() Point3D { return Point3D{X: v[0], Y: v[1], Z: v[2]} }

type scenarioWall struct {
	ID        string  `yaml:"id"`
	Start     vec3    `yaml:"start"`
	End       vec3    `yaml:"end"`
	Height    float64 `yaml:"height"`
	Thickness float64 `yaml:"thickness"`
	Material  string  `yaml:"material"`
}

type scenarioOpening struct {
	ID     string  `yaml:"id"`
	Wall   string  `yaml:"wall"`
	Kind   string  `yaml:"kind"`
	Along  float64 `yaml:"along"`
	Width  float64 `yaml:"width"`
	Sill   float64 `yaml:"sill"`
	Height float64 `yaml:"height"`
}

type scenarioFurniture struct {
	ID         string  `yaml:"id"`
	Kind       string  `yaml:"kind"`
	Min        vec3    `yaml:"min"`
	Max        vec3    `yaml:"max"`
	Surfaces   []vec3  `yaml:"surfaces"`
	Confidence float64 `yaml:"confidence"`
}

type scenarioRoom struct {
	ID        string              `yaml:"id"`
	Name      string              `yaml:"name"`
	Min       vec3                `yaml:"min"`
	Max       vec3                `yaml:"max"`
	Walls     []scenarioWall      `yaml:"walls"`
	Openings  []scenarioOpening   `yaml:"openings"`
	Furniture []scenarioFurniture `yaml:"furniture"`
}

type scenarioRouter struct {
	ID       string `yaml:"id"`
	Position vec3   `yaml:"position"`
	Model    string `yaml:"model"`
}

// scenarioDevice extends the built-in catalog. Power and gain are maps keyed
// by band name; a band missing from tx is unsupported.
type scenarioDevice struct {
	Model        string             `yaml:"model"`
	Manufacturer string             `yaml:"manufacturer"`
	Tx           map[string]DbValue `yaml:"tx"`
	Gain         map[string]DbValue `yaml:"gain"`
	Standards    []string           `yaml:"standards"`
	Extender     bool               `yaml:"extender"`
}

type scenarioFile struct {
	Room    *scenarioRoom    `yaml:"room"`
	Devices []scenarioDevice `yaml:"devices"`
	Routers []scenarioRouter `yaml:"routers"`
}

// LoadScenario reads a YAML scenario file and installs its room and routers
// into the session, replacing the current setup.
func (p *Planner) LoadScenario(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return errors.Wrapf(err, "reading scenario %s", fn)
	}

	var sc scenarioFile
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return errors.Wrapf(err, "parsing scenario %s", fn)
	}
	if sc.Room == nil {
		return errors.Errorf("scenario %s has no room", fn)
	}

	room, err := buildRoom(sc.Room)
	if err != nil {
		return errors.Wrapf(err, "scenario %s", fn)
	}

	p.SetRoom(room)
	p.mu.Lock()
	p.routers = nil
	p.mu.Unlock()
	for _, d := range sc.Devices {
		spec, err := buildDevice(&d)
		if err != nil {
			return errors.Wrapf(err, "scenario %s", fn)
		}
		if err := p.AddDeviceSpec(spec); err != nil {
			return errors.Wrapf(err, "scenario %s", fn)
		}
	}
	for _, r := range sc.Routers {
		if _, err := p.AddRouter(r.ID, r.Position.point(), r.Model); err != nil {
			return errors.Wrapf(err, "scenario %s", fn)
		}
	}
	logger.Infof("loaded scenario %s: %d walls, %d furniture, %d devices, %d routers",
		fn, len(room.Walls), len(room.Furniture), len(sc.Devices), len(sc.Routers))
	return nil
}

func buildDevice(sd *scenarioDevice) (*propagation.DeviceSpec, error) {
	if sd.Model == "" {
		return nil, errors.New("device without model name")
	}
	spec := &propagation.DeviceSpec{
		Model:        sd.Model,
		Manufacturer: sd.Manufacturer,
		Standards:    sd.Standards,
		IsExtender:   sd.Extender,
	}
	for b := range spec.TxPowerDbm {
		spec.TxPowerDbm[b] = UndefinedDbValue
	}
	for name, dbm := range sd.Tx {
		band, ok := ParseBand(name)
		if !ok {
			return nil, errors.Errorf("device %q: unknown band %q", sd.Model, name)
		}
		spec.TxPowerDbm[band] = dbm
	}
	for name, dbi := range sd.Gain {
		band, ok := ParseBand(name)
		if !ok {
			return nil, errors.Errorf("device %q: unknown band %q", sd.Model, name)
		}
		spec.AntennaGainDbi[band] = dbi
	}
	if len(spec.SupportedBands()) == 0 {
		return nil, errors.Errorf("device %q supports no band", sd.Model)
	}
	return spec, nil
}

func buildRoom(sr *scenarioRoom) (*geom.RoomModel, error) {
	walls := make([]geom.WallElement, 0, len(sr.Walls))
	for _, w := range sr.Walls {
		mat, ok := geom.ParseWallMaterial(w.Material)
		if !ok {
			return nil, errors.Errorf("wall %q: unknown material %q", w.ID, w.Material)
		}
		walls = append(walls, geom.WallElement{
			ID:        w.ID,
			Start:     w.Start.point(),
			End:       w.End.point(),
			Height:    w.Height,
			Thickness: w.Thickness,
			Material:  mat,
		})
	}

	openings := make([]geom.Opening, 0, len(sr.Openings))
	for _, o := range sr.Openings {
		kind, ok := geom.ParseOpeningKind(o.Kind)
		if !ok {
			return nil, errors.Errorf("opening %q: unknown kind %q", o.ID, o.Kind)
		}
		openings = append(openings, geom.Opening{
			ID:      o.ID,
			WallID:  o.Wall,
			Kind:    kind,
			AlongM:  o.Along,
			WidthM:  o.Width,
			SillM:   o.Sill,
			HeightM: o.Height,
		})
	}

	furniture := make([]geom.FurnitureItem, 0, len(sr.Furniture))
	for _, f := range sr.Furniture {
		kind, ok := geom.ParseFurnitureKind(f.Kind)
		if !ok {
			return nil, errors.Errorf("furniture %q: unknown kind %q", f.ID, f.Kind)
		}
		surfaces := make([]Point3D, 0, len(f.Surfaces))
		for _, s := range f.Surfaces {
			surfaces = append(surfaces, s.point())
		}
		furniture = append(furniture, geom.FurnitureItem{
			ID:                f.ID,
			Kind:              kind,
			Bounds:            geom.NewBoundingBox(f.Min.point(), f.Max.point()),
			PlacementSurfaces: surfaces,
			Confidence:        f.Confidence,
		})
	}

	bounds := geom.NewBoundingBox(sr.Min.point(), sr.Max.point())
	room := geom.NewRoomModel(sr.ID, sr.Name, bounds, walls, furniture, openings)
	if room.IsDegenerate() {
		logger.Warnf("room %q has degenerate bounds, predictions will be low-confidence", sr.Name)
	}
	return room, nil
}

type measurementRecord struct {
	Location   vec3      `yaml:"location"`
	Timestamp  time.Time `yaml:"timestamp"`
	Rssi       DbValue   `yaml:"rssi"`
	Network    string    `yaml:"network"`
	Throughput float64   `yaml:"throughput"`
	Band       string    `yaml:"band"`
}

type measurementFile struct {
	Measurements []measurementRecord `yaml:"measurements"`
}

// LoadMeasurements reads a YAML survey file into measurement records for
// validation. Unknown bands default to 2.4 GHz with a warning.
func LoadMeasurements(fn string) ([]WiFiMeasurement, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "reading measurements %s", fn)
	}
	var mf measurementFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, errors.Wrapf(err, "parsing measurements %s", fn)
	}

	out := make([]WiFiMeasurement, 0, len(mf.Measurements))
	for i, r := range mf.Measurements {
		band, ok := ParseBand(r.Band)
		if !ok && r.Band != "" {
			logger.Warnf("measurement %d: unknown band %q, assuming 2.4GHz", i, r.Band)
		}
		out = append(out, WiFiMeasurement{
			Location:          r.Location.point(),
			Timestamp:         r.Timestamp,
			SignalStrengthDbm: r.Rssi,
			NetworkName:       r.Network,
			ThroughputMbps:    r.Throughput,
			Band:              band,
		})
	}
	return out, nil
}
