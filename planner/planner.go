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

// Package planner ties the geometry, propagation, coverage, placement and
// calibration engines together into one planning session.
package planner

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/wiplan/wiplan/calibration"
	"github.com/wiplan/wiplan/correlate"
	"github.com/wiplan/wiplan/coverage"
	"github.com/wiplan/wiplan/geom"
	"github.com/wiplan/wiplan/logger"
	"github.com/wiplan/wiplan/placement"
	"github.com/wiplan/wiplan/prng"
	"github.com/wiplan/wiplan/progctx"
	"github.com/wiplan/wiplan/propagation"
	. "github.com/wiplan/wiplan/types"
)

// Planner is one planning session: a room, its transmitters, and the engines
// that evaluate them. Methods are safe for concurrent use.
type Planner struct {
	ctx *progctx.ProgCtx
	cfg *Config

	mu      sync.RWMutex
	room    *geom.RoomModel
	routers []*propagation.RouterConfiguration
	catalog []*propagation.DeviceSpec

	model      *propagation.Model
	covGen     *coverage.Generator
	optimizer  *placement.Optimizer
	validator  *calibration.Validator
	correlator *correlate.Correlator

	lastCoverage *coverage.Map
}

func NewPlanner(ctx *progctx.ProgCtx, cfg *Config) *Planner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	prng.Init(cfg.RandomSeed)

	params := propagation.NewModelParams(cfg.Profile)
	params.ShadowFadingSigmaDb = cfg.ShadowSigmaDb

	p := &Planner{
		ctx:     ctx,
		cfg:     cfg,
		catalog: propagation.DefaultCatalog(),
		model:   propagation.NewModel(params),
	}
	p.covGen = coverage.NewGenerator(p.model, cfg.Metrics)
	p.optimizer = placement.NewOptimizer(p.covGen, propagation.DefaultRouterSpec(), cfg.Metrics)
	p.validator = calibration.NewValidator(p)
	if cfg.Correlation {
		p.correlator = correlate.NewCorrelator(correlate.DefaultTolerances())
	}
	p.validator.Subscribe(func(ev calibration.RecalibrationEvent) {
		logger.Infof("planner: recalibration requested after %d points (mean error %.1f dB)",
			ev.PointCount, ev.MeanErrorDb)
	})
	if cfg.ScenarioFile != "" {
		if err := p.LoadScenario(cfg.ScenarioFile); err != nil {
			logger.Errorf("planner: scenario %s: %v", cfg.ScenarioFile, err)
		}
	}
	return p
}

// SetRoom installs (or replaces) the room model. Cached placement and
// coverage results of the previous room are discarded.
func (p *Planner) SetRoom(room *geom.RoomModel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.room = room
	p.lastCoverage = nil
	p.optimizer.InvalidateCache()
	if room != nil {
		logger.Infof("planner: room %q set, floor area %.1f m2", room.Name, room.Bounds.FloorArea())
	}
}

func (p *Planner) Room() *geom.RoomModel {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.room
}

// Catalog returns the known device specs.
func (p *Planner) Catalog() []*propagation.DeviceSpec {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*propagation.DeviceSpec(nil), p.catalog...)
}

// AddDeviceSpec extends the device catalog with a custom spec. A spec with
// a known model name replaces the existing entry, so reloading a scenario
// is idempotent.
func (p *Planner) AddDeviceSpec(spec *propagation.DeviceSpec) error {
	if spec == nil || spec.Model == "" {
		return errors.New("device spec must name a model")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, d := range p.catalog {
		if d.Model == spec.Model {
			p.catalog[i] = spec
			return nil
		}
	}
	p.catalog = append(p.catalog, spec)
	return nil
}

// AddRouter places a transmitter. An empty model string selects the default
// router device; duplicate ids are rejected.
func (p *Planner) AddRouter(id string, pos Point3D, model string) (*propagation.RouterConfiguration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, r := range p.routers {
		if r.ID == id {
			return nil, errors.Errorf("router %q already exists", id)
		}
	}
	dev := propagation.DefaultRouterSpec()
	if model != "" {
		if dev = propagation.FindDevice(p.catalog, model); dev == nil {
			return nil, errors.Errorf("unknown device model %q", model)
		}
	}
	r := &propagation.RouterConfiguration{ID: id, Position: pos, Device: dev}
	p.routers = append(p.routers, r)
	p.lastCoverage = nil
	return r, nil
}

// RemoveRouter deletes a transmitter by id.
func (p *Planner) RemoveRouter(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, r := range p.routers {
		if r.ID == id {
			p.routers = append(p.routers[:i], p.routers[i+1:]...)
			p.lastCoverage = nil
			return nil
		}
	}
	return errors.Errorf("no router %q", id)
}

// Routers returns the configured transmitters in insertion order.
func (p *Planner) Routers() []*propagation.RouterConfiguration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*propagation.RouterConfiguration(nil), p.routers...)
}

// PredictAt returns the best prediction at loc across all configured
// routers, or nil when none is configured. Implements
// calibration.PredictionSource.
func (p *Planner) PredictAt(loc Point3D) *propagation.SignalPrediction {
	p.mu.RLock()
	room := p.room
	routers := append([]*propagation.RouterConfiguration(nil), p.routers...)
	p.mu.RUnlock()

	var best *propagation.SignalPrediction
	for _, r := range routers {
		pred := p.model.Predict(r, loc, room)
		if pred == nil {
			continue
		}
		if best == nil || pred.BestRssiDbm > best.BestRssiDbm {
			best = pred
		}
	}
	return best
}

// GenerateCoverage samples the room grid at resolutionM (0 selects the
// default) and retains the map for reporting. Returns (nil, nil) until both
// a room and at least one router are configured.
func (p *Planner) GenerateCoverage(resolutionM float64, progress coverage.ProgressFunc) (*coverage.Map, error) {
	p.mu.RLock()
	room := p.room
	routers := append([]*propagation.RouterConfiguration(nil), p.routers...)
	p.mu.RUnlock()

	if resolutionM == 0 {
		resolutionM = p.cfg.GridResolutionM
	}
	m, err := p.covGen.Generate(p.ctx, routers, room, resolutionM, progress)
	if err != nil || m == nil {
		return m, err
	}

	p.mu.Lock()
	p.lastCoverage = m
	p.mu.Unlock()
	return m, nil
}

// LastCoverage returns the most recent coverage map, or nil.
func (p *Planner) LastCoverage() *coverage.Map {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastCoverage
}

// OptimizePlacement ranks primary-router locations for the current room
// under the session constraints. maxRecommendations 0 keeps the configured
// default.
func (p *Planner) OptimizePlacement(maxRecommendations int) ([]placement.RouterPlacementRecommendation, error) {
	p.mu.RLock()
	room := p.room
	c := p.cfg.Constraints
	p.mu.RUnlock()

	if maxRecommendations > 0 {
		c.MaxRecommendations = maxRecommendations
	}
	return p.optimizer.OptimizePrimaryPlacement(p.ctx, room, c)
}

// OptimizeExtenders searches extender placements that lift the current
// configuration to targetCoverage (0 keeps the configured quality
// requirements), honoring the session placement constraints.
func (p *Planner) OptimizeExtenders(targetCoverage float64) (*placement.ExtenderPlacementStrategy, error) {
	p.mu.RLock()
	room := p.room
	baseline := placement.NetworkConfiguration{
		Routers: append([]*propagation.RouterConfiguration(nil), p.routers...),
	}
	p.mu.RUnlock()

	quality := p.cfg.Quality
	if targetCoverage != 0 {
		quality.MinCoverage = targetCoverage
	}
	return p.optimizer.OptimizeExtenderPlacement(p.ctx, baseline, room, quality, p.cfg.Constraints)
}

// Validate compares field measurements against model predictions.
func (p *Planner) Validate(measurements []WiFiMeasurement) calibration.ValidationResults {
	return p.validator.Validate(measurements)
}

// Validator exposes the calibration state for inspection and subscriptions.
func (p *Planner) Validator() *calibration.Validator {
	return p.validator
}

// Correlate matches measurements against an external controller state.
// Returns nil when correlation is disabled in the session config.
func (p *Planner) Correlate(measurements []WiFiMeasurement, state ControllerState) []correlate.CorrelatedMeasurement {
	if p.correlator == nil {
		return nil
	}
	return p.correlator.Correlate(measurements, state)
}

// Model returns the propagation model backing this session.
func (p *Planner) Model() *propagation.Model {
	return p.model
}
