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

// Package placement searches candidate transmitter locations, scores them
// with the coverage engine plus practicality heuristics, and returns ranked
// recommendations. It also runs the iterative extender gap-filling search.
package placement

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/wiplan/wiplan/coverage"
	"github.com/wiplan/wiplan/geom"
	"github.com/wiplan/wiplan/logger"
	"github.com/wiplan/wiplan/observability"
	"github.com/wiplan/wiplan/propagation"
	. "github.com/wiplan/wiplan/types"
)

const (
	// candidate evaluation samples coverage on a sparse grid; full-resolution
	// maps are only generated for the final configuration by the caller.
	sparseResolutionM = 1.0

	idealInstallHeightM  = 1.5
	interferenceRadiusM  = 2.0
	scoreTieEpsilon      = 1e-6
	furniturePlacedBonus = 0.15
)

// ErrNoViableCandidates is returned when constraint filtering rejects every
// generated location. The wrapped message carries the caller-visible reason.
var ErrNoViableCandidates = errors.New("no viable placement candidates after constraint filtering")

// Evaluation carries the per-factor scores of one candidate. All factors are
// in [0,1]; higher is better except InterferenceRisk.
type Evaluation struct {
	CoverageQuality    float64 `json:"coverageQuality"`
	PracticalScore     float64 `json:"practicalScore"`
	InterferenceRisk   float64 `json:"interferenceRisk"`
	AccessibilityScore float64 `json:"accessibilityScore"`
	OverallScore       float64 `json:"overallScore"`
}

// RouterPlacementRecommendation is one ranked candidate location. It is a
// pure computed output; consumers never mutate it.
type RouterPlacementRecommendation struct {
	Position      Point3D         `json:"position"`
	Source        CandidateSource `json:"-"`
	SourceName    string          `json:"source"`
	Evaluation    Evaluation      `json:"evaluation"`
	Justification string          `json:"justification"`
}

// CoverageEvaluator is the slice of the coverage engine the optimizer needs.
// Tests substitute a call-counting stub here.
type CoverageEvaluator interface {
	Generate(ctx context.Context, routers []*propagation.RouterConfiguration, room *geom.RoomModel, resolutionM float64, progress coverage.ProgressFunc) (*coverage.Map, error)
}

// Optimizer runs placement searches. The result cache is owned by the
// instance, not global: construct one Optimizer per planning session and it
// lives as long as the session does. Safe for concurrent use; a cache-miss
// race computes twice and last writer wins.
type Optimizer struct {
	eval    CoverageEvaluator
	device  *propagation.DeviceSpec
	metrics *observability.Collector

	cacheMu sync.RWMutex
	cache   map[uint64][]RouterPlacementRecommendation
}

// NewOptimizer creates an optimizer evaluating candidates with the given
// coverage engine and synthetic device spec. Nil device selects the default
// router spec; metrics may be nil.
func NewOptimizer(eval CoverageEvaluator, device *propagation.DeviceSpec, metrics *observability.Collector) *Optimizer {
	if device == nil {
		device = propagation.DefaultRouterSpec()
	}
	return &Optimizer{
		eval:    eval,
		device:  device,
		metrics: metrics,
		cache:   make(map[uint64][]RouterPlacementRecommendation),
	}
}

// OptimizePrimaryPlacement generates, filters and scores candidate router
// locations, returning recommendations ranked by descending score. Results
// are cached per room identity + constraints; identical repeated calls do
// not re-invoke the coverage engine.
//
// Returns (nil, nil) when no room is configured. Returns
// ErrNoViableCandidates when filtering rejects every location.
func (o *Optimizer) OptimizePrimaryPlacement(ctx context.Context, room *geom.RoomModel, c Constraints) ([]RouterPlacementRecommendation, error) {
	if room == nil || room.IsDegenerate() {
		return nil, nil
	}
	c = c.withDefaults()

	key := o.cacheKey(room, c)
	o.cacheMu.RLock()
	cached, ok := o.cache[key]
	o.cacheMu.RUnlock()
	o.metrics.ObserveCacheHit(ok)
	if ok {
		return append([]RouterPlacementRecommendation(nil), cached...), nil
	}

	recs, err := o.optimizeUncached(ctx, room, c)
	if err != nil {
		return nil, err
	}

	o.cacheMu.Lock()
	o.cache[key] = recs
	o.cacheMu.Unlock()
	return append([]RouterPlacementRecommendation(nil), recs...), nil
}

func (o *Optimizer) optimizeUncached(ctx context.Context, room *geom.RoomModel, c Constraints) ([]RouterPlacementRecommendation, error) {
	candidates := generateCandidates(room, c)
	viable := candidates[:0]
	for _, cand := range candidates {
		if passesConstraints(cand, room, c) {
			viable = append(viable, cand)
		}
	}
	if len(viable) == 0 {
		return nil, errors.Wrapf(ErrNoViableCandidates,
			"room %s: %d generated candidates all rejected", room.ID, len(candidates))
	}
	logger.Debugf("placement: evaluating %d viable candidates in room %s", len(viable), room.ID)

	recs := make([]RouterPlacementRecommendation, 0, len(viable))
	for _, cand := range viable {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev, err := o.evaluateCandidate(ctx, cand, room, c)
		if err != nil {
			return nil, err
		}
		recs = append(recs, RouterPlacementRecommendation{
			Position:      cand.Position,
			Source:        cand.Source,
			SourceName:    cand.Source.String(),
			Evaluation:    ev,
			Justification: justify(cand, ev),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].Evaluation, recs[j].Evaluation
		if math.Abs(a.OverallScore-b.OverallScore) < scoreTieEpsilon {
			return a.InterferenceRisk < b.InterferenceRisk
		}
		return a.OverallScore > b.OverallScore
	})
	if len(recs) > c.MaxRecommendations {
		recs = recs[:c.MaxRecommendations]
	}
	return recs, nil
}

func (o *Optimizer) evaluateCandidate(ctx context.Context, cand Candidate, room *geom.RoomModel, c Constraints) (Evaluation, error) {
	router := &propagation.RouterConfiguration{
		ID:         "candidate",
		Position:   cand.Position,
		Device:     o.device,
		ElevationM: cand.Position.Z - room.Bounds.Min.Z,
	}
	covMap, err := o.eval.Generate(ctx, []*propagation.RouterConfiguration{router}, room, sparseResolutionM, nil)
	if err != nil {
		return Evaluation{}, err
	}

	ev := Evaluation{
		PracticalScore:     practicalScore(cand, room),
		InterferenceRisk:   interferenceRisk(cand.Position, room),
		AccessibilityScore: accessibilityScore(cand.Position.Z - room.Bounds.Min.Z),
	}
	if covMap != nil {
		ev.CoverageQuality = covMap.Stats.QualityScore
	}
	ev.OverallScore = c.Weights.Coverage*ev.CoverageQuality +
		c.Weights.Practical*ev.PracticalScore +
		c.Weights.Accessibility*ev.AccessibilityScore
	return ev, nil
}

// practicalScore penalizes extreme install heights and rewards furniture
// placement, which needs no drilling or mounting hardware.
func practicalScore(cand Candidate, room *geom.RoomModel) float64 {
	h := cand.Position.Z - room.Bounds.Min.Z
	score := 1.0 - 0.2*math.Abs(h-idealInstallHeightM)
	if cand.Source == SourceFurniture {
		score += furniturePlacedBonus
	}
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	return score
}

// interferenceRisk grows with nearby electronics and appliances.
func interferenceRisk(p Point3D, room *geom.RoomModel) float64 {
	risk := 0.0
	for i := range room.Furniture {
		f := &room.Furniture[i]
		if !f.Kind.EmitsInterference() {
			continue
		}
		if p.DistanceTo2D(f.Bounds.Center()) <= interferenceRadiusM {
			risk += 0.3
		}
	}
	if risk > 1 {
		risk = 1
	}
	return risk
}

// accessibilityScore is height-banded: arm's reach is ideal, ceiling mounts
// degrade, floor level is slightly awkward.
func accessibilityScore(heightM float64) float64 {
	switch {
	case heightM >= 0.5 && heightM <= 2.0:
		return 1.0
	case heightM > 2.0:
		s := 1.0 - 0.3*(heightM-2.0)
		if s < 0.2 {
			s = 0.2
		}
		return s
	default:
		return 0.8
	}
}

func justify(cand Candidate, ev Evaluation) string {
	where := "near the room center"
	switch cand.Source {
	case SourceElevated:
		where = "elevated in a corner"
	case SourceFurniture:
		where = fmt.Sprintf("on the %s", cand.Furniture.Kind)
	}
	s := fmt.Sprintf("Place the router %s at %.1f m height: predicted coverage quality %.0f%%, practicality %.0f%%.",
		where, cand.Position.Z, ev.CoverageQuality*100, ev.PracticalScore*100)
	if ev.InterferenceRisk > 0.3 {
		s += " Nearby electronics may cause interference; keep some distance if possible."
	}
	return s
}

// cacheKey hashes room identity and the effective constraints. Geometry is
// covered by the room ID plus cheap shape fingerprints, since a RoomModel is
// immutable once built.
func (o *Optimizer) cacheKey(room *geom.RoomModel, c Constraints) uint64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%v|%v|%d|%d|", room.ID, room.Bounds.Min, room.Bounds.Max, len(room.Walls), len(room.Furniture))
	_, _ = fmt.Fprintf(h, "%.3f|%.3f|%.3f|%t|%.3f|%d|%d|%d|%v|%s",
		c.MinHeightM, c.MaxHeightM, c.MinWallDistanceM, c.RequiresPowerOutlet, c.MaxOutletDistanceM,
		c.MaxExtenders, c.MaxRecommendations, c.Strategy, c.Weights, o.device.Model)
	return h.Sum64()
}

// InvalidateCache drops all cached recommendations, e.g. after the
// propagation model was recalibrated.
func (o *Optimizer) InvalidateCache() {
	o.cacheMu.Lock()
	o.cache = make(map[uint64][]RouterPlacementRecommendation)
	o.cacheMu.Unlock()
}
