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
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/wiplan/wiplan/coverage"
	"github.com/wiplan/wiplan/geom"
	"github.com/wiplan/wiplan/logger"
	"github.com/wiplan/wiplan/propagation"
	. "github.com/wiplan/wiplan/types"
)

// extender search parameters
const (
	// assumed coverage-fraction gain of one well-placed extender
	perExtenderGain = 0.15
	// every additional disjoint gap region adds this much to the estimate,
	// capped; scattered gaps need more hardware than one big gap
	gapComplexityStep = 0.25
	gapComplexityMax  = 2.0

	extenderInstallHeightM = 1.2
)

// NetworkConfiguration is the fixed baseline an extender search runs against.
type NetworkConfiguration struct {
	Routers []*propagation.RouterConfiguration
}

// GapAnalysis summarizes where the baseline misses the coverage target.
type GapAnalysis struct {
	BaselineCoverage    float64             `json:"baselineCoverage"`
	TargetCoverage      float64             `json:"targetCoverage"`
	CoverageGapFraction float64             `json:"coverageGap"`
	Zones               []coverage.DeadZone `json:"zones"`
}

// ExtenderRecommendation is one extender location addressing a specific gap.
type ExtenderRecommendation struct {
	Position      Point3D           `json:"position"`
	TargetZone    coverage.DeadZone `json:"targetZone"`
	Justification string            `json:"justification"`
}

// ExtenderPlacementStrategy is the full result of an extender search.
type ExtenderPlacementStrategy struct {
	Baseline          NetworkConfiguration     `json:"-"`
	Gap               GapAnalysis              `json:"gap"`
	RecommendedCount  int                      `json:"recommendedCount"`
	Extenders         []ExtenderRecommendation `json:"extenders"`
	ProjectedCoverage float64                  `json:"projectedCoverage"`
	RequirementsMet   bool                     `json:"requirementsMet"`
}

// OptimizeExtenderPlacement searches extender locations that close the gap
// between the baseline configuration's coverage and the quality requirements.
// Each iteration addresses the largest remaining dead zone, then coverage is
// recomputed with the new extender in place, until the requirements are met,
// the extender budget from c.MaxExtenders runs out, or no gaps remain.
// Zero-valued quality fields and constraints select the defaults.
//
// Returns (nil, nil) when the room or baseline is not configured.
func (o *Optimizer) OptimizeExtenderPlacement(ctx context.Context, baseline NetworkConfiguration, room *geom.RoomModel, quality QualityRequirements, c Constraints) (*ExtenderPlacementStrategy, error) {
	if room == nil || room.IsDegenerate() || len(baseline.Routers) == 0 {
		return nil, nil
	}
	quality = quality.withDefaults()
	c = c.withDefaults()

	baseMap, err := o.eval.Generate(ctx, baseline.Routers, room, sparseResolutionM, nil)
	if err != nil {
		return nil, err
	}
	if baseMap == nil {
		return nil, nil
	}

	gap := GapAnalysis{
		BaselineCoverage: baseMap.Stats.CoveragePercentage,
		TargetCoverage:   quality.MinCoverage,
		Zones:            baseMap.DeadZones,
	}
	gap.CoverageGapFraction = math.Max(0, quality.MinCoverage-gap.BaselineCoverage)

	strategy := &ExtenderPlacementStrategy{
		Baseline:          baseline,
		Gap:               gap,
		ProjectedCoverage: gap.BaselineCoverage,
		RequirementsMet:   quality.SatisfiedBy(&baseMap.Stats),
	}
	budget := o.estimateExtenderCount(gap, c.MaxExtenders)
	strategy.RecommendedCount = budget
	if budget == 0 || strategy.RequirementsMet {
		return strategy, nil
	}

	extSpec := propagation.DefaultExtenderSpec()
	active := append([]*propagation.RouterConfiguration(nil), baseline.Routers...)
	zones := append([]coverage.DeadZone(nil), gap.Zones...)
	curMap := baseMap

	for len(strategy.Extenders) < budget && len(zones) > 0 && !quality.SatisfiedBy(&curMap.Stats) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sort.SliceStable(zones, func(i, j int) bool {
			return float64(zones[i].Cells)*zones[i].Severity > float64(zones[j].Cells)*zones[j].Severity
		})
		zone := zones[0]

		pos := o.extenderPosition(zone, room)
		ext := &propagation.RouterConfiguration{
			ID:       fmt.Sprintf("extender-%d", len(strategy.Extenders)+1),
			Position: pos,
			Device:   extSpec,
		}
		active = append(active, ext)

		nextMap, err := o.eval.Generate(ctx, active, room, sparseResolutionM, nil)
		if err != nil {
			return nil, err
		}
		if nextMap == nil {
			break
		}

		strategy.Extenders = append(strategy.Extenders, ExtenderRecommendation{
			Position:   pos,
			TargetZone: zone,
			Justification: fmt.Sprintf(
				"Extender near (%.1f, %.1f) fills a %d-cell weak region; projected coverage %.0f%% -> %.0f%%.",
				pos.X, pos.Y, zone.Cells,
				curMap.Stats.CoveragePercentage*100, nextMap.Stats.CoveragePercentage*100),
		})

		// zones addressed by the new extender disappear from the recomputed map
		zones = append(zones[:0:0], nextMap.DeadZones...)
		curMap = nextMap
		strategy.ProjectedCoverage = nextMap.Stats.CoveragePercentage
	}

	strategy.RequirementsMet = quality.SatisfiedBy(&curMap.Stats)
	logger.Debugf("extender search: %d extenders, projected coverage %.2f (target %.2f, met=%v)",
		len(strategy.Extenders), strategy.ProjectedCoverage, quality.MinCoverage, strategy.RequirementsMet)
	return strategy, nil
}

// estimateExtenderCount sizes the budget from the coverage gap, scaled by
// how fragmented the gap is and clamped to maxExtenders.
func (o *Optimizer) estimateExtenderCount(gap GapAnalysis, maxExtenders int) int {
	if gap.CoverageGapFraction <= 0 {
		return 0
	}
	complexity := 1.0 + gapComplexityStep*math.Max(0, float64(len(gap.Zones)-1))
	if complexity > gapComplexityMax {
		complexity = gapComplexityMax
	}
	n := int(math.Ceil(gap.CoverageGapFraction / perExtenderGain * complexity))
	if n > maxExtenders {
		n = maxExtenders
	}
	if n < 1 {
		n = 1
	}
	return n
}

// extenderPosition picks the install point for a dead zone: the zone center
// at plug-in height, nudged inside the room bounds and off the walls.
func (o *Optimizer) extenderPosition(zone coverage.DeadZone, room *geom.RoomModel) Point3D {
	p := zone.Center
	p.Z = room.Bounds.Min.Z + extenderInstallHeightM

	inset := DefaultMinWallDistanceM
	if p.X < room.Bounds.Min.X+inset {
		p.X = room.Bounds.Min.X + inset
	} else if p.X > room.Bounds.Max.X-inset {
		p.X = room.Bounds.Max.X - inset
	}
	if p.Y < room.Bounds.Min.Y+inset {
		p.Y = room.Bounds.Min.Y + inset
	} else if p.Y > room.Bounds.Max.Y-inset {
		p.Y = room.Bounds.Max.Y - inset
	}
	return p
}
