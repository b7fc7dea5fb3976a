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
	"github.com/wiplan/wiplan/coverage"
	. "github.com/wiplan/wiplan/types"
)

// Default constraint values, applied by Constraints.withDefaults.
const (
	DefaultMinHeightM         = 0.2
	DefaultMaxHeightM         = 2.5
	DefaultMinWallDistanceM   = 0.3
	DefaultMaxOutletDistanceM = 3.0
	DefaultMaxExtenders       = 3
	DefaultMaxRecommendations = 5
)

// OptimizationStrategy selects the scoring weight preset.
type OptimizationStrategy int

const (
	StrategyMultiObjective OptimizationStrategy = iota
	StrategyCoverage
	StrategyQuality
)

// Weights blends the evaluation factors into the overall candidate score.
// They should sum to 1; withDefaults normalizes them.
type Weights struct {
	Coverage      float64
	Practical     float64
	Accessibility float64
}

// DefaultWeights is the canonical multi-objective weighting: coverage 50%,
// practicality 30%, accessibility 20%. Interference risk is a tiebreaker,
// not a weighted term.
func DefaultWeights() Weights {
	return Weights{Coverage: 0.5, Practical: 0.3, Accessibility: 0.2}
}

func weightsForStrategy(s OptimizationStrategy) Weights {
	switch s {
	case StrategyCoverage:
		return Weights{Coverage: 0.7, Practical: 0.2, Accessibility: 0.1}
	case StrategyQuality:
		return Weights{Coverage: 0.4, Practical: 0.4, Accessibility: 0.2}
	default:
		return DefaultWeights()
	}
}

// AccessChecker is the collaborator hook deciding whether a location can be
// wired for internet backhaul. A nil checker accepts every location.
type AccessChecker interface {
	HasInternetAccess(p Point3D) bool
}

// Constraints bound the physical installation options for a transmitter.
// The zero value selects all defaults.
type Constraints struct {
	MinHeightM          float64
	MaxHeightM          float64
	MinWallDistanceM    float64
	RequiresPowerOutlet bool
	MaxOutletDistanceM  float64
	MaxExtenders        int
	MaxRecommendations  int
	Strategy            OptimizationStrategy
	Weights             Weights // zero value selects the strategy preset
	InternetAccess      AccessChecker
}

func (c Constraints) withDefaults() Constraints {
	if c.MaxHeightM == 0 {
		c.MaxHeightM = DefaultMaxHeightM
		if c.MinHeightM == 0 {
			c.MinHeightM = DefaultMinHeightM
		}
	}
	if c.MinWallDistanceM == 0 {
		c.MinWallDistanceM = DefaultMinWallDistanceM
	}
	if c.MaxOutletDistanceM == 0 {
		c.MaxOutletDistanceM = DefaultMaxOutletDistanceM
	}
	if c.MaxExtenders == 0 {
		c.MaxExtenders = DefaultMaxExtenders
	}
	if c.MaxRecommendations == 0 {
		c.MaxRecommendations = DefaultMaxRecommendations
	}
	if c.Weights == (Weights{}) {
		c.Weights = weightsForStrategy(c.Strategy)
	} else {
		sum := c.Weights.Coverage + c.Weights.Practical + c.Weights.Accessibility
		if sum > 0 {
			c.Weights.Coverage /= sum
			c.Weights.Practical /= sum
			c.Weights.Accessibility /= sum
		}
	}
	return c
}

// QualityRequirements state what the caller considers an acceptable network.
// They drive the extender search target and the report verdict; they do not
// alter candidate scoring. The zero value selects all defaults.
type QualityRequirements struct {
	MinCoverage   float64 // fraction of cells above the usable threshold
	MinSignalDbm  DbValue // minimum mean best-RSSI across the room
	MinUniformity float64 // minimum coverage.Statistics.Uniformity
}

// DefaultQualityRequirements matches typical residential expectations.
func DefaultQualityRequirements() QualityRequirements {
	return QualityRequirements{
		MinCoverage:   0.9,
		MinSignalDbm:  RssiGoodDbm,
		MinUniformity: 0.5,
	}
}

func (q QualityRequirements) withDefaults() QualityRequirements {
	d := DefaultQualityRequirements()
	if q.MinCoverage <= 0 || q.MinCoverage > 1 {
		q.MinCoverage = d.MinCoverage
	}
	if q.MinSignalDbm == 0 {
		q.MinSignalDbm = d.MinSignalDbm
	}
	if q.MinUniformity <= 0 || q.MinUniformity > 1 {
		q.MinUniformity = d.MinUniformity
	}
	return q
}

// SatisfiedBy reports whether a coverage result meets every requirement.
func (q QualityRequirements) SatisfiedBy(s *coverage.Statistics) bool {
	if s == nil {
		return false
	}
	return s.CoveragePercentage >= q.MinCoverage &&
		s.MeanSignalDbm >= q.MinSignalDbm &&
		s.Uniformity >= q.MinUniformity
}
