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

// Package correlate matches locally collected signal samples to an external
// network controller's reported connection state.
package correlate

import (
	"math"
	"sync"

	. "github.com/wiplan/wiplan/types"
)

// default matching tolerances; confidence decays linearly to 0 across each
const (
	DefaultTimestampToleranceSec = 2.0
	DefaultLocationToleranceM    = 1.0
	DefaultSignalToleranceDbm    = 10.0
)

// combined-confidence weights: timestamp / location / signal
const (
	timestampWeight = 0.4
	locationWeight  = 0.3
	signalWeight    = 0.3
)

// confidence used for the location term when the controller reports no
// location at all
const neutralLocationConfidence = 0.5

const maxHistorySize = 1000

// MatchTier buckets a correlation confidence for reporting.
type MatchTier int

const (
	TierPoor MatchTier = iota
	TierFair
	TierGood
	TierExcellent
)

func (t MatchTier) String() string {
	switch t {
	case TierExcellent:
		return "excellent"
	case TierGood:
		return "good"
	case TierFair:
		return "fair"
	default:
		return "poor"
	}
}

func tierForConfidence(c float64) MatchTier {
	switch {
	case c > 0.8:
		return TierExcellent
	case c > 0.6:
		return TierGood
	case c > 0.4:
		return TierFair
	default:
		return TierPoor
	}
}

// CorrelatedMeasurement pairs one local measurement with the controller state
// it was matched against, with per-factor and combined confidence.
type CorrelatedMeasurement struct {
	Measurement         WiFiMeasurement `json:"measurement"`
	State               ControllerState `json:"state"`
	TimestampConfidence float64         `json:"timestampConfidence"`
	LocationConfidence  float64         `json:"locationConfidence"`
	SignalConfidence    float64         `json:"signalConfidence"`
	Confidence          float64         `json:"confidence"`
	Tier                MatchTier       `json:"tier"`
}

// Tolerances configures the per-factor decay windows.
type Tolerances struct {
	TimestampSec float64
	LocationM    float64
	SignalDbm    float64
}

func DefaultTolerances() Tolerances {
	return Tolerances{
		TimestampSec: DefaultTimestampToleranceSec,
		LocationM:    DefaultLocationToleranceM,
		SignalDbm:    DefaultSignalToleranceDbm,
	}
}

// Correlator matches measurements to controller state and keeps a bounded
// FIFO history of the results. Safe for concurrent use.
type Correlator struct {
	tol Tolerances

	mu      sync.Mutex
	history []CorrelatedMeasurement
}

func NewCorrelator(tol Tolerances) *Correlator {
	if tol.TimestampSec <= 0 {
		tol.TimestampSec = DefaultTimestampToleranceSec
	}
	if tol.LocationM <= 0 {
		tol.LocationM = DefaultLocationToleranceM
	}
	if tol.SignalDbm <= 0 {
		tol.SignalDbm = DefaultSignalToleranceDbm
	}
	return &Correlator{tol: tol}
}

// Correlate scores every measurement against the controller state and
// appends the results to the history. The input order is preserved.
func (c *Correlator) Correlate(measurements []WiFiMeasurement, state ControllerState) []CorrelatedMeasurement {
	out := make([]CorrelatedMeasurement, 0, len(measurements))
	for _, m := range measurements {
		out = append(out, c.correlateOne(m, state))
	}

	c.mu.Lock()
	for _, cm := range out {
		if len(c.history) >= maxHistorySize {
			c.history = c.history[1:]
		}
		c.history = append(c.history, cm)
	}
	c.mu.Unlock()
	return out
}

func (c *Correlator) correlateOne(m WiFiMeasurement, state ControllerState) CorrelatedMeasurement {
	cm := CorrelatedMeasurement{Measurement: m, State: state}

	dt := math.Abs(m.Timestamp.Sub(state.Timestamp).Seconds())
	cm.TimestampConfidence = linearDecay(dt, c.tol.TimestampSec)

	if state.Location == nil {
		cm.LocationConfidence = neutralLocationConfidence
	} else {
		cm.LocationConfidence = linearDecay(m.Location.DistanceTo(*state.Location), c.tol.LocationM)
	}

	dSig := math.Abs(m.SignalStrengthDbm - state.SignalStrengthDbm)
	cm.SignalConfidence = linearDecay(dSig, c.tol.SignalDbm)

	cm.Confidence = timestampWeight*cm.TimestampConfidence +
		locationWeight*cm.LocationConfidence +
		signalWeight*cm.SignalConfidence
	cm.Tier = tierForConfidence(cm.Confidence)
	return cm
}

// linearDecay maps delta 0 to confidence 1, falling linearly to 0 at tol.
func linearDecay(delta, tol float64) float64 {
	if delta >= tol {
		return 0
	}
	return 1.0 - delta/tol
}

// History returns a copy of the correlation history, oldest first.
func (c *Correlator) History() []CorrelatedMeasurement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CorrelatedMeasurement(nil), c.history...)
}
