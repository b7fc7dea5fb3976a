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

package correlate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/wiplan/wiplan/types"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func sample(at time.Time, loc Point3D, rssi DbValue) WiFiMeasurement {
	return WiFiMeasurement{
		Location:          loc,
		Timestamp:         at,
		SignalStrengthDbm: rssi,
		NetworkName:       "home",
		Band:              Band5GHz,
	}
}

func TestCorrelatePerfectMatch(t *testing.T) {
	loc := Point3D{X: 2, Y: 3, Z: 1}
	state := ControllerState{
		Device:            "laptop",
		Band:              Band5GHz,
		SignalStrengthDbm: -55,
		Location:          &loc,
		Timestamp:         t0,
	}

	out := NewCorrelator(DefaultTolerances()).Correlate(
		[]WiFiMeasurement{sample(t0, loc, -55)}, state)
	assert.Len(t, out, 1)

	cm := out[0]
	assert.Equal(t, 1.0, cm.TimestampConfidence)
	assert.Equal(t, 1.0, cm.LocationConfidence)
	assert.Equal(t, 1.0, cm.SignalConfidence)
	assert.InDelta(t, 1.0, cm.Confidence, 1e-9)
	assert.Equal(t, TierExcellent, cm.Tier)
}

func TestCorrelateDecayAtTolerance(t *testing.T) {
	loc := Point3D{X: 2, Y: 3, Z: 1}
	state := ControllerState{
		SignalStrengthDbm: -55,
		Location:          &loc,
		Timestamp:         t0,
	}

	// every factor exactly at its tolerance: all confidences hit 0
	m := sample(t0.Add(2*time.Second), Point3D{X: 3, Y: 3, Z: 1}, -65)
	cm := NewCorrelator(DefaultTolerances()).Correlate([]WiFiMeasurement{m}, state)[0]

	assert.Equal(t, 0.0, cm.TimestampConfidence)
	assert.Equal(t, 0.0, cm.LocationConfidence)
	assert.Equal(t, 0.0, cm.SignalConfidence)
	assert.Equal(t, 0.0, cm.Confidence)
	assert.Equal(t, TierPoor, cm.Tier)
}

func TestCorrelateHalfwayDecay(t *testing.T) {
	loc := Point3D{X: 0, Y: 0, Z: 1}
	state := ControllerState{
		SignalStrengthDbm: -60,
		Location:          &loc,
		Timestamp:         t0,
	}

	// halfway into each window: 0.5 per factor, weights sum to 1
	m := sample(t0.Add(time.Second), Point3D{X: 0.5, Y: 0, Z: 1}, -65)
	cm := NewCorrelator(DefaultTolerances()).Correlate([]WiFiMeasurement{m}, state)[0]

	assert.InDelta(t, 0.5, cm.TimestampConfidence, 1e-9)
	assert.InDelta(t, 0.5, cm.LocationConfidence, 1e-9)
	assert.InDelta(t, 0.5, cm.SignalConfidence, 1e-9)
	assert.InDelta(t, 0.5, cm.Confidence, 1e-9)
	assert.Equal(t, TierFair, cm.Tier)
}

func TestCorrelateNoControllerLocation(t *testing.T) {
	state := ControllerState{
		SignalStrengthDbm: -55,
		Timestamp:         t0,
	}

	cm := NewCorrelator(DefaultTolerances()).Correlate(
		[]WiFiMeasurement{sample(t0, Point3D{X: 9, Y: 9, Z: 1}, -55)}, state)[0]

	assert.Equal(t, neutralLocationConfidence, cm.LocationConfidence)
	// 0.4*1 + 0.3*0.5 + 0.3*1 = 0.85
	assert.InDelta(t, 0.85, cm.Confidence, 1e-9)
	assert.Equal(t, TierExcellent, cm.Tier)
}

func TestTierBoundaries(t *testing.T) {
	assert.Equal(t, TierPoor, tierForConfidence(0.4))
	assert.Equal(t, TierFair, tierForConfidence(0.41))
	assert.Equal(t, TierFair, tierForConfidence(0.6))
	assert.Equal(t, TierGood, tierForConfidence(0.61))
	assert.Equal(t, TierGood, tierForConfidence(0.8))
	assert.Equal(t, TierExcellent, tierForConfidence(0.81))

	assert.Equal(t, "excellent", TierExcellent.String())
	assert.Equal(t, "poor", MatchTier(-1).String())
}

func TestCustomTolerances(t *testing.T) {
	c := NewCorrelator(Tolerances{TimestampSec: 10})
	assert.Equal(t, 10.0, c.tol.TimestampSec)
	assert.Equal(t, DefaultLocationToleranceM, c.tol.LocationM)
	assert.Equal(t, DefaultSignalToleranceDbm, c.tol.SignalDbm)

	state := ControllerState{SignalStrengthDbm: -55, Timestamp: t0}
	cm := c.Correlate([]WiFiMeasurement{sample(t0.Add(5*time.Second), Point3D{}, -55)}, state)[0]
	assert.InDelta(t, 0.5, cm.TimestampConfidence, 1e-9)
}

func TestHistoryOrderAndCap(t *testing.T) {
	c := NewCorrelator(DefaultTolerances())
	state := ControllerState{SignalStrengthDbm: -55, Timestamp: t0}

	batch := make([]WiFiMeasurement, 0, maxHistorySize+50)
	for i := 0; i < maxHistorySize+50; i++ {
		m := sample(t0, Point3D{X: float64(i)}, -55)
		m.NetworkName = fmt.Sprintf("net-%d", i)
		batch = append(batch, m)
	}
	out := c.Correlate(batch, state)
	assert.Len(t, out, maxHistorySize+50)

	hist := c.History()
	assert.Len(t, hist, maxHistorySize)
	// oldest entries were evicted, newest kept in insertion order
	assert.Equal(t, "net-50", hist[0].Measurement.NetworkName)
	assert.Equal(t, fmt.Sprintf("net-%d", maxHistorySize+49), hist[len(hist)-1].Measurement.NetworkName)
}
