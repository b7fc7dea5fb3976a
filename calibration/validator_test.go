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

package calibration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wiplan/wiplan/propagation"
	. "github.com/wiplan/wiplan/types"
)

// fixedSource predicts the same RSSI everywhere; rssi == nil disables it.
type fixedSource struct {
	rssi *DbValue
}

func (s *fixedSource) PredictAt(loc Point3D) *propagation.SignalPrediction {
	if s.rssi == nil {
		return nil
	}
	return &propagation.SignalPrediction{
		Location:    loc,
		BestRssiDbm: *s.rssi,
		Quality:     QualityForRssi(*s.rssi),
	}
}

func sourceAt(rssi DbValue) *fixedSource {
	return &fixedSource{rssi: &rssi}
}

func measurements(n int, rssi DbValue) []WiFiMeasurement {
	out := make([]WiFiMeasurement, n)
	for i := range out {
		out[i] = WiFiMeasurement{
			Location:          Point3D{X: float64(i), Y: 1, Z: 1},
			SignalStrengthDbm: rssi,
			Band:              Band2GHz,
		}
	}
	return out
}

func TestValidateAccuracy(t *testing.T) {
	// predicted -60, measured -64: 4 dB error, accuracy 1 - 4/20 = 0.8
	v := NewValidator(sourceAt(-60))
	res := v.Validate(measurements(10, -64))

	assert.Equal(t, 10, res.ValidationPoints)
	assert.InDelta(t, 4.0, res.MeanErrorDb, 1e-9)
	assert.InDelta(t, 0.8, res.Accuracy, 1e-9)
	assert.False(t, res.LowConfidence)
	assert.False(t, res.RecalibrationNeeded)

	hist := v.History()
	assert.Len(t, hist, 10)
	for _, p := range hist {
		assert.InDelta(t, 4.0, p.ErrorDb, 1e-9)
		assert.InDelta(t, 0.8, p.Accuracy, 1e-9)
		assert.NotNil(t, p.Prediction)
	}
}

func TestValidateNoPredictions(t *testing.T) {
	v := NewValidator(&fixedSource{})
	res := v.Validate(measurements(8, -60))

	assert.Equal(t, 0, res.ValidationPoints)
	assert.True(t, math.IsInf(res.MeanErrorDb, 1))
	assert.Equal(t, 0.0, res.Accuracy)
	assert.True(t, res.LowConfidence)
	assert.Empty(t, v.History())
}

func TestValidateLowConfidence(t *testing.T) {
	v := NewValidator(sourceAt(-60))

	res := v.Validate(measurements(4, -62))
	assert.True(t, res.LowConfidence)

	res = v.Validate(measurements(5, -62))
	assert.False(t, res.LowConfidence)
}

func TestValidateAccuracyFloor(t *testing.T) {
	// 40 dB error normalizes past the floor, never negative
	v := NewValidator(sourceAt(-30))
	res := v.Validate(measurements(6, -70))

	assert.Equal(t, 0.0, res.Accuracy)
	assert.InDelta(t, 40.0, res.MeanErrorDb, 1e-9)
}

func TestHistoryBounded(t *testing.T) {
	v := NewValidator(sourceAt(-60))
	for i := 0; i < 11; i++ {
		v.Validate(measurements(100, -61))
	}
	assert.Len(t, v.History(), maxHistorySize)
}

func TestRecalibrationEvent(t *testing.T) {
	// 12 dB sustained error trips the periodic check
	v := NewValidator(sourceAt(-60))

	var events []RecalibrationEvent
	id := v.Subscribe(func(ev RecalibrationEvent) {
		events = append(events, ev)
	})

	res := v.Validate(measurements(recalibrationCheckInterval, -72))
	assert.True(t, res.RecalibrationNeeded)
	assert.Len(t, events, 1)
	assert.InDelta(t, 12.0, events[0].MeanErrorDb, 1e-9)
	assert.Equal(t, recalibrationCheckInterval, events[0].PointCount)

	// accurate points pull the recent mean back under the threshold
	res = v.Validate(measurements(recalibrationCheckInterval, -60))
	assert.False(t, res.RecalibrationNeeded)
	assert.Len(t, events, 1)

	v.Unsubscribe(id)
	v.Validate(measurements(recalibrationCheckInterval*3, -75))
	assert.Len(t, events, 1, "unsubscribed callback must not fire")
}

func TestNoRecalibrationBelowThreshold(t *testing.T) {
	v := NewValidator(sourceAt(-60))

	fired := false
	v.Subscribe(func(RecalibrationEvent) { fired = true })

	res := v.Validate(measurements(recalibrationCheckInterval*2, -65))
	assert.False(t, res.RecalibrationNeeded)
	assert.False(t, fired)
}
