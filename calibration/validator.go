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

// Package calibration compares predicted against measured signal strength
// and accumulates calibration points that drive a recalibration check.
package calibration

import (
	"math"
	"sync"
	"time"

	"github.com/wiplan/wiplan/logger"
	"github.com/wiplan/wiplan/propagation"
	. "github.com/wiplan/wiplan/types"
)

const (
	// history cap; oldest points are evicted first
	maxHistorySize = 1000

	// every this many accumulated points, recent mean error is re-checked
	recalibrationCheckInterval = 20

	// recent mean error above this asks for model recalibration
	recalibrationErrorDb DbValue = 8.0

	// meanError that maps accuracy to 0
	errorNormalizationDb DbValue = 20.0

	// below this many compared points the results are low-confidence
	minValidationPoints = 5
)

// PredictionSource yields a signal prediction for a location, typically the
// best prediction across all configured transmitters. A nil return means no
// prediction is available there.
type PredictionSource interface {
	PredictAt(loc Point3D) *propagation.SignalPrediction
}

// CalibrationPoint is one matched (prediction, measurement) pair.
type CalibrationPoint struct {
	Location    Point3D                       `json:"location"`
	Prediction  *propagation.SignalPrediction `json:"prediction"`
	Measurement WiFiMeasurement               `json:"measurement"`
	ErrorDb     DbValue                       `json:"errorDb"`  // |predicted best-band - measured|
	Accuracy    float64                       `json:"accuracy"` // per-point, 0..1
	Timestamp   time.Time                     `json:"timestamp"`
}

// ValidationResults summarizes one Validate call.
type ValidationResults struct {
	Accuracy            float64 `json:"accuracy"`
	MeanErrorDb         DbValue `json:"meanErrorDb"` // +Inf when no valid comparisons
	ValidationPoints    int     `json:"validationPoints"`
	LowConfidence       bool    `json:"lowConfidence"`
	RecalibrationNeeded bool    `json:"recalibrationNeeded"`
}

// RecalibrationEvent is delivered to subscribers when the recent mean error
// crosses the recalibration threshold.
type RecalibrationEvent struct {
	MeanErrorDb DbValue
	PointCount  int
	Timestamp   time.Time
}

// Validator accumulates calibration points and checks model accuracy against
// field measurements. Safe for concurrent use.
type Validator struct {
	mu      sync.Mutex
	source  PredictionSource
	history []CalibrationPoint
	total   int // lifetime point count, drives the periodic check

	subCtr int
	subs   map[int]func(RecalibrationEvent)
}

func NewValidator(source PredictionSource) *Validator {
	return &Validator{
		source: source,
		subs:   map[int]func(RecalibrationEvent){},
	}
}

// Validate compares each measurement against a prediction at its location,
// records the pairs as calibration points, and returns aggregate accuracy.
// Measurements for which no prediction is available are skipped; when none
// can be compared, MeanErrorDb is +Inf and Accuracy is 0.
func (v *Validator) Validate(measurements []WiFiMeasurement) ValidationResults {
	v.mu.Lock()
	defer v.mu.Unlock()

	var sumErr DbValue
	valid := 0
	for _, m := range measurements {
		pred := v.source.PredictAt(m.Location)
		if pred == nil {
			continue
		}
		errDb := math.Abs(pred.BestRssiDbm - m.SignalStrengthDbm)
		v.appendPoint(CalibrationPoint{
			Location:    m.Location,
			Prediction:  pred,
			Measurement: m,
			ErrorDb:     errDb,
			Accuracy:    pointAccuracy(errDb),
			Timestamp:   time.Now(),
		})
		sumErr += errDb
		valid++
	}

	res := ValidationResults{
		ValidationPoints: valid,
		MeanErrorDb:      math.Inf(1),
		LowConfidence:    valid < minValidationPoints,
	}
	if valid > 0 {
		res.MeanErrorDb = sumErr / DbValue(valid)
		res.Accuracy = pointAccuracy(res.MeanErrorDb)
	}
	res.RecalibrationNeeded = v.recentMeanErrorLocked(recalibrationCheckInterval) > recalibrationErrorDb &&
		len(v.history) >= recalibrationCheckInterval
	return res
}

func pointAccuracy(errDb DbValue) float64 {
	return math.Max(0, 1.0-errDb/errorNormalizationDb)
}

// History returns a copy of the current calibration-point history, oldest
// first.
func (v *Validator) History() []CalibrationPoint {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]CalibrationPoint(nil), v.history...)
}

// Subscribe registers a callback for recalibration events. Callbacks run
// synchronously on the validating goroutine; the returned id unsubscribes.
func (v *Validator) Subscribe(fn func(RecalibrationEvent)) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.subCtr++
	v.subs[v.subCtr] = fn
	return v.subCtr
}

func (v *Validator) Unsubscribe(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.subs, id)
}

// appendPoint adds one point FIFO-bounded and runs the periodic
// recalibration check. Caller holds v.mu.
func (v *Validator) appendPoint(p CalibrationPoint) {
	if len(v.history) >= maxHistorySize {
		v.history = v.history[1:]
	}
	v.history = append(v.history, p)
	v.total++

	if v.total%recalibrationCheckInterval != 0 || len(v.history) < recalibrationCheckInterval {
		return
	}
	mean := v.recentMeanErrorLocked(recalibrationCheckInterval)
	if mean <= recalibrationErrorDb {
		return
	}
	ev := RecalibrationEvent{
		MeanErrorDb: mean,
		PointCount:  len(v.history),
		Timestamp:   time.Now(),
	}
	logger.Warnf("calibration: recent mean error %.1f dB exceeds %.1f dB, model recalibration advised",
		mean, recalibrationErrorDb)
	for _, fn := range v.subs {
		fn(ev)
	}
}

// recentMeanErrorLocked averages the error of the newest n points. Caller
// holds v.mu. Returns 0 when the history is empty.
func (v *Validator) recentMeanErrorLocked(n int) DbValue {
	if len(v.history) == 0 {
		return 0
	}
	if n > len(v.history) {
		n = len(v.history)
	}
	var sum DbValue
	for _, p := range v.history[len(v.history)-n:] {
		sum += p.ErrorDb
	}
	return sum / DbValue(n)
}
