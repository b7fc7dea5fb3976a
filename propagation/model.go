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

// Package propagation predicts received signal strength between a placed
// transmitter and a point in a room, using free-space path loss plus
// per-wall obstruction loss.
package propagation

import (
	"math"
	"time"

	"github.com/wiplan/wiplan/geom"
	. "github.com/wiplan/wiplan/types"
)

// BandPrediction is the predicted RSSI and confidence for a single band.
type BandPrediction struct {
	RssiDbm    DbValue `json:"rssi"`
	Confidence float64 `json:"confidence"`
}

// SignalPrediction is the immutable result of one propagation evaluation.
type SignalPrediction struct {
	Location    Point3D                 `json:"location"`
	Bands       map[Band]BandPrediction `json:"bands"`
	BestBand    Band                    `json:"bestBand"`
	BestRssiDbm DbValue                 `json:"bestRssi"`
	Quality     SignalQuality           `json:"quality"`
	Confidence  float64                 `json:"confidence"`
	Timestamp   time.Time               `json:"timestamp"`
}

// Model evaluates signal predictions. A Model is safe for concurrent use:
// its parameters are read-only after construction and the fading cache is
// internally locked.
type Model struct {
	params *ModelParams
	fading *fadingModel
}

// NewModel creates a propagation model with the given parameters. Pass nil
// for residential defaults.
func NewModel(params *ModelParams) *Model {
	if params == nil {
		params = NewModelParams(ProfileResidential)
	}
	m := &Model{params: params}
	if params.ShadowFadingSigmaDb > 0 {
		m.fading = newFadingModel()
	}
	return m
}

// Params returns the model parameters. Callers must not mutate them while
// predictions are running.
func (m *Model) Params() *ModelParams {
	return m.params
}

// Predict evaluates the received signal at target for the given transmitter.
// When no bands are passed, all bands the device supports are evaluated.
// Degenerate rooms and out-of-bounds targets still produce a best-effort
// prediction, at reduced confidence; the prediction is nil only when there is
// no transmitter to evaluate.
func (m *Model) Predict(tx *RouterConfiguration, target Point3D, room *geom.RoomModel, bands ...Band) *SignalPrediction {
	if tx == nil || tx.Device == nil {
		return nil
	}
	if len(bands) == 0 {
		bands = tx.Device.SupportedBands()
	}

	dist := tx.Position.DistanceTo(target)
	if dist < m.params.MinDistanceM {
		dist = m.params.MinDistanceM
	}

	var obstructionDb DbValue
	wallsCrossed := 0
	degraded := false
	if room == nil || room.IsDegenerate() {
		degraded = true
	} else {
		obstructionDb, wallsCrossed = room.ObstructionLossDb(tx.Position, target)
		obstructionDb *= m.params.WallLossScale
		if !room.Bounds.Contains2D(target) {
			degraded = true
		}
	}

	var fadeDb DbValue
	if m.fading != nil {
		fadeDb = m.fading.computeFading(tx.Position, target, m.params)
	}

	pred := &SignalPrediction{
		Location:  target,
		Bands:     make(map[Band]BandPrediction, len(bands)),
		Timestamp: time.Now(),
	}

	best := false
	for _, b := range bands {
		if !tx.Device.SupportsBand(b) {
			continue
		}
		rssi := m.computeRssi(dist, b.FrequencyMhz(), tx.Device.EirpDbm(b), obstructionDb+fadeDb)
		conf := m.confidence(dist, wallsCrossed, degraded)
		pred.Bands[b] = BandPrediction{RssiDbm: rssi, Confidence: conf}
		if !best || rssi > pred.BestRssiDbm {
			best = true
			pred.BestBand = b
			pred.BestRssiDbm = rssi
			pred.Confidence = conf
		}
	}
	if !best {
		// device supports none of the requested bands
		pred.BestRssiDbm = m.params.RssiFloorDbm
		pred.Confidence = minConfidence
	}
	pred.Quality = QualityForRssi(pred.BestRssiDbm)
	return pred
}

// computeRssi computes the received power for one band: EIRP minus free-space
// path loss minus obstruction loss, clamped to the plausible window.
// FSPL(dB) = 20*log10(d_m) + 20*log10(f_MHz) - 27.55.
func (m *Model) computeRssi(distM float64, freqMhz float64, eirpDbm DbValue, lossDb DbValue) DbValue {
	fspl := 20.0*math.Log10(distM) + 20.0*math.Log10(freqMhz) - m.params.FsplConstantDb
	if fspl < 0 {
		fspl = 0
	}
	rssi := eirpDbm - fspl - lossDb
	if rssi > m.params.RssiCeilingDbm {
		rssi = m.params.RssiCeilingDbm
	} else if rssi < m.params.RssiFloorDbm {
		rssi = m.params.RssiFloorDbm
	}
	return rssi
}

// confidence shrinks with distance and with every wall crossed, never below
// the fixed floor. Degraded geometry halves it.
func (m *Model) confidence(distM float64, wallsCrossed int, degraded bool) float64 {
	conf := 1.0 - m.params.ConfDistanceSlope*distM - m.params.ConfWallPenalty*float64(wallsCrossed)
	if degraded {
		conf *= 0.5
	}
	if conf < minConfidence {
		conf = minConfidence
	} else if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
