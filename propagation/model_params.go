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

package propagation

import (
	"math"

	. "github.com/wiplan/wiplan/types"
)

// default model parameters
const (
	defaultNoiseFloorIndoorDbm DbValue = -95.0
	defaultMinDistanceM        float64 = 0.1 // distance floor, avoids log10(0)
	minConfidence              float64 = 0.1
)

// EnvironmentProfile selects the default wall-loss behavior of the indoor
// environment the room was scanned in.
type EnvironmentProfile int

const (
	ProfileResidential EnvironmentProfile = iota
	ProfileEnterprise
)

func (p EnvironmentProfile) String() string {
	if p == ProfileEnterprise {
		return "enterprise"
	}
	return "residential"
}

// ModelParams stores the tunable parameters of the propagation model.
type ModelParams struct {
	MinDistanceM        float64 // distance floor for the path-loss formula
	FsplConstantDb      DbValue // free-space constant for meters/MHz inputs
	WallLossScale       float64 // multiplier on per-wall material attenuation
	RssiFloorDbm        DbValue // lowest RSSI value that can be returned
	RssiCeilingDbm      DbValue // highest RSSI value that can be returned
	NoiseFloorDbm       DbValue // ambient noise floor
	ConfDistanceSlope   float64 // confidence lost per meter of distance
	ConfWallPenalty     float64 // confidence lost per wall crossed
	ShadowFadingSigmaDb DbValue // sigma for the optional shadow-fading term; 0 disables
}

// paround is a custom parameter rounding function (2 digits)
func paround(param float64) float64 {
	return math.Round(param*100.0) / 100.0
}

// newModelParams gets a new set of parameters with default values, as a basis
// to configure further via a profile setter.
func newModelParams() *ModelParams {
	return &ModelParams{
		MinDistanceM:        defaultMinDistanceM,
		FsplConstantDb:      27.55,
		WallLossScale:       1.0,
		RssiFloorDbm:        RssiFloorDbm,
		RssiCeilingDbm:      RssiCeilingDbm,
		NoiseFloorDbm:       defaultNoiseFloorIndoorDbm,
		ConfDistanceSlope:   0.01,
		ConfWallPenalty:     0.08,
		ShadowFadingSigmaDb: 0.0,
	}
}

// Residential construction: light interior walls, defaults as measured.
func setResidentialParams(params *ModelParams) {
	params.WallLossScale = 1.0
}

// Enterprise construction: denser walls, cable trays and suspended ceilings
// add loss the per-material constants do not capture.
func setEnterpriseParams(params *ModelParams) {
	params.WallLossScale = 1.25
	params.NoiseFloorDbm = paround(defaultNoiseFloorIndoorDbm + 3.0)
}

// NewModelParams returns parameters configured for the given profile.
func NewModelParams(profile EnvironmentProfile) *ModelParams {
	params := newModelParams()
	switch profile {
	case ProfileEnterprise:
		setEnterpriseParams(params)
	default:
		setResidentialParams(params)
	}
	return params
}
