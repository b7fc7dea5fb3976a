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

package planner

import (
	"github.com/wiplan/wiplan/observability"
	"github.com/wiplan/wiplan/placement"
	"github.com/wiplan/wiplan/propagation"
	. "github.com/wiplan/wiplan/types"
)

// Config collects everything a planning session can be tuned with. The zero
// value plus DefaultConfig() is a usable residential setup.
type Config struct {
	Profile         propagation.EnvironmentProfile
	ShadowSigmaDb   DbValue // 0 disables shadow fading
	GridResolutionM float64
	Constraints     placement.Constraints
	Quality         placement.QualityRequirements
	RandomSeed      int64                    // 0 derives a seed from the clock
	ScenarioFile    string                   // scenario to load on session start
	Metrics         *observability.Collector // nil disables metrics
	Correlation     bool                     // enables controller-state correlation
}

func DefaultConfig() *Config {
	return &Config{
		Profile:         propagation.ProfileResidential,
		GridResolutionM: 0, // generator default
		Constraints:     placement.Constraints{},
		Quality:         placement.DefaultQualityRequirements(),
		Correlation:     true,
	}
}
