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
	"math/rand"
	"sync"

	"github.com/wiplan/wiplan/logger"
	"github.com/wiplan/wiplan/prng"
	. "github.com/wiplan/wiplan/types"
)

const (
	initialCacheSize = 4096
	maxCacheSize     = 1000000
)

// fadingModel adds a position-dependent shadow-fading term to predictions.
//
// SF models a fixed radio signal power attenuation (SF>0) or increase (SF<0)
// due to multipath effects and static obstacles the wall model does not see.
// In the dB domain it is a normal distribution (mu=0, sigma). A symmetric
// link is assumed: reversing transmitter and receiver gives the same value,
// and the value is stable for a given link so repeated predictions agree.
type fadingModel struct {
	mu        sync.Mutex
	rndSeed   int64
	shFadeMap map[int64]DbValue
}

func newFadingModel() *fadingModel {
	return &fadingModel{
		rndSeed:   int64(prng.NewFadingRandomSeed()),
		shFadeMap: make(map[int64]DbValue, initialCacheSize),
	}
}

// computeFading returns the shadow-fading dB amount for the link a-b. Each
// unique link draws one reproducible value from its own seeded source.
func (sf *fadingModel) computeFading(a, b Point3D, params *ModelParams) DbValue {
	seed := sf.rndSeed + calcLinkUID(a, b)

	sf.mu.Lock()
	defer sf.mu.Unlock()

	if v, ok := sf.shFadeMap[seed]; ok {
		return v
	}
	if len(sf.shFadeMap) > maxCacheSize {
		logger.Debugf("fading model: purging fade cache")
		sf.shFadeMap = make(map[int64]DbValue, initialCacheSize)
	}
	rnd := rand.New(rand.NewSource(seed))
	v := rnd.NormFloat64() * params.ShadowFadingSigmaDb
	sf.shFadeMap[seed] = v
	return v
}

// calcLinkUID gives each (a,b) endpoint pair a fixed int64 seed value.
// Positions are quantized to a 0.5 m grid in uint16 range; the left-most
// (then top-most) endpoint goes first so the UID is symmetric.
func calcLinkUID(a, b Point3D) int64 {
	x1 := uint16(math.Round(a.X*2.0) + 32768)
	y1 := uint16(math.Round(a.Y*2.0) + 32768)
	x2 := uint16(math.Round(b.X*2.0) + 32768)
	y2 := uint16(math.Round(b.Y*2.0) + 32768)

	xL, yL, xR, yR := x2, y2, x1, y1
	if x1 < x2 || (x1 == x2 && y1 < y2) {
		xL, yL, xR, yR = x1, y1, x2, y2
	}
	return int64(xL) + int64(yL)<<16 + int64(xR)<<32 + int64(yR)<<48
}
