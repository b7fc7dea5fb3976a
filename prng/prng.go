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

// Package prng centralizes the pseudorandom sources of the planner, so that a
// run can be made reproducible with a single root seed.
package prng

import (
	"math/rand"
	"sync"
	"time"
)

type RandomSeed int64

var (
	mu                      sync.Mutex
	fadingRandSeedGenerator *rand.Rand
	unitRandGenerator       *rand.Rand
)

func init() {
	Init(0)
}

// Init initializes the prng package, either with a fixed root seed
// (rootSeed != 0) or a time-based one (rootSeed == 0).
func Init(rootSeed int64) {
	if rootSeed == 0 {
		rootSeed = time.Now().UnixNano()
	}
	mu.Lock()
	defer mu.Unlock()
	fadingRandSeedGenerator = rand.New(rand.NewSource(rootSeed + 1))
	unitRandGenerator = rand.New(rand.NewSource(rootSeed + 2))
}

// NewFadingRandomSeed generates a random seed for a newly created fading model.
func NewFadingRandomSeed() RandomSeed {
	mu.Lock()
	defer mu.Unlock()
	return RandomSeed(fadingRandSeedGenerator.Int63())
}

// NewUnitRandom generates a random unit [0, 1) float, usable as a probability.
func NewUnitRandom() float64 {
	mu.Lock()
	defer mu.Unlock()
	return unitRandGenerator.Float64()
}
