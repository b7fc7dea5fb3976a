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

// Package types defines the scalar types and constants shared by all engine packages.
package types

import "math"

// DbValue is a dB or dBm amount, used for all signal power and loss bookkeeping.
type DbValue = float64

const UndefinedDbValue = math.MaxFloat64

// RSSI clamping bounds for predictions (dBm). Values outside this window are not
// physically plausible for consumer WiFi hardware indoors.
const (
	RssiFloorDbm   DbValue = -100.0
	RssiCeilingDbm DbValue = -20.0
)

// Fixed RSSI thresholds for the signal-quality buckets (dBm).
const (
	RssiExcellentDbm DbValue = -50.0
	RssiGoodDbm      DbValue = -70.0
	RssiFairDbm      DbValue = -85.0
)

// Band is one of the WiFi frequency bands a transmitter may use.
type Band int

const (
	Band2GHz Band = iota
	Band5GHz
	Band6GHz
	BandCount
)

var bandNames = []string{"2.4GHz", "5GHz", "6GHz"}

// Representative center frequencies per band, in MHz. Channel-level frequency
// selection is out of scope; one mid-band carrier per band is close enough for
// free-space path loss purposes.
var bandFrequenciesMhz = []float64{2437.0, 5180.0, 5955.0}

func (b Band) String() string {
	if b < 0 || b >= BandCount {
		return "unknown"
	}
	return bandNames[b]
}

// FrequencyMhz returns the representative carrier frequency of the band.
func (b Band) FrequencyMhz() float64 {
	if b < 0 || b >= BandCount {
		return bandFrequenciesMhz[Band2GHz]
	}
	return bandFrequenciesMhz[b]
}

// AllBands lists the bands in fixed index order; DeviceSpec power/gain arrays
// are aligned to this order.
func AllBands() []Band {
	return []Band{Band2GHz, Band5GHz, Band6GHz}
}

// ParseBand parses a band name as used in scenario files and the console.
func ParseBand(s string) (Band, bool) {
	switch s {
	case "2.4GHz", "2.4", "2":
		return Band2GHz, true
	case "5GHz", "5":
		return Band5GHz, true
	case "6GHz", "6":
		return Band6GHz, true
	}
	return Band2GHz, false
}

// SignalQuality is the discretized usability bucket for an RSSI value.
type SignalQuality int

const (
	SignalPoor SignalQuality = iota
	SignalFair
	SignalGood
	SignalExcellent
)

func (q SignalQuality) String() string {
	switch q {
	case SignalExcellent:
		return "excellent"
	case SignalGood:
		return "good"
	case SignalFair:
		return "fair"
	default:
		return "poor"
	}
}

// QualityForRssi buckets an RSSI value using the fixed thresholds. It is a
// monotone function of rssi.
func QualityForRssi(rssi DbValue) SignalQuality {
	switch {
	case rssi >= RssiExcellentDbm:
		return SignalExcellent
	case rssi >= RssiGoodDbm:
		return SignalGood
	case rssi >= RssiFairDbm:
		return SignalFair
	default:
		return SignalPoor
	}
}
