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
	. "github.com/wiplan/wiplan/types"
)

// DeviceSpec describes the RF characteristics of one router or extender
// model. Power and gain arrays are indexed by Band. A spec is immutable and
// shared read-only across any number of RouterConfigurations.
type DeviceSpec struct {
	Model          string
	Manufacturer   string
	TxPowerDbm     [BandCount]DbValue // UndefinedDbValue marks an unsupported band
	AntennaGainDbi [BandCount]DbValue
	Standards      []string
	DimensionsM    Point3D
	PowerDrawW     float64
	IsExtender     bool
}

// SupportsBand reports whether the device can transmit on the band.
func (d *DeviceSpec) SupportsBand(b Band) bool {
	if b < 0 || b >= BandCount {
		return false
	}
	return d.TxPowerDbm[b] != UndefinedDbValue
}

// SupportedBands returns the device's bands in fixed index order.
func (d *DeviceSpec) SupportedBands() []Band {
	var bands []Band
	for _, b := range AllBands() {
		if d.SupportsBand(b) {
			bands = append(bands, b)
		}
	}
	return bands
}

// EirpDbm is the effective radiated power on a band: transmit power plus
// antenna gain.
func (d *DeviceSpec) EirpDbm(b Band) DbValue {
	return d.TxPowerDbm[b] + d.AntennaGainDbi[b]
}

// RouterConfiguration is one physical transmitter instance placed in a room.
type RouterConfiguration struct {
	ID             string
	Position       Point3D
	Device         *DeviceSpec
	OrientationRad float64
	ElevationM     float64
}

// defaultCatalog holds built-in device specs used when a scenario does not
// name a device. Numbers follow typical regulatory-limit consumer hardware.
var defaultCatalog = []DeviceSpec{
	{
		Model:          "WP-AX3000",
		Manufacturer:   "Generic",
		TxPowerDbm:     [BandCount]DbValue{20.0, 23.0, UndefinedDbValue},
		AntennaGainDbi: [BandCount]DbValue{2.0, 3.0, 0.0},
		Standards:      []string{"802.11ax", "802.11ac", "802.11n"},
		DimensionsM:    Point3D{X: 0.26, Y: 0.13, Z: 0.18},
		PowerDrawW:     12.0,
	},
	{
		Model:          "WP-BE9300",
		Manufacturer:   "Generic",
		TxPowerDbm:     [BandCount]DbValue{20.0, 23.0, 23.0},
		AntennaGainDbi: [BandCount]DbValue{3.0, 4.0, 4.0},
		Standards:      []string{"802.11be", "802.11ax"},
		DimensionsM:    Point3D{X: 0.30, Y: 0.15, Z: 0.22},
		PowerDrawW:     21.0,
	},
	{
		Model:          "WP-EXT1800",
		Manufacturer:   "Generic",
		TxPowerDbm:     [BandCount]DbValue{18.0, 20.0, UndefinedDbValue},
		AntennaGainDbi: [BandCount]DbValue{2.0, 2.0, 0.0},
		Standards:      []string{"802.11ax", "802.11ac"},
		DimensionsM:    Point3D{X: 0.08, Y: 0.07, Z: 0.12},
		PowerDrawW:     7.5,
		IsExtender:     true,
	},
}

// DefaultCatalog returns the built-in device specs. The slice is freshly
// allocated; the specs themselves are shared.
func DefaultCatalog() []*DeviceSpec {
	out := make([]*DeviceSpec, len(defaultCatalog))
	for i := range defaultCatalog {
		out[i] = &defaultCatalog[i]
	}
	return out
}

// DefaultRouterSpec is the spec used for synthetic candidates during
// placement search when the caller does not pick a device.
func DefaultRouterSpec() *DeviceSpec {
	return &defaultCatalog[0]
}

// DefaultExtenderSpec is the spec assumed for gap-filling extenders.
func DefaultExtenderSpec() *DeviceSpec {
	return &defaultCatalog[2]
}

// FindDevice looks a spec up by model name in the given catalog.
func FindDevice(catalog []*DeviceSpec, model string) *DeviceSpec {
	for _, d := range catalog {
		if d.Model == model {
			return d
		}
	}
	return nil
}
