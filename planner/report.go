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
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/wiplan/wiplan/coverage"
	"github.com/wiplan/wiplan/logger"
	. "github.com/wiplan/wiplan/types"
)

// Report is the exportable snapshot of one planning session.
// MeetsRequirements is the verdict of the configured quality requirements
// over the coverage statistics; it is absent without a coverage map.
type Report struct {
	FileTime          string               `json:"fileTime"`
	RoomID            string               `json:"roomId"`
	RoomName          string               `json:"roomName"`
	Routers           []reportRouter       `json:"routers"`
	Coverage          *coverage.Map        `json:"coverage,omitempty"`
	Stats             *coverage.Statistics `json:"stats,omitempty"`
	MeetsRequirements *bool                `json:"meetsRequirements,omitempty"`
}

type reportRouter struct {
	ID       string  `json:"id"`
	Position Point3D `json:"position"`
	Model    string  `json:"model"`
}

// SaveReport writes the current session state plus the most recent coverage
// map as indented JSON. An empty filename derives one from the room id and
// the current time.
func (p *Planner) SaveReport(fn string) error {
	p.mu.RLock()
	room := p.room
	routers := make([]reportRouter, 0, len(p.routers))
	for _, r := range p.routers {
		routers = append(routers, reportRouter{ID: r.ID, Position: r.Position, Model: r.Device.Model})
	}
	cov := p.lastCoverage
	p.mu.RUnlock()

	if room == nil {
		return errors.New("no room configured, nothing to report")
	}
	if fn == "" {
		fn = p.defaultReportFileName(room.ID)
	}

	rep := &Report{
		FileTime: time.Now().Format(time.RFC3339),
		RoomID:   room.ID,
		RoomName: room.Name,
		Routers:  routers,
		Coverage: cov,
	}
	if cov != nil {
		rep.Stats = &cov.Stats
		met := p.cfg.Quality.SatisfiedBy(&cov.Stats)
		rep.MeetsRequirements = &met
	}

	data, err := json.MarshalIndent(rep, "", "    ")
	if err != nil {
		return errors.Wrap(err, "could not marshal report JSON data")
	}
	if err := os.WriteFile(fn, data, 0644); err != nil {
		return errors.Wrapf(err, "could not write report JSON file %s", fn)
	}
	logger.Infof("report saved to %s", fn)
	return nil
}

func (p *Planner) defaultReportFileName(roomID string) string {
	if roomID == "" {
		roomID = "room"
	}
	return fmt.Sprintf("wiplan_%s_%s.json", roomID, time.Now().Format("20060102_150405"))
}
