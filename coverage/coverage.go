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

// Package coverage samples the propagation model over a grid across a room
// and aggregates per-cell best signal into a coverage map with statistics
// and dead zones.
package coverage

import (
	"context"
	"math"
	"time"

	"github.com/wiplan/wiplan/geom"
	"github.com/wiplan/wiplan/observability"
	"github.com/wiplan/wiplan/propagation"
	. "github.com/wiplan/wiplan/types"
)

const (
	// DefaultGridResolutionM is the default cell spacing.
	DefaultGridResolutionM = 0.5

	// DefaultEvalHeightM approximates device-carry height: phones and
	// laptops live around hip-to-table height, not on the floor.
	DefaultEvalHeightM = 1.0

	// UsableSignalThresholdDbm is the minimum best-band RSSI for a cell to
	// count as covered.
	UsableSignalThresholdDbm = RssiGoodDbm

	// progress is reported (and metrics batched) once per this many cells.
	progressCellInterval = 64

	// uniformityNormalizationDb is the per-cell RSSI spread at which
	// Statistics.Uniformity bottoms out at zero.
	uniformityNormalizationDb = 20.0
)

// Cell is one sampled grid position with the strongest signal any router
// delivers there.
type Cell struct {
	Center      Point3D       `json:"center"`
	BestRssiDbm DbValue       `json:"bestRssi"`
	BestBand    Band          `json:"bestBand"`
	BestRouter  string        `json:"bestRouter"`
	Quality     SignalQuality `json:"quality"`
	Redundancy  int           `json:"redundancy"` // routers above the usable threshold
}

// Statistics summarizes a generated map. Percentages are fractions in [0,1].
// Uniformity is 1 minus the normalized standard deviation of the per-cell
// best RSSI: 1.0 means every cell sees the same signal.
type Statistics struct {
	TotalCells           int     `json:"totalCells"`
	CoveragePercentage   float64 `json:"coverage"`
	RedundancyPercentage float64 `json:"redundancy"`
	MeanSignalDbm        DbValue `json:"meanSignal"`
	Uniformity           float64 `json:"uniformity"`
	QualityScore         float64 `json:"qualityScore"`
}

// DeadZone is a contiguous region of cells below the poor threshold.
// Severity grows with how far below threshold the region sits, normalized so
// 1.0 means the region is pinned at the RSSI floor.
type DeadZone struct {
	Bounds   geom.BoundingBox `json:"bounds"`
	Center   Point3D          `json:"center"`
	Cells    int              `json:"cells"`
	Severity float64          `json:"severity"`
}

// Map is an immutable snapshot of predicted coverage over a room.
type Map struct {
	RoomID      string           `json:"roomId"`
	Bounds      geom.BoundingBox `json:"bounds"`
	ResolutionM float64          `json:"resolution"`
	EvalHeightM float64          `json:"evalHeight"`
	Cols        int              `json:"cols"`
	Rows        int              `json:"rows"`
	Cells       []Cell           `json:"cells"` // row-major
	Stats       Statistics       `json:"stats"`
	DeadZones   []DeadZone       `json:"deadZones"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// CellAt returns the cell at grid position (col, row), or nil out of range.
func (m *Map) CellAt(col, row int) *Cell {
	if col < 0 || col >= m.Cols || row < 0 || row >= m.Rows {
		return nil
	}
	return &m.Cells[row*m.Cols+col]
}

// CellNear returns the cell whose center is nearest to p in the horizontal
// plane, or nil for an empty map or a point outside the mapped bounds.
func (m *Map) CellNear(p Point3D) *Cell {
	if m == nil || len(m.Cells) == 0 {
		return nil
	}
	if p.X < m.Bounds.Min.X || p.X > m.Bounds.Max.X ||
		p.Y < m.Bounds.Min.Y || p.Y > m.Bounds.Max.Y {
		return nil
	}
	col := int((p.X - m.Bounds.Min.X) / m.ResolutionM)
	row := int((p.Y - m.Bounds.Min.Y) / m.ResolutionM)
	// points on the max edge land one past the last sampled cell
	if col >= m.Cols {
		col = m.Cols - 1
	}
	if row >= m.Rows {
		row = m.Rows - 1
	}
	return m.CellAt(col, row)
}

// ProgressFunc receives fractional completion in [0,1]. It is invoked from
// the generating goroutine; implementations must not block for long.
type ProgressFunc func(fraction float64)

// Generator runs coverage sampling against one propagation model.
type Generator struct {
	model   *propagation.Model
	metrics *observability.Collector
}

// NewGenerator creates a coverage generator. metrics may be nil.
func NewGenerator(model *propagation.Model, metrics *observability.Collector) *Generator {
	return &Generator{model: model, metrics: metrics}
}

// Generate samples every router against a grid across room.Bounds at the
// given resolution (<=0 selects the default) at device-carry height.
// Multiple routers do not sum constructively: each cell keeps the best
// single-router result, modeling independent APs.
//
// Returns (nil, nil) when room or routers are not configured yet: callers
// routinely probe before setup is complete and that is not an error.
// Cancellation is checked between grid rows; progress, when non-nil, is
// called about every progressCellInterval cells and once more at completion.
func (g *Generator) Generate(ctx context.Context, routers []*propagation.RouterConfiguration, room *geom.RoomModel, resolutionM float64, progress ProgressFunc) (*Map, error) {
	if room == nil || len(routers) == 0 {
		return nil, nil
	}
	if resolutionM <= 0 {
		resolutionM = DefaultGridResolutionM
	}
	started := time.Now()

	size := room.Bounds.Size()
	cols := int(size.X / resolutionM)
	rows := int(size.Y / resolutionM)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	evalZ := room.Bounds.Min.Z + DefaultEvalHeightM

	m := &Map{
		RoomID:      room.ID,
		Bounds:      room.Bounds,
		ResolutionM: resolutionM,
		EvalHeightM: DefaultEvalHeightM,
		Cols:        cols,
		Rows:        rows,
		Cells:       make([]Cell, 0, cols*rows),
		GeneratedAt: started,
	}

	total := cols * rows
	usable := 0
	redundant := 0
	sumRssi := DbValue(0)
	sumRssiSq := float64(0)
	done := 0

	for row := 0; row < rows; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cy := room.Bounds.Min.Y + (float64(row)+0.5)*resolutionM
		for col := 0; col < cols; col++ {
			center := Point3D{X: room.Bounds.Min.X + (float64(col)+0.5)*resolutionM, Y: cy, Z: evalZ}
			cell := g.evaluateCell(center, routers, room)
			if cell.BestRssiDbm >= UsableSignalThresholdDbm {
				usable++
			}
			if cell.Redundancy >= 2 {
				redundant++
			}
			sumRssi += cell.BestRssiDbm
			sumRssiSq += float64(cell.BestRssiDbm * cell.BestRssiDbm)
			m.Cells = append(m.Cells, cell)

			done++
			if progress != nil && done%progressCellInterval == 0 {
				progress(float64(done) / float64(total))
			}
		}
	}

	m.Stats = Statistics{
		TotalCells:           total,
		CoveragePercentage:   float64(usable) / float64(total),
		RedundancyPercentage: float64(redundant) / float64(total),
		MeanSignalDbm:        sumRssi / DbValue(total),
	}
	m.Stats.Uniformity = uniformity(sumRssiSq, float64(m.Stats.MeanSignalDbm), total)
	m.Stats.QualityScore = qualityScore(m.Stats)
	m.DeadZones = findDeadZones(m)

	if progress != nil {
		progress(1.0)
	}
	g.metrics.ObserveCoverage(total, time.Since(started))
	return m, nil
}

func (g *Generator) evaluateCell(center Point3D, routers []*propagation.RouterConfiguration, room *geom.RoomModel) Cell {
	cell := Cell{Center: center, BestRssiDbm: RssiFloorDbm}
	for _, rt := range routers {
		pred := g.model.Predict(rt, center, room)
		if pred == nil {
			continue
		}
		if pred.BestRssiDbm >= UsableSignalThresholdDbm {
			cell.Redundancy++
		}
		if pred.BestRssiDbm > cell.BestRssiDbm || cell.BestRouter == "" {
			cell.BestRssiDbm = pred.BestRssiDbm
			cell.BestBand = pred.BestBand
			cell.BestRouter = rt.ID
		}
	}
	cell.Quality = QualityForRssi(cell.BestRssiDbm)
	return cell
}

// uniformity maps the standard deviation of the best-RSSI distribution onto
// [0,1], where 1 means a perfectly even signal across the room.
func uniformity(sumSq, mean float64, total int) float64 {
	variance := sumSq/float64(total) - mean*mean
	if variance < 0 {
		variance = 0
	}
	u := 1 - math.Sqrt(variance)/uniformityNormalizationDb
	if u < 0 {
		u = 0
	}
	return u
}

// qualityScore blends coverage fraction with mean signal normalized over the
// plausible RSSI window.
func qualityScore(s Statistics) float64 {
	norm := (s.MeanSignalDbm - RssiFloorDbm) / (RssiExcellentDbm - RssiFloorDbm)
	if norm < 0 {
		norm = 0
	} else if norm > 1 {
		norm = 1
	}
	return 0.7*s.CoveragePercentage + 0.3*norm
}

// findDeadZones groups below-poor-threshold cells into contiguous regions
// with a 4-neighbor flood fill.
func findDeadZones(m *Map) []DeadZone {
	var zones []DeadZone
	visited := make([]bool, len(m.Cells))
	half := m.ResolutionM / 2

	for i := range m.Cells {
		if visited[i] || m.Cells[i].BestRssiDbm >= RssiFairDbm {
			continue
		}
		// grow a region from cell i
		var stack []int
		stack = append(stack, i)
		visited[i] = true
		bounds := geom.BoundingBox{Min: m.Cells[i].Center, Max: m.Cells[i].Center}
		cells := 0
		sumBelow := DbValue(0)

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			c := &m.Cells[idx]
			cells++
			sumBelow += RssiFairDbm - c.BestRssiDbm
			bounds = bounds.Union(geom.BoundingBox{
				Min: Point3D{X: c.Center.X - half, Y: c.Center.Y - half, Z: c.Center.Z},
				Max: Point3D{X: c.Center.X + half, Y: c.Center.Y + half, Z: c.Center.Z},
			})

			col := idx % m.Cols
			row := idx / m.Cols
			for _, n := range [][2]int{{col - 1, row}, {col + 1, row}, {col, row - 1}, {col, row + 1}} {
				if n[0] < 0 || n[0] >= m.Cols || n[1] < 0 || n[1] >= m.Rows {
					continue
				}
				nIdx := n[1]*m.Cols + n[0]
				if !visited[nIdx] && m.Cells[nIdx].BestRssiDbm < RssiFairDbm {
					visited[nIdx] = true
					stack = append(stack, nIdx)
				}
			}
		}

		severity := (sumBelow / DbValue(cells)) / (RssiFairDbm - RssiFloorDbm)
		if severity > 1 {
			severity = 1
		}
		zones = append(zones, DeadZone{
			Bounds:   bounds,
			Center:   bounds.Center(),
			Cells:    cells,
			Severity: severity,
		})
	}
	return zones
}
