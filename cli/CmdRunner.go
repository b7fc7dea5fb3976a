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

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wiplan/wiplan/logger"
	"github.com/wiplan/wiplan/planner"
	"github.com/wiplan/wiplan/progctx"
	. "github.com/wiplan/wiplan/types"
)

const (
	Prompt = "> "
)

type CommandContext struct {
	context.Context
	*Command
	rt     *CmdRunner
	err    error
	output io.Writer
}

func (cc *CommandContext) outputStr(msg string) {
	_, _ = fmt.Fprint(cc.output, msg)
}

func (cc *CommandContext) outputf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cc.output, format, args...)
}

func (cc *CommandContext) errorf(format string, args ...interface{}) {
	cc.error(errors.Errorf(format, args...))
}

func (cc *CommandContext) error(err error) {
	if err != nil {
		if cc.err != nil { // if previous error, print it now and keep the last.
			cc.outputf("Error: %s\n", cc.err)
		}
		cc.err = err
	}
}

// Err returns the last error that occurred during command execution.
func (cc *CommandContext) Err() error {
	return cc.err
}

func (cc *CommandContext) outputItemsAsYaml(items interface{}) {
	var itemsYaml yaml.Node

	err := itemsYaml.Encode(items)
	logger.PanicIfError(err)

	for _, content := range itemsYaml.Content {
		content.Style = yaml.FlowStyle
	}

	data, err := yaml.Marshal(&itemsYaml)
	logger.PanicIfError(err)

	_, err = cc.output.Write(data)
	logger.PanicIfError(err)
}

type CmdRunner struct {
	pl   *planner.Planner
	ctx  *progctx.ProgCtx
	help Help
}

func NewCmdRunner(ctx *progctx.ProgCtx, pl *planner.Planner) *CmdRunner {
	return &CmdRunner{
		ctx:  ctx,
		pl:   pl,
		help: newHelp(),
	}
}

func (rt *CmdRunner) RunCommand(cmdline string, output io.Writer) error {
	if rt.ctx.Err() == nil {
		cmd := Command{}

		if err := parseBytes([]byte(cmdline), &cmd); err != nil {
			if _, err := fmt.Fprintf(output, "Error: %v\n", err); err != nil {
				return err
			}
		} else {
			rt.execute(&cmd, output)
		}
	}
	return rt.ctx.Err()
}

func (rt *CmdRunner) GetPrompt() string {
	return Prompt
}

func (rt *CmdRunner) execute(cmd *Command, output io.Writer) {
	cc := &CommandContext{
		Command: cmd,
		rt:      rt,
		output:  output,
	}

	defer func() {
		if cc.Err() != nil {
			cc.outputf("Error: %v\n", cc.Err())
		} else {
			cc.outputf("Done\n")
		}
	}()

	defer func() {
		rerr := recover()

		if rerr != nil {
			if err, ok := rerr.(error); ok {
				cc.err = errors.Wrapf(err, "panic: %v", err)
			} else {
				cc.err = errors.Errorf("panic: %v", rerr)
			}
		}
	}()

	if cmd.Load != nil {
		rt.executeLoad(cc, cmd.Load)
	} else if cmd.Save != nil {
		rt.executeSave(cc, cmd.Save)
	} else if cmd.Room != nil {
		rt.executeRoom(cc)
	} else if cmd.Add != nil {
		rt.executeAddRouter(cc, cmd.Add)
	} else if cmd.Del != nil {
		rt.executeDelRouter(cc, cmd.Del)
	} else if cmd.Routers != nil {
		rt.executeLsRouters(cc)
	} else if cmd.Devices != nil {
		rt.executeLsDevices(cc)
	} else if cmd.Predict != nil {
		rt.executePredict(cc, cmd.Predict)
	} else if cmd.Coverage != nil {
		rt.executeCoverage(cc, cmd.Coverage)
	} else if cmd.Optimize != nil {
		rt.executeOptimize(cc, cmd.Optimize)
	} else if cmd.Extenders != nil {
		rt.executeExtenders(cc, cmd.Extenders)
	} else if cmd.Validate != nil {
		rt.executeValidate(cc, cmd.Validate)
	} else if cmd.Calibration != nil {
		rt.executeCalibration(cc)
	} else if cmd.LogLevel != nil {
		rt.executeLogLevel(cc, cmd.LogLevel)
	} else if cmd.Help != nil {
		rt.executeHelp(cc, cmd.Help)
	} else if cmd.Exit != nil {
		rt.executeExit(cc)
	} else {
		cc.errorf("unimplemented command: %#v", cmd)
	}
}

func (rt *CmdRunner) executeLoad(cc *CommandContext, cmd *LoadCmd) {
	cc.error(rt.pl.LoadScenario(cmd.File))
}

func (rt *CmdRunner) executeSave(cc *CommandContext, cmd *SaveCmd) {
	fn := ""
	if cmd.File != nil {
		fn = *cmd.File
	}
	cc.error(rt.pl.SaveReport(fn))
}

func (rt *CmdRunner) executeRoom(cc *CommandContext) {
	room := rt.pl.Room()
	if room == nil {
		cc.outputf("no room configured\n")
		return
	}
	size := room.Bounds.Size()
	cc.outputf("room %q (%s): %.1f x %.1f x %.1f m, %d walls, %d openings, %d furniture\n",
		room.Name, room.ID, size.X, size.Y, size.Z,
		len(room.Walls), len(room.Openings), len(room.Furniture))
}

func (rt *CmdRunner) executeAddRouter(cc *CommandContext, cmd *AddCmd) {
	model := ""
	if cmd.Model != nil {
		model = *cmd.Model
	}
	pos := Point3D{X: cmd.X.Value(), Y: cmd.Y.Value(), Z: cmd.Z.Value()}
	r, err := rt.pl.AddRouter(cmd.ID, pos, model)
	if err != nil {
		cc.error(err)
		return
	}
	cc.outputf("%s %s @ (%.1f, %.1f, %.1f)\n", r.ID, r.Device.Model, pos.X, pos.Y, pos.Z)
}

func (rt *CmdRunner) executeDelRouter(cc *CommandContext, cmd *DelCmd) {
	cc.error(rt.pl.RemoveRouter(cmd.ID))
}

func (rt *CmdRunner) executeLsRouters(cc *CommandContext) {
	type routerItem struct {
		ID    string  `yaml:"id"`
		X     float64 `yaml:"x"`
		Y     float64 `yaml:"y"`
		Z     float64 `yaml:"z"`
		Model string  `yaml:"model"`
	}
	items := make([]routerItem, 0)
	for _, r := range rt.pl.Routers() {
		items = append(items, routerItem{
			ID: r.ID, X: r.Position.X, Y: r.Position.Y, Z: r.Position.Z,
			Model: r.Device.Model,
		})
	}
	cc.outputItemsAsYaml(items)
}

func (rt *CmdRunner) executeLsDevices(cc *CommandContext) {
	type deviceItem struct {
		Model    string   `yaml:"model"`
		Vendor   string   `yaml:"vendor"`
		Bands    []string `yaml:"bands"`
		Extender bool     `yaml:"extender"`
	}
	items := make([]deviceItem, 0)
	for _, d := range rt.pl.Catalog() {
		bands := make([]string, 0, BandCount)
		for _, b := range d.SupportedBands() {
			bands = append(bands, b.String())
		}
		items = append(items, deviceItem{
			Model: d.Model, Vendor: d.Manufacturer, Bands: bands, Extender: d.IsExtender,
		})
	}
	cc.outputItemsAsYaml(items)
}

func (rt *CmdRunner) executePredict(cc *CommandContext, cmd *PredictCmd) {
	loc := Point3D{X: cmd.X.Value(), Y: cmd.Y.Value(), Z: cmd.Z.Value()}
	pred := rt.pl.PredictAt(loc)
	if pred == nil {
		cc.errorf("no routers configured")
		return
	}
	cc.outputf("best %s %.1f dBm (%s), confidence %.2f\n",
		pred.BestBand, pred.BestRssiDbm, pred.Quality, pred.Confidence)
	for _, b := range AllBands() {
		bp, ok := pred.Bands[b]
		if !ok {
			continue
		}
		cc.outputf("  %-7s %6.1f dBm  confidence %.2f\n", b, bp.RssiDbm, bp.Confidence)
	}
}

func (rt *CmdRunner) executeCoverage(cc *CommandContext, cmd *CoverageCmd) {
	res := 0.0
	if cmd.Resolution != nil {
		res = *cmd.Resolution
	}
	m, err := rt.pl.GenerateCoverage(res, func(fraction float64) {
		cc.outputf("\rsampling %3.0f%%", fraction*100)
	})
	cc.outputStr("\n")
	if err != nil {
		cc.error(err)
		return
	}
	if m == nil {
		cc.errorf("room and routers must be configured first")
		return
	}
	cc.outputf("grid %dx%d @ %.2f m, coverage %.1f%%, redundancy %.1f%%, mean %.1f dBm, quality %.2f\n",
		m.Cols, m.Rows, m.ResolutionM,
		m.Stats.CoveragePercentage*100, m.Stats.RedundancyPercentage*100,
		m.Stats.MeanSignalDbm, m.Stats.QualityScore)
	for i, dz := range m.DeadZones {
		cc.outputf("dead zone %d: %d cells near (%.1f, %.1f), severity %.2f\n",
			i+1, dz.Cells, dz.Center.X, dz.Center.Y, dz.Severity)
	}
	if cmd.Save != nil {
		cc.error(rt.pl.SaveReport(*cmd.Save))
	}
}

func (rt *CmdRunner) executeOptimize(cc *CommandContext, cmd *OptimizeCmd) {
	max := 0
	if cmd.Max != nil {
		max = *cmd.Max
	}
	recs, err := rt.pl.OptimizePlacement(max)
	if err != nil {
		cc.error(err)
		return
	}
	if recs == nil {
		cc.errorf("a room must be loaded first")
		return
	}
	for i, r := range recs {
		cc.outputf("%d. (%.1f, %.1f, %.1f) score %.3f [%s]\n   %s\n",
			i+1, r.Position.X, r.Position.Y, r.Position.Z,
			r.Evaluation.OverallScore, r.SourceName, r.Justification)
	}
}

func (rt *CmdRunner) executeExtenders(cc *CommandContext, cmd *ExtendersCmd) {
	target := 0.0
	if cmd.Target != nil {
		target = *cmd.Target
	}
	strategy, err := rt.pl.OptimizeExtenders(target)
	if err != nil {
		cc.error(err)
		return
	}
	if strategy == nil {
		cc.errorf("room and routers must be configured first")
		return
	}
	cc.outputf("baseline coverage %.1f%%, target %.1f%%, recommended %d extender(s)\n",
		strategy.Gap.BaselineCoverage*100, strategy.Gap.TargetCoverage*100,
		strategy.RecommendedCount)
	for i, e := range strategy.Extenders {
		cc.outputf("%d. (%.1f, %.1f, %.1f)  %s\n",
			i+1, e.Position.X, e.Position.Y, e.Position.Z, e.Justification)
	}
	verdict := "not met"
	if strategy.RequirementsMet {
		verdict = "met"
	}
	cc.outputf("projected coverage %.1f%%, quality requirements %s\n",
		strategy.ProjectedCoverage*100, verdict)
}

func (rt *CmdRunner) executeValidate(cc *CommandContext, cmd *ValidateCmd) {
	measurements, err := planner.LoadMeasurements(cmd.File)
	if err != nil {
		cc.error(err)
		return
	}
	res := rt.pl.Validate(measurements)
	cc.outputf("validated %d point(s): accuracy %.2f, mean error %.1f dB\n",
		res.ValidationPoints, res.Accuracy, res.MeanErrorDb)
	if res.LowConfidence {
		cc.outputf("warning: too few points, results are low-confidence\n")
	}
	if res.RecalibrationNeeded {
		cc.outputf("warning: model error is high, recalibration advised\n")
	}
}

func (rt *CmdRunner) executeCalibration(cc *CommandContext) {
	hist := rt.pl.Validator().History()
	cc.outputf("%d calibration point(s) accumulated\n", len(hist))
	if len(hist) == 0 {
		return
	}
	var sum DbValue
	for _, p := range hist {
		sum += p.ErrorDb
	}
	cc.outputf("mean error %.1f dB over full history\n", sum/DbValue(len(hist)))
}

func (rt *CmdRunner) executeLogLevel(cc *CommandContext, cmd *LogLevelCmd) {
	if cmd.Level == nil {
		cc.outputf("%s\n", logger.LevelToString(logger.GetLevel()))
		return
	}
	lv, err := logger.ParseLevelString(*cmd.Level)
	if err != nil {
		cc.error(err)
		return
	}
	logger.SetLevel(lv)
}

func (rt *CmdRunner) executeHelp(cc *CommandContext, cmd *HelpCmd) {
	if len(cmd.HelpTopic) == 0 {
		cc.outputStr(rt.help.outputGeneralHelp())
	} else {
		cc.outputStr(rt.help.outputCommandHelp(cmd.HelpTopic))
	}
}

func (rt *CmdRunner) executeExit(cc *CommandContext) {
	rt.ctx.Cancel("exit")
}
