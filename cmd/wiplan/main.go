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

// wiplan is the interactive indoor WiFi planning console.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wiplan/wiplan/cli"
	"github.com/wiplan/wiplan/logger"
	"github.com/wiplan/wiplan/observability"
	"github.com/wiplan/wiplan/planner"
	"github.com/wiplan/wiplan/progctx"
	"github.com/wiplan/wiplan/propagation"
	. "github.com/wiplan/wiplan/types"
)

type mainArgs struct {
	LogLevel    string
	Profile     string
	ShadowSigma float64
	Seed        int64
	MetricsAddr string
	Scenario    string
}

var args mainArgs

func parseArgs() {
	// .env provides site defaults; flags override.
	_ = godotenv.Load()

	defaultSeed := int64(0)
	if s := os.Getenv("WIPLAN_SEED"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			defaultSeed = v
		}
	}

	flag.StringVar(&args.LogLevel, "log", envOr("WIPLAN_LOG", "info"),
		"set logging level: trace, debug, info, note, warn, error, off.")
	flag.StringVar(&args.Profile, "profile", envOr("WIPLAN_PROFILE", "residential"),
		"indoor environment profile: residential or enterprise.")
	flag.Float64Var(&args.ShadowSigma, "shadow-sigma", 0,
		"shadow fading std-dev in dB (0 disables fading).")
	flag.Int64Var(&args.Seed, "seed", defaultSeed,
		"random seed for reproducible fading (0 uses the clock).")
	flag.StringVar(&args.MetricsAddr, "metrics", envOr("WIPLAN_METRICS_ADDR", ""),
		"listen address for Prometheus metrics (empty disables).")
	flag.Parse()

	if flag.NArg() > 0 {
		args.Scenario = flag.Arg(0)
	} else {
		args.Scenario = os.Getenv("WIPLAN_SCENARIO")
	}
}

func envOr(key, dflt string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return dflt
}

func main() {
	parseArgs()

	lv, err := logger.ParseLevelString(args.LogLevel)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	logger.SetLevel(lv)

	ctx := progctx.New(context.Background())
	ctx.Defer(func() {
		_ = os.Stdin.Close()
	})
	handleSignals(ctx)

	cfg := planner.DefaultConfig()
	cfg.ShadowSigmaDb = DbValue(args.ShadowSigma)
	cfg.RandomSeed = args.Seed
	cfg.ScenarioFile = args.Scenario
	switch args.Profile {
	case "residential":
		cfg.Profile = propagation.ProfileResidential
	case "enterprise":
		cfg.Profile = propagation.ProfileEnterprise
	default:
		logger.Fatalf("unknown profile: %s", args.Profile)
	}

	if args.MetricsAddr != "" {
		collector, err := observability.NewCollector(prometheus.NewRegistry())
		if err != nil {
			logger.Fatalf("metrics setup failed: %v", err)
		}
		cfg.Metrics = collector
		serveMetrics(ctx, collector, args.MetricsAddr)
	}

	// NewPlanner loads cfg.ScenarioFile, if any, as part of session setup.
	pl := planner.NewPlanner(ctx, cfg)

	// run console in the main goroutine
	cli.Run(ctx, pl)

	logger.Debugf("waiting for wiplan to stop gracefully ...")
	ctx.Wait()
}

func serveMetrics(ctx *progctx.ProgCtx, collector *observability.Collector, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	ctx.Defer(func() {
		_ = srv.Close()
	})

	ctx.WaitAdd("metrics", 1)
	go func() {
		defer ctx.WaitDone("metrics")
		logger.Infof("metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed && ctx.Err() == nil {
			logger.Errorf("metrics server stopped unexpectedly: %v", err)
		}
	}()
}

func handleSignals(ctx *progctx.ProgCtx) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)

	ctx.WaitAdd("handleSignals", 1)
	go func() {
		defer logger.Debugf("handleSignals exit.")
		defer ctx.WaitDone("handleSignals")

		for {
			select {
			case sig := <-c:
				logger.Infof("signal received: %v", sig)
				ctx.Cancel(nil)
			case <-ctx.Done():
				return
			}
		}
	}()
}
