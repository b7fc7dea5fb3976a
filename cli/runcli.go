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

// Package cli implements the wiplan console. It parses and executes planner
// commands.
package cli

import (
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"

	"github.com/wiplan/wiplan/logger"
	"github.com/wiplan/wiplan/planner"
	"github.com/wiplan/wiplan/progctx"
)

// Run runs the interactive console until exit or program cancellation.
func Run(ctx *progctx.ProgCtx, pl *planner.Planner) {
	var err error
	defer func() {
		ctx.Cancel(errors.Wrapf(err, "console exit"))
	}()

	ctx.WaitAdd("cli", 1)
	defer ctx.WaitDone("cli")

	err = run(ctx, pl)
}

func run(ctx *progctx.ProgCtx, pl *planner.Planner) error {
	cr := NewCmdRunner(ctx, pl)

	stdinFd := int(os.Stdin.Fd())
	stdinIsTerminal := readline.IsTerminal(stdinFd)
	if stdinIsTerminal {
		stdinState, err := readline.GetState(stdinFd)
		if err != nil {
			return err
		}
		defer func() {
			_ = readline.Restore(stdinFd, stdinState)
		}()
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          cr.GetPrompt(),
		HistoryFile:     "/tmp/wiplan-cmds.tmp",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold: true,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			switch r {
			// block CtrlZ feature
			case readline.CharCtrlZ:
				return r, false
			}
			return r, true
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = l.Close()
	}()

	for {
		line, err := l.Readline()

		if ctx.Err() != nil {
			// program exited, quit console too
			return nil
		}

		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		if err := cr.RunCommand(line, os.Stdout); err != nil {
			return err
		}

		_ = os.Stdout.Sync()
	}
}

// RunScript executes a newline-separated command script, for non-interactive
// use. Execution stops at the first I/O failure; command errors are printed
// and skipped, same as in the console.
func RunScript(ctx *progctx.ProgCtx, pl *planner.Planner, script string, output io.Writer) error {
	cr := NewCmdRunner(ctx, pl)
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		logger.Debugf("script: %s", line)
		if err := cr.RunCommand(line, output); err != nil {
			return err
		}
	}
	return nil
}
