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
	"github.com/alecthomas/participle"
)

// noinspection GoStructTag
type Command struct {
	Add         *AddCmd         `parser:"  @@"` //nolint
	Calibration *CalibrationCmd `parser:"| @@"` //nolint
	Coverage    *CoverageCmd    `parser:"| @@"` //nolint
	Del         *DelCmd         `parser:"| @@"` //nolint
	Devices     *DevicesCmd     `parser:"| @@"` //nolint
	Exit        *ExitCmd        `parser:"| @@"` //nolint
	Extenders   *ExtendersCmd   `parser:"| @@"` //nolint
	Help        *HelpCmd        `parser:"| @@"` //nolint
	Load        *LoadCmd        `parser:"| @@"` //nolint
	LogLevel    *LogLevelCmd    `parser:"| @@"` //nolint
	Optimize    *OptimizeCmd    `parser:"| @@"` //nolint
	Predict     *PredictCmd     `parser:"| @@"` //nolint
	Room        *RoomCmd        `parser:"| @@"` //nolint
	Routers     *RoutersCmd     `parser:"| @@"` //nolint
	Save        *SaveCmd        `parser:"| @@"` //nolint
	Validate    *ValidateCmd    `parser:"| @@"` //nolint
}

// Coordinate is a (possibly negative) scalar; the default lexer has no
// signed-number token.
//
// noinspection GoStructTag
type Coordinate struct {
	Neg bool    `parser:"[ @'-' ]"`      //nolint
	Val float64 `parser:"(@Float|@Int)"` //nolint
}

func (c *Coordinate) Value() float64 {
	if c.Neg {
		return -c.Val
	}
	return c.Val
}

// noinspection GoStructTag
type AddCmd struct {
	Cmd   struct{}   `parser:"'add' 'router'"`               //nolint
	ID    string     `parser:"(@Ident|@String)"`             //nolint
	X     Coordinate `parser:"@@"`                           //nolint
	Y     Coordinate `parser:"@@"`                           //nolint
	Z     Coordinate `parser:"@@"`                           //nolint
	Model *string    `parser:"[ 'model' (@String|@Ident) ]"` //nolint
}

// noinspection GoStructTag
type DelCmd struct {
	Cmd struct{} `parser:"'del'"`            //nolint
	ID  string   `parser:"(@Ident|@String)"` //nolint
}

// noinspection GoStructTag
type RoutersCmd struct {
	Cmd struct{} `parser:"'routers'"` //nolint
}

// noinspection GoStructTag
type DevicesCmd struct {
	Cmd struct{} `parser:"'devices'"` //nolint
}

// noinspection GoStructTag
type RoomCmd struct {
	Cmd struct{} `parser:"'room'"` //nolint
}

// noinspection GoStructTag
type PredictCmd struct {
	Cmd struct{}   `parser:"'predict'"` //nolint
	X   Coordinate `parser:"@@"`        //nolint
	Y   Coordinate `parser:"@@"`        //nolint
	Z   Coordinate `parser:"@@"`        //nolint
}

// noinspection GoStructTag
type CoverageCmd struct {
	Cmd        struct{} `parser:"'coverage'"`         //nolint
	Resolution *float64 `parser:"[ (@Float|@Int) ]"`  //nolint
	Save       *string  `parser:"[ 'save' @String ]"` //nolint
}

// noinspection GoStructTag
type OptimizeCmd struct {
	Cmd struct{} `parser:"'optimize'"` //nolint
	Max *int     `parser:"[ @Int ]"`   //nolint
}

// noinspection GoStructTag
type ExtendersCmd struct {
	Cmd    struct{} `parser:"'extenders'"`       //nolint
	Target *float64 `parser:"[ (@Float|@Int) ]"` //nolint
}

// noinspection GoStructTag
type ValidateCmd struct {
	Cmd  struct{} `parser:"'validate'"` //nolint
	File string   `parser:"@String"`    //nolint
}

// noinspection GoStructTag
type CalibrationCmd struct {
	Cmd struct{} `parser:"'calibration'"` //nolint
}

// noinspection GoStructTag
type LoadCmd struct {
	Cmd  struct{} `parser:"'load'"`  //nolint
	File string   `parser:"@String"` //nolint
}

// noinspection GoStructTag
type SaveCmd struct {
	Cmd  struct{} `parser:"'save'"`      //nolint
	File *string  `parser:"[ @String ]"` //nolint
}

// noinspection GoStructTag
type LogLevelCmd struct {
	Cmd   struct{} `parser:"'log'"`      //nolint
	Level *string  `parser:"[ @Ident ]"` //nolint
}

// noinspection GoStructTag
type HelpCmd struct {
	Cmd       struct{} `parser:"'help'"`       //nolint
	HelpTopic string   `parser:"[ (@Ident) ]"` //nolint
}

// noinspection GoStructTag
type ExitCmd struct {
	Cmd struct{} `parser:"'exit'"` //nolint
}

var (
	commandParser = participle.MustBuild(&Command{})
)

func parseBytes(b []byte, cmd *Command) error {
	return commandParser.ParseBytes(b, cmd)
}
