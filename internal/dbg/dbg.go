// Copyright 2025 The dynpb Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dbg provides a trace logging hook, switched on at run time by a
// non-empty DYNPB_TRACE environment variable. It exists so that the arena
// and decoder can leave breadcrumbs at their hottest call sites at little
// cost when disabled.
package dbg

import (
	"fmt"
	"os"
)

// Enabled gates all trace output. It is a var, not a const, so that tests can
// flip it on; when it is off, Log returns at once, so the caller's argument
// evaluation and the call itself are the only cost.
var Enabled = os.Getenv("DYNPB_TRACE") != ""

// Log writes a trace line of the form "<prefix> <op>: <format>" to stderr
// when Enabled is true. It is a no-op otherwise.
func Log(prefix any, op, format string, args ...any) {
	if !Enabled {
		return
	}
	if prefix != nil {
		fmt.Fprintf(os.Stderr, "dynpb: %v %s: "+format+"\n", append([]any{prefix, op}, args...)...)
		return
	}
	fmt.Fprintf(os.Stderr, "dynpb: %s: "+format+"\n", append([]any{op}, args...)...)
}
