/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package logging builds the leveled loggers used by every component.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	gologme "github.com/gologme/log"
)

// Levels in increasing verbosity. Enabling one level enables every level
// before it.
var Levels = []string{"error", "warn", "info", "debug", "trace"}

// New returns a logger writing to w with a coloured "[ name ]" prefix that
// prints every level up to and including level.
func New(w io.Writer, name, level string) (*gologme.Logger, error) {
	enabled, err := levelsUpTo(level)
	if err != nil {
		return nil, err
	}
	yellow := color.New(color.FgYellow).SprintfFunc()
	log := gologme.New(w, fmt.Sprintf("[ %s ] ", yellow(name)), gologme.LstdFlags|gologme.Lmsgprefix)
	for _, l := range enabled {
		log.EnableLevel(l)
	}
	return log, nil
}

// Discard returns a logger that drops everything, for tests and embedders
// that do not want output.
func Discard() *gologme.Logger {
	return gologme.New(io.Discard, "", 0)
}

// Valid reports whether level is one of Levels.
func Valid(level string) bool {
	_, err := levelsUpTo(level)
	return err == nil
}

func levelsUpTo(level string) ([]string, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	for i, l := range Levels {
		if l == level {
			return Levels[:i+1], nil
		}
	}
	return nil, fmt.Errorf("unknown log level %q (want one of %s)", level, strings.Join(Levels, ", "))
}
