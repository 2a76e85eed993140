/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package scenario runs scripted sequences of network operations.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Script is an ordered list of steps, for example:
//
//	steps:
//	  - server: {name: yahoo}
//	  - connect: {a: outlook, b: yahoo}
//	  - register: {server: yahoo, user: carol}
//	  - send: {from: alice@gmail, to: carol@yahoo, body: "Gran oferta"}
//	  - show: {user: carol@yahoo}
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step holds exactly one operation.
type Step struct {
	Server   *ServerStep   `yaml:"server,omitempty"`
	Connect  *ConnectStep  `yaml:"connect,omitempty"`
	Register *RegisterStep `yaml:"register,omitempty"`
	Send     *SendStep     `yaml:"send,omitempty"`
	Drain    *UserStep     `yaml:"drain,omitempty"`
	Show     *UserStep     `yaml:"show,omitempty"`
	Users    *UsersStep    `yaml:"users,omitempty"`
	Route    *RouteStep    `yaml:"route,omitempty"`
}

type ServerStep struct {
	Name string `yaml:"name"`
}

type ConnectStep struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

type RegisterStep struct {
	Server string `yaml:"server"`
	User   string `yaml:"user"`
}

type SendStep struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Body   string `yaml:"body"`
	Urgent bool   `yaml:"urgent,omitempty"`
}

// UserStep names a user as "user@server".
type UserStep struct {
	User string `yaml:"user"`
}

type UsersStep struct {
	Server string `yaml:"server"`
}

type RouteStep struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

var ErrBadStep = errors.New("step must hold exactly one operation")

// Op names the operation a step holds.
func (s *Step) Op() (string, error) {
	var ops []string
	if s.Server != nil {
		ops = append(ops, "server")
	}
	if s.Connect != nil {
		ops = append(ops, "connect")
	}
	if s.Register != nil {
		ops = append(ops, "register")
	}
	if s.Send != nil {
		ops = append(ops, "send")
	}
	if s.Drain != nil {
		ops = append(ops, "drain")
	}
	if s.Show != nil {
		ops = append(ops, "show")
	}
	if s.Users != nil {
		ops = append(ops, "users")
	}
	if s.Route != nil {
		ops = append(ops, "route")
	}
	if len(ops) != 1 {
		return "", fmt.Errorf("%w, found %d", ErrBadStep, len(ops))
	}
	return ops[0], nil
}

// Parse reads a script and checks that every step holds one operation.
// Unknown keys are rejected.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	script := &Script{}
	if err := dec.Decode(script); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dec.Decode: %w", err)
	}
	for i := range script.Steps {
		if _, err := script.Steps[i].Op(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return script, nil
}

func Load(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}
	return Parse(bytes.NewReader(b))
}
