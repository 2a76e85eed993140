/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package scenario

import (
	"fmt"

	"github.com/neilalexander/mailmesh/internal/mailserver"
	"github.com/neilalexander/mailmesh/internal/nice"
	"github.com/neilalexander/mailmesh/internal/utils"
)

// Result is the outcome of one step. Kind is the network error kind, or
// empty when the step succeeded or failed for another reason.
type Result struct {
	Step int
	Op   string
	Err  error
	Kind string
}

type Runner struct {
	Network *mailserver.Network
	Printer *nice.Printer
}

// Run executes every step in order. A failing step is reported and the
// script carries on.
func (r *Runner) Run(script *Script) []Result {
	results := make([]Result, 0, len(script.Steps))
	for i := range script.Steps {
		step := &script.Steps[i]
		op, err := step.Op()
		if err == nil {
			err = r.apply(step)
		}
		res := Result{
			Step: i + 1,
			Op:   op,
			Err:  err,
			Kind: mailserver.Kind(err),
		}
		if err != nil {
			r.Printer.Error(fmt.Sprintf("step %d (%s)", res.Step, op), err)
		}
		results = append(results, res)
	}
	return results
}

// Failed counts the steps that returned an error.
func Failed(results []Result) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	return failed
}

func (r *Runner) apply(step *Step) error {
	n := r.Network
	switch {
	case step.Server != nil:
		return n.AddServer(step.Server.Name)

	case step.Connect != nil:
		return n.Connect(step.Connect.A, step.Connect.B)

	case step.Register != nil:
		return n.RegisterUser(step.Register.Server, step.Register.User)

	case step.Send != nil:
		user, server, err := utils.ParseAddress(step.Send.From)
		if err != nil {
			return err
		}
		toUser, toServer, err := utils.ParseAddress(step.Send.To)
		if err != nil {
			return err
		}
		receipt, err := n.Send(server, user, toServer, toUser, step.Send.Body, step.Send.Urgent)
		if err != nil {
			return err
		}
		r.Printer.Receipt(receipt)

	case step.Drain != nil:
		user, server, err := utils.ParseAddress(step.Drain.User)
		if err != nil {
			return err
		}
		msgs, err := n.DrainUrgent(server, user)
		if err != nil {
			return err
		}
		r.Printer.Urgent(utils.CreateAddress(user, server), msgs)

	case step.Show != nil:
		user, server, err := utils.ParseAddress(step.Show.User)
		if err != nil {
			return err
		}
		snap, err := n.ListMailbox(server, user)
		if err != nil {
			return err
		}
		r.Printer.Mailbox(utils.CreateAddress(user, server), snap)

	case step.Users != nil:
		users, err := n.ListUsers(step.Users.Server)
		if err != nil {
			return err
		}
		r.Printer.Users(step.Users.Server, users)

	case step.Route != nil:
		route, err := n.Route(step.Route.From, step.Route.To)
		if err != nil {
			return err
		}
		r.Printer.Route(route)
	}
	return nil
}
