/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mailserver

import (
	"errors"

	"github.com/neilalexander/mailmesh/internal/graph"
	"github.com/neilalexander/mailmesh/internal/mailbox"
)

var (
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrSenderNotFound      = errors.New("sender not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrServerNotFound      = errors.New("server not found")
	ErrServerAlreadyExists = errors.New("server already exists")
	ErrInvalidUser         = errors.New("invalid user name")

	ErrNoRouteFound  = graph.ErrNoRoute
	ErrInvalidServer = graph.ErrInvalidServer
	ErrNoSuchFolder  = mailbox.ErrNoSuchFolder
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrUserAlreadyExists, "UserAlreadyExists"},
	{ErrUserNotFound, "UserNotFound"},
	{ErrSenderNotFound, "SenderNotFound"},
	{ErrRecipientNotFound, "RecipientNotFound"},
	{ErrServerNotFound, "ServerNotFound"},
	{ErrServerAlreadyExists, "ServerAlreadyExists"},
	{ErrInvalidUser, "InvalidUser"},
	{ErrNoRouteFound, "NoRouteFound"},
	{ErrInvalidServer, "InvalidServer"},
	{ErrNoSuchFolder, "NoSuchFolder"},
}

// Kind returns the stable name of a network error, or "" if err is nil or
// not one of the errors above.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
