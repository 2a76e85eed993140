/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package types

import (
	"strings"
	"time"
)

// Delivery is one row of the delivery journal.
type Delivery struct {
	ID              int64
	MessageID       uint64
	Sender          string
	SenderServer    string
	Recipient       string
	RecipientServer string
	Route           []string
	Folder          string
	Subject         string
	Urgent          bool
	Delivered       time.Time
}

// Query narrows a journal listing. Empty fields match everything and a
// zero Limit returns every row.
type Query struct {
	Server string
	User   string
	Limit  int
}

const routeSeparator = ","

func JoinRoute(route []string) string {
	return strings.Join(route, routeSeparator)
}

func SplitRoute(route string) []string {
	if route == "" {
		return nil
	}
	return strings.Split(route, routeSeparator)
}
