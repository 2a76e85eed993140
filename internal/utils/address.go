/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package utils

import (
	"fmt"
	"strings"
)

const Domain = "mailmesh"

// CreateAddress returns the mail address of a user hosted on a server.
func CreateAddress(user, server string) string {
	return fmt.Sprintf("%s@%s", user, server)
}

// ParseAddress splits an address into its user and server parts. Both the
// "user@server" form and the "server:user" form are accepted. Angle brackets
// and a trailing ".mailmesh" on the server are stripped.
func ParseAddress(email string) (string, string, error) {
	email = strings.TrimSpace(email)
	email = strings.TrimSuffix(strings.TrimPrefix(email, "<"), ">")
	if at := strings.LastIndex(email, "@"); at >= 0 {
		user, server := email[:at], strings.TrimSuffix(email[at+1:], "."+Domain)
		if user == "" || server == "" {
			return "", "", fmt.Errorf("invalid email address %q", email)
		}
		return user, server, nil
	}
	if colon := strings.Index(email, ":"); colon >= 0 {
		server, user := email[:colon], email[colon+1:]
		if user == "" || server == "" || strings.Contains(user, ":") {
			return "", "", fmt.Errorf("invalid address %q, expected server:user", email)
		}
		return user, server, nil
	}
	return "", "", fmt.Errorf("invalid email address %q", email)
}
