/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package storage records completed deliveries in an append-only journal.
// The journal is an audit trail; mailboxes are never rebuilt from it.
package storage

import (
	"fmt"

	"github.com/neilalexander/mailmesh/internal/storage/postgres"
	"github.com/neilalexander/mailmesh/internal/storage/sqlite3"
	"github.com/neilalexander/mailmesh/internal/storage/types"
)

type Storage interface {
	JournalAppend(d *types.Delivery) (int64, error)
	JournalList(q types.Query) ([]types.Delivery, error)
	JournalCount() (int, error)
	Close() error
}

// Open connects to the journal for driver, which is "sqlite3" or
// "postgres".
func Open(driver, dsn string) (Storage, error) {
	switch driver {
	case "sqlite3":
		s, err := sqlite3.NewSQLite3Storage(dsn)
		if err != nil {
			return nil, fmt.Errorf("sqlite3.NewSQLite3Storage: %w", err)
		}
		return s, nil
	case "postgres":
		s, err := postgres.NewPostgresStorage(dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres.NewPostgresStorage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", driver)
	}
}
