/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package postgres keeps the delivery journal in a PostgreSQL database.
package postgres

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/neilalexander/mailmesh/internal/storage/types"
)

type PostgresStorage struct {
	db               *sql.DB
	deliveriesInsert *sql.Stmt
	deliveriesSelect *sql.Stmt
	deliveriesCount  *sql.Stmt
}

const deliveriesSchema = `
	CREATE TABLE IF NOT EXISTS deliveries (
		id BIGSERIAL PRIMARY KEY,
		message_id BIGINT NOT NULL,
		sender TEXT NOT NULL,
		sender_server TEXT NOT NULL,
		recipient TEXT NOT NULL,
		recipient_server TEXT NOT NULL,
		route TEXT NOT NULL,
		folder TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		urgent BOOLEAN NOT NULL DEFAULT FALSE,
		delivered BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS deliveries_recipient ON deliveries(recipient_server, recipient);
`

const deliveriesInsertStmt = `
	INSERT INTO deliveries (message_id, sender, sender_server, recipient, recipient_server, route, folder, subject, urgent, delivered)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id
`

const deliveriesSelectStmt = `
	SELECT id, message_id, sender, sender_server, recipient, recipient_server, route, folder, subject, urgent, delivered
	FROM deliveries
	WHERE ($1::text = '' OR sender_server = $1 OR recipient_server = $1)
	  AND ($2::text = '' OR sender = $2 OR recipient = $2)
	ORDER BY id ASC
`

const deliveriesCountStmt = `
	SELECT COUNT(*) FROM deliveries
`

// NewPostgresStorage connects using a lib/pq connection string, either a
// URL or "host=... dbname=..." pairs, and creates the journal table.
func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	s := &PostgresStorage{db: db}
	if _, err := db.Exec(deliveriesSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Exec: %w", err)
	}
	for _, p := range []struct {
		stmt **sql.Stmt
		sql  string
	}{
		{&s.deliveriesInsert, deliveriesInsertStmt},
		{&s.deliveriesSelect, deliveriesSelectStmt},
		{&s.deliveriesCount, deliveriesCountStmt},
	} {
		if *p.stmt, err = db.Prepare(p.sql); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db.Prepare: %w", err)
		}
	}
	return s, nil
}

func (s *PostgresStorage) JournalAppend(d *types.Delivery) (int64, error) {
	var id int64
	err := s.deliveriesInsert.QueryRow(
		int64(d.MessageID), d.Sender, d.SenderServer, d.Recipient, d.RecipientServer,
		types.JoinRoute(d.Route), d.Folder, d.Subject, d.Urgent, d.Delivered.UnixNano(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("s.deliveriesInsert.QueryRow: %w", err)
	}
	d.ID = id
	return id, nil
}

func (s *PostgresStorage) JournalList(q types.Query) ([]types.Delivery, error) {
	rows, err := s.deliveriesSelect.Query(q.Server, q.User)
	if err != nil {
		return nil, fmt.Errorf("s.deliveriesSelect.Query: %w", err)
	}
	defer rows.Close()
	var deliveries []types.Delivery
	for rows.Next() {
		if q.Limit > 0 && len(deliveries) == q.Limit {
			break
		}
		var d types.Delivery
		var messageID, delivered int64
		var route string
		if err := rows.Scan(
			&d.ID, &messageID, &d.Sender, &d.SenderServer, &d.Recipient, &d.RecipientServer,
			&route, &d.Folder, &d.Subject, &d.Urgent, &delivered,
		); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		d.MessageID = uint64(messageID)
		d.Route = types.SplitRoute(route)
		d.Delivered = time.Unix(0, delivered)
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}
	return deliveries, nil
}

func (s *PostgresStorage) JournalCount() (int, error) {
	var count int
	if err := s.deliveriesCount.QueryRow().Scan(&count); err != nil {
		return 0, fmt.Errorf("row.Scan: %w", err)
	}
	return count, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
