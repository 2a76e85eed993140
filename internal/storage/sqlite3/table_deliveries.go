/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package sqlite3

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/neilalexander/mailmesh/internal/storage/types"
)

type TableDeliveries struct {
	db               *sql.DB
	writer           *Writer
	deliveriesInsert *sql.Stmt
	deliveriesSelect *sql.Stmt
	deliveriesCount  *sql.Stmt
}

const deliveriesSchema = `
	CREATE TABLE IF NOT EXISTS deliveries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id INTEGER NOT NULL,
		sender TEXT NOT NULL,
		sender_server TEXT NOT NULL,
		recipient TEXT NOT NULL,
		recipient_server TEXT NOT NULL,
		route TEXT NOT NULL,
		folder TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		urgent BOOLEAN NOT NULL DEFAULT 0,
		delivered INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS deliveries_recipient ON deliveries(recipient_server, recipient);
`

const deliveriesInsertStmt = `
	INSERT INTO deliveries (message_id, sender, sender_server, recipient, recipient_server, route, folder, subject, urgent, delivered)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

const deliveriesSelectStmt = `
	SELECT id, message_id, sender, sender_server, recipient, recipient_server, route, folder, subject, urgent, delivered
	FROM deliveries
	WHERE ($1 = '' OR sender_server = $1 OR recipient_server = $1)
	  AND ($2 = '' OR sender = $2 OR recipient = $2)
	ORDER BY id ASC
`

const deliveriesCountStmt = `
	SELECT COUNT(*) FROM deliveries
`

func NewTableDeliveries(db *sql.DB, writer *Writer) (*TableDeliveries, error) {
	t := &TableDeliveries{
		db:     db,
		writer: writer,
	}
	_, err := db.Exec(deliveriesSchema)
	if err != nil {
		return nil, fmt.Errorf("db.Exec: %w", err)
	}
	t.deliveriesInsert, err = db.Prepare(deliveriesInsertStmt)
	if err != nil {
		return nil, fmt.Errorf("db.Prepare(deliveriesInsertStmt): %w", err)
	}
	t.deliveriesSelect, err = db.Prepare(deliveriesSelectStmt)
	if err != nil {
		return nil, fmt.Errorf("db.Prepare(deliveriesSelectStmt): %w", err)
	}
	t.deliveriesCount, err = db.Prepare(deliveriesCountStmt)
	if err != nil {
		return nil, fmt.Errorf("db.Prepare(deliveriesCountStmt): %w", err)
	}
	return t, nil
}

func (t *TableDeliveries) JournalAppend(d *types.Delivery) (int64, error) {
	var id int64
	err := t.writer.Do(t.db, func(txn *sql.Tx) error {
		res, err := txn.Stmt(t.deliveriesInsert).Exec(
			int64(d.MessageID), d.Sender, d.SenderServer, d.Recipient, d.RecipientServer,
			types.JoinRoute(d.Route), d.Folder, d.Subject, d.Urgent, d.Delivered.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("t.deliveriesInsert.Exec: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	d.ID = id
	return id, nil
}

func (t *TableDeliveries) JournalList(q types.Query) ([]types.Delivery, error) {
	rows, err := t.deliveriesSelect.Query(q.Server, q.User)
	if err != nil {
		return nil, fmt.Errorf("t.deliveriesSelect.Query: %w", err)
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

func (t *TableDeliveries) JournalCount() (int, error) {
	var count int
	if err := t.deliveriesCount.QueryRow().Scan(&count); err != nil {
		return 0, fmt.Errorf("row.Scan: %w", err)
	}
	return count, nil
}
