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

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/atomic"
)

type SQLite3Storage struct {
	*TableDeliveries
	db     *sql.DB
	writer *Writer
}

// NewSQLite3Storage opens the journal database at filename, which may be
// ":memory:".
func NewSQLite3Storage(filename string) (*SQLite3Storage, error) {
	db, err := sql.Open("sqlite3", "file:"+filename+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	// A single connection keeps an in-memory database alive for the life of
	// the storage and serialises file access.
	db.SetMaxOpenConns(1)
	s := &SQLite3Storage{
		db: db,
		writer: &Writer{
			todo: make(chan writerTask),
		},
	}
	s.TableDeliveries, err = NewTableDeliveries(db, s.writer)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("NewTableDeliveries: %w", err)
	}
	return s, nil
}

func (s *SQLite3Storage) Close() error {
	s.writer.Stop()
	return s.db.Close()
}

// Writer funnels every write transaction through one goroutine.
type Writer struct {
	running atomic.Bool
	stopped atomic.Bool
	todo    chan writerTask
}

type writerTask struct {
	db   *sql.DB
	f    func(txn *sql.Tx) error
	wait chan error
}

var errWriterStopped = fmt.Errorf("writer stopped")

// Do runs f inside a new transaction on db, committing if f returns nil.
// f must use txn for every statement it runs.
func (w *Writer) Do(db *sql.DB, f func(txn *sql.Tx) error) error {
	if w.stopped.Load() {
		return errWriterStopped
	}
	if !w.running.Load() {
		go w.run()
	}
	task := writerTask{
		db:   db,
		f:    f,
		wait: make(chan error, 1),
	}
	w.todo <- task
	return <-task.wait
}

// Stop refuses further writes. Writes already queued still complete.
func (w *Writer) Stop() {
	w.stopped.Store(true)
}

func (w *Writer) run() {
	if !w.running.CompareAndSwap(false, true) {
		return
	}
	defer w.running.Store(false)
	for task := range w.todo {
		task.wait <- w.apply(task)
		close(task.wait)
	}
}

func (w *Writer) apply(task writerTask) error {
	txn, err := task.db.Begin()
	if err != nil {
		return fmt.Errorf("task.db.Begin: %w", err)
	}
	if err = task.f(txn); err != nil {
		_ = txn.Rollback()
		return err
	}
	if err = txn.Commit(); err != nil {
		return fmt.Errorf("txn.Commit: %w", err)
	}
	return nil
}
