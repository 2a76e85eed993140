/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package mailmesh runs a simulated mail network together with its SMTP
// gateway, IMAP view and delivery journal.
package mailmesh

import (
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/fatih/color"
	gologme "github.com/gologme/log"

	"github.com/neilalexander/mailmesh/internal/config"
	"github.com/neilalexander/mailmesh/internal/imapserver"
	"github.com/neilalexander/mailmesh/internal/logging"
	"github.com/neilalexander/mailmesh/internal/mailserver"
	"github.com/neilalexander/mailmesh/internal/smtpserver"
	"github.com/neilalexander/mailmesh/internal/storage"
)

// constants defining error types
const (
	ErrorConfig = iota
	ErrorOpenJournal
	ErrorStart
	ErrorSMTP
	ErrorIMAP
)

// constants defining Mailmesh.state
const (
	Stopped = iota
	Running
	ShuttingDown
	Error
)

type Mailmesh struct {
	Config *config.Config
	// Logger, if set, receives every log line and every fatal error.
	Logger Logger
	// Output is where log lines are written, color.Output if nil.
	Output io.Writer

	network    *mailserver.Network
	journal    storage.Storage
	smtpServer *smtpserver.SMTPServer
	imapServer *imapserver.IMAPServer
	smtpAddr   net.Addr
	imapAddr   net.Addr
	log        *gologme.Logger
	state      int
	locker     sync.Mutex
	done       chan struct{}
	doneOnce   sync.Once
}

func New(cfg *config.Config) *Mailmesh {
	return &Mailmesh{
		Config: cfg,
		done:   make(chan struct{}),
	}
}

func (mm *Mailmesh) GetState() int {
	mm.locker.Lock()
	defer mm.locker.Unlock()
	return mm.state
}

func (mm *Mailmesh) setState(state int) {
	mm.locker.Lock()
	defer mm.locker.Unlock()
	mm.state = state
}

// Network is nil until Start succeeds.
func (mm *Mailmesh) Network() *mailserver.Network {
	mm.locker.Lock()
	defer mm.locker.Unlock()
	return mm.network
}

// Journal is nil when the journal is disabled or Start has not run.
func (mm *Mailmesh) Journal() storage.Storage {
	mm.locker.Lock()
	defer mm.locker.Unlock()
	return mm.journal
}

// SMTPAddr is the address the gateway listens on, or nil if it is disabled.
func (mm *Mailmesh) SMTPAddr() net.Addr {
	mm.locker.Lock()
	defer mm.locker.Unlock()
	return mm.smtpAddr
}

func (mm *Mailmesh) IMAPAddr() net.Addr {
	mm.locker.Lock()
	defer mm.locker.Unlock()
	return mm.imapAddr
}

// Done is closed once the daemon has stopped, whether by Stop or an error.
func (mm *Mailmesh) Done() <-chan struct{} {
	return mm.done
}

func (mm *Mailmesh) createInternalLog() error {
	output := mm.Output
	if output == nil {
		output = color.Output
	}
	logWriter := &LogWriter{
		Output: output,
		Logger: mm.Logger,
	}
	log, err := logging.New(logWriter, "Mailmesh", mm.Config.Log.Level)
	if err != nil {
		return err
	}
	mm.log = log
	return nil
}

// Start builds the network, opens the journal and starts the servers. On
// failure everything started so far is stopped again.
func (mm *Mailmesh) Start() error {
	if err := mm.Config.Validate(); err != nil {
		mm.fail(ErrorConfig, fmt.Errorf("invalid configuration: %w", err))
		return err
	}
	if err := mm.createInternalLog(); err != nil {
		mm.fail(ErrorConfig, err)
		return err
	}
	mm.setState(Running)
	return mm.start()
}

func (mm *Mailmesh) start() error {
	network, err := config.Build(mm.Config, mm.log)
	if err != nil {
		mm.handleError(ErrorStart, "Failed to build network: %s", err)
		return err
	}
	mm.locker.Lock()
	mm.network = network
	mm.locker.Unlock()
	mm.log.Infof("Network has %d server(s)\n", len(network.Servers()))

	if driver := mm.Config.Journal.Driver; driver != "none" {
		journal, err := storage.Open(driver, mm.Config.Journal.DSN)
		if err != nil {
			mm.handleError(ErrorOpenJournal, "Failed to open journal: %s", err)
			return err
		}
		mm.locker.Lock()
		mm.journal = journal
		mm.locker.Unlock()
		network.OnDeliver(storage.Recorder(journal, mm.log))
		mm.log.Infof("Recording deliveries with %s\n", driver)
	}

	if addr := mm.Config.IMAP.Listen; addr != "" {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			mm.handleError(ErrorIMAP, "Failed to listen for IMAP: %s", err)
			return err
		}
		imapServer := imapserver.NewIMAPServer(mm.Config.IMAP, network, mm.log)
		mm.locker.Lock()
		mm.imapServer, mm.imapAddr = imapServer, l.Addr()
		mm.locker.Unlock()
		go func() {
			if err := imapServer.Serve(l); err != nil {
				mm.handleError(ErrorIMAP, "IMAP error: %s", err)
			}
		}()
		mm.log.Infof("Listening for IMAP on: %s\n", l.Addr())
	}

	if addr := mm.Config.SMTP.Listen; addr != "" {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			mm.handleError(ErrorSMTP, "Failed to listen for SMTP: %s", err)
			return err
		}
		smtpServer := smtpserver.NewSMTPServer(mm.Config.SMTP, network, mm.log)
		mm.locker.Lock()
		mm.smtpServer, mm.smtpAddr = smtpServer, l.Addr()
		mm.locker.Unlock()
		go func() {
			if err := smtpServer.Serve(l); err != nil {
				mm.handleError(ErrorSMTP, "SMTP error: %s", err)
			}
		}()
		mm.log.Infof("Listening for SMTP on: %s\n", l.Addr())
	}
	return nil
}

func (mm *Mailmesh) Stop() {
	switch mm.GetState() {
	case ShuttingDown, Stopped:
		return
	}
	mm.setState(ShuttingDown)
	mm.log.Infof("Shutting down mailmesh...\n")

	mm.locker.Lock()
	smtpServer, imapServer, journal := mm.smtpServer, mm.imapServer, mm.journal
	mm.smtpServer, mm.imapServer, mm.journal = nil, nil, nil
	mm.locker.Unlock()

	if smtpServer != nil {
		mm.log.Infof("SMTP gateway accepted %d message(s)\n", smtpServer.Delivered())
		_ = smtpServer.Close()
	}
	if imapServer != nil {
		_ = imapServer.Close()
	}
	if journal != nil {
		if err := journal.Close(); err != nil {
			mm.log.Warnf("Failed to close journal: %s\n", err)
		}
	}

	mm.setState(Stopped)
	mm.doneOnce.Do(func() { close(mm.done) })
}

func (mm *Mailmesh) handleError(errorID int, format string, a ...interface{}) {
	switch mm.GetState() {
	case ShuttingDown, Stopped:
		// ignore errors when shutting down
		return
	}
	mm.fail(errorID, fmt.Errorf(format, a...))
	mm.Stop()
}

func (mm *Mailmesh) fail(errorID int, err error) {
	mm.setState(Error)
	if mm.log != nil {
		mm.log.Errorf("%s\n", err)
	}
	if mm.Logger != nil {
		mm.Logger.LogError(errorID, err.Error())
	}
}
