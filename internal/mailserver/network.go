/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package mailserver runs a set of mail servers joined by links and moves
// mail between their users.
package mailserver

import (
	"fmt"
	"strings"
	"sync"
	"time"

	gologme "github.com/gologme/log"

	"github.com/neilalexander/mailmesh/internal/filter"
	"github.com/neilalexander/mailmesh/internal/graph"
	"github.com/neilalexander/mailmesh/internal/mailbox"
	"github.com/neilalexander/mailmesh/internal/message"
)

// Receipt describes a completed delivery.
type Receipt struct {
	Route   []string
	Message *message.Message
	Folder  string
}

// Network is the registry of servers and the links between them. All
// operations are serialised, so it may be shared by the SMTP gateway, the
// IMAP view and the command line at the same time.
type Network struct {
	mutex     sync.RWMutex
	log       *gologme.Logger
	filters   *filter.Engine
	graph     *graph.Graph
	servers   map[string]*Server
	now       func() time.Time
	observers []func(*Receipt)
}

type Option func(*Network)

// WithClock replaces time.Now as the source of message timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Network) {
		n.now = now
	}
}

func NewNetwork(log *gologme.Logger, filters *filter.Engine, opts ...Option) *Network {
	n := &Network{
		log:     log,
		filters: filters,
		graph:   graph.New(),
		servers: make(map[string]*Server),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Network) Filters() *filter.Engine {
	return n.filters
}

func (n *Network) AddServer(id string) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, "@ \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidServer, id)
	}
	if !n.graph.Add(id) {
		return fmt.Errorf("%w: %q", ErrServerAlreadyExists, id)
	}
	n.servers[id] = newServer(id, n)
	n.log.Infof("Added server %q\n", id)
	return nil
}

func (n *Network) Connect(a, b string) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.graph.Connect(a, b); err != nil {
		n.log.Warnf("Failed to connect %q to %q: %s\n", a, b, err)
		return fmt.Errorf("n.graph.Connect: %w", err)
	}
	n.log.Infof("Connected %q and %q\n", a, b)
	return nil
}

func (n *Network) RegisterUser(serverID, username string) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	s, ok := n.servers[serverID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrServerNotFound, serverID)
	}
	if err := s.RegisterUser(username); err != nil {
		n.log.Warnf("Failed to register user %q on %q: %s\n", username, serverID, err)
		return err
	}
	n.log.Infof("Registered user %q on %q\n", username, serverID)
	return nil
}

// Send delivers a message from senderUser on serverID to destUser on
// destServerID. Delivery observers run after the network is unlocked.
func (n *Network) Send(serverID, senderUser, destServerID, destUser, body string, urgent bool) (*Receipt, error) {
	receipt, observers, err := n.send(serverID, senderUser, destServerID, destUser, body, urgent)
	if err != nil {
		return nil, err
	}
	for _, fn := range observers {
		fn(receipt)
	}
	return receipt, nil
}

func (n *Network) send(serverID, senderUser, destServerID, destUser, body string, urgent bool) (*Receipt, []func(*Receipt), error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	s, ok := n.servers[serverID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrServerNotFound, serverID)
	}
	receipt, err := s.Send(senderUser, destServerID, destUser, body, urgent)
	if err != nil {
		n.log.Warnf("Rejected mail from %s@%s to %s@%s: %s\n", senderUser, serverID, destUser, destServerID, err)
		return nil, nil, err
	}
	n.log.Debugf("Route for message %d: %s\n", receipt.Message.ID(), strings.Join(receipt.Route, " -> "))
	n.log.Infof("Delivered message %d from %s to %s into %s\n", receipt.Message.ID(), receipt.Message.From(), receipt.Message.To(), receipt.Folder)
	return receipt, append([]func(*Receipt){}, n.observers...), nil
}

// OnDeliver registers fn to be called with every successful delivery.
func (n *Network) OnDeliver(fn func(*Receipt)) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.observers = append(n.observers, fn)
}

func (n *Network) ListUsers(serverID string) ([]string, error) {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	s, ok := n.servers[serverID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServerNotFound, serverID)
	}
	return s.Users(), nil
}

func (n *Network) HasServer(serverID string) bool {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	_, ok := n.servers[serverID]
	return ok
}

// HasUser reports whether username is registered on serverID.
func (n *Network) HasUser(serverID, username string) bool {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	_, err := n.mailbox(serverID, username)
	return err == nil
}

func (n *Network) ListMailbox(serverID, username string) (*mailbox.Snapshot, error) {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	mb, err := n.mailbox(serverID, username)
	if err != nil {
		return nil, err
	}
	return mb.Snapshot(), nil
}

func (n *Network) ListFolder(serverID, username, folder string) ([]*message.Message, error) {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	mb, err := n.mailbox(serverID, username)
	if err != nil {
		return nil, err
	}
	return mb.ListFolder(folder)
}

// FolderNames lists the folders a user can read without side effects.
func (n *Network) FolderNames(serverID, username string) ([]string, error) {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	mb, err := n.mailbox(serverID, username)
	if err != nil {
		return nil, err
	}
	return mb.FolderNames(), nil
}

// DrainUrgent consumes the urgent queue of a user.
func (n *Network) DrainUrgent(serverID, username string) ([]*message.Message, error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	mb, err := n.mailbox(serverID, username)
	if err != nil {
		return nil, err
	}
	drained := mb.DrainUrgent()
	if len(drained) > 0 {
		n.log.Infof("Drained %d urgent message(s) for %s@%s\n", len(drained), username, serverID)
	}
	return drained, nil
}

func (n *Network) Route(a, b string) ([]string, error) {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	route, err := n.graph.Route(a, b)
	if err != nil {
		return nil, fmt.Errorf("n.graph.Route: %w", err)
	}
	return route, nil
}

// Servers returns the server names in the order they were added.
func (n *Network) Servers() []string {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.graph.Nodes()
}

func (n *Network) Neighbors(id string) ([]string, error) {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.graph.Neighbors(id)
}

func (n *Network) mailbox(serverID, username string) (*mailbox.Mailbox, error) {
	s, ok := n.servers[serverID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServerNotFound, serverID)
	}
	mb, ok := s.Mailbox(username)
	if !ok {
		return nil, fmt.Errorf("%w: %q on %q", ErrUserNotFound, username, serverID)
	}
	return mb, nil
}
