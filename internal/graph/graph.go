/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package graph keeps the undirected links between mail servers and finds
// routes across them.
package graph

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidServer = errors.New("invalid server")
	ErrNoRoute       = errors.New("no route found")
)

type node struct {
	peers []string // insertion order, used for route tie-breaks
	index map[string]struct{}
}

// Graph is keyed by server name. It is not safe for concurrent use.
type Graph struct {
	nodes map[string]*node
	order []string
}

func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// Add registers a server. It returns false if the name is empty or already
// present.
func (g *Graph) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := g.nodes[id]; ok {
		return false
	}
	g.nodes[id] = &node{
		index: make(map[string]struct{}),
	}
	g.order = append(g.order, id)
	return true
}

func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns the server names in registration order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// Connect links a and b in both directions. Linking servers that are already
// linked changes nothing.
func (g *Graph) Connect(a, b string) error {
	na, ok := g.nodes[a]
	if !ok {
		return fmt.Errorf("%w: %q is not registered", ErrInvalidServer, a)
	}
	nb, ok := g.nodes[b]
	if !ok {
		return fmt.Errorf("%w: %q is not registered", ErrInvalidServer, b)
	}
	if a == b {
		return fmt.Errorf("%w: cannot connect %q to itself", ErrInvalidServer, a)
	}
	if _, ok := na.index[b]; !ok {
		na.index[b] = struct{}{}
		na.peers = append(na.peers, b)
	}
	if _, ok := nb.index[a]; !ok {
		nb.index[a] = struct{}{}
		nb.peers = append(nb.peers, a)
	}
	return nil
}

// Neighbors returns the servers linked to id in the order the links were made.
func (g *Graph) Neighbors(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered", ErrInvalidServer, id)
	}
	return append([]string{}, n.peers...), nil
}

// Connected reports whether a and b share a link.
func (g *Graph) Connected(a, b string) bool {
	n, ok := g.nodes[a]
	if !ok {
		return false
	}
	_, ok = n.index[b]
	return ok
}
