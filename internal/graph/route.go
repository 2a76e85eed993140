/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package graph

import "fmt"

// Route returns the servers on a shortest path from src to dst, both ends
// included. Among equally short paths the one found first when walking
// neighbours in link order wins. A server is marked visited when it is
// queued, so every server is queued at most once.
func (g *Graph) Route(src, dst string) ([]string, error) {
	if !g.Has(src) {
		return nil, fmt.Errorf("%w: %q is not registered", ErrInvalidServer, src)
	}
	if !g.Has(dst) {
		return nil, fmt.Errorf("%w: %q is not registered", ErrInvalidServer, dst)
	}
	if src == dst {
		return []string{src}, nil
	}

	parent := map[string]string{src: ""}
	queue := []string{src}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, peer := range g.nodes[current].peers {
			if _, visited := parent[peer]; visited {
				continue
			}
			parent[peer] = current
			if peer == dst {
				return walkBack(parent, src, dst), nil
			}
			queue = append(queue, peer)
		}
	}
	return nil, fmt.Errorf("%w: %q cannot reach %q", ErrNoRoute, src, dst)
}

func walkBack(parent map[string]string, src, dst string) []string {
	var reversed []string
	for at := dst; at != src; at = parent[at] {
		reversed = append(reversed, at)
	}
	reversed = append(reversed, src)
	route := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		route = append(route, reversed[i])
	}
	return route
}
