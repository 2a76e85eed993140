/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mailbox

import (
	"sync"

	"github.com/neilalexander/mailmesh/internal/message"
)

// fifoQueue holds urgent mail in arrival order. Every entry has the same
// priority, so there is nothing to reorder.
type fifoQueue struct {
	msgs []*message.Message
	count  int
	mutex  sync.Mutex
}

func newFIFOQueue() *fifoQueue {
	return &fifoQueue{}
}

func (q *fifoQueue) push(msg *message.Message) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.msgs = append(q.msgs, msg)
	q.count++
}

// drain removes and returns everything queued, oldest first.
func (q *fifoQueue) drain() []*message.Message {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	msgs := make([]*message.Message, 0, q.count)
	msgs = append(msgs, q.msgs...)
	q.msgs = nil
	q.count = 0
	return msgs
}

func (q *fifoQueue) len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.count
}
