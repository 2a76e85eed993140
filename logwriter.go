/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mailmesh

import (
	"bytes"
	"io"
	"sync"
)

// Logger is implemented by applications embedding mailmesh that want to
// see its log.
type Logger interface {
	LogMessage(msg string)
	LogError(errorID int, msg string)
}

// LogWriter passes complete log lines to a Logger as well as writing them
// to Output.
type LogWriter struct {
	Output io.Writer
	Logger Logger

	buffer []byte
	lock   sync.Mutex
}

func (lw *LogWriter) Write(b []byte) (int, error) {
	lw.lock.Lock()
	defer lw.lock.Unlock()

	if lw.Logger != nil {
		lw.buffer = append(lw.buffer, b...)
		if i := bytes.LastIndexByte(lw.buffer, '\n'); i != -1 {
			lw.Logger.LogMessage(string(lw.buffer[:i+1]))
			lw.buffer = append(lw.buffer[:0], lw.buffer[i+1:]...)
		}
	}
	if lw.Output == nil {
		return len(b), nil
	}
	return lw.Output.Write(b)
}
