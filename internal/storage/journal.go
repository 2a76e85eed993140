/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package storage

import (
	gologme "github.com/gologme/log"

	"github.com/neilalexander/mailmesh/internal/mailserver"
	"github.com/neilalexander/mailmesh/internal/message"
	"github.com/neilalexander/mailmesh/internal/storage/types"
)

func DeliveryFromReceipt(r *mailserver.Receipt) *types.Delivery {
	m := r.Message
	return &types.Delivery{
		MessageID:       m.ID(),
		Sender:          m.Sender(),
		SenderServer:    m.SenderServer(),
		Recipient:       m.Recipient(),
		RecipientServer: m.RecipientServer(),
		Route:           append([]string(nil), r.Route...),
		Folder:          r.Folder,
		Subject:         message.Subject(m.Body()),
		Urgent:          m.Urgent(),
		Delivered:       m.Created(),
	}
}

// Recorder returns a delivery observer that appends every receipt to s.
// Journal failures are logged and never undo a delivery.
func Recorder(s Storage, log *gologme.Logger) func(*mailserver.Receipt) {
	return func(r *mailserver.Receipt) {
		id, err := s.JournalAppend(DeliveryFromReceipt(r))
		if err != nil {
			log.Errorf("Failed to journal message %d: %s\n", r.Message.ID(), err)
			return
		}
		log.Debugf("Journalled message %d as entry %d\n", r.Message.ID(), id)
	}
}
