// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package responder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	bbolt "go.etcd.io/bbolt"
	"go.uber.org/atomic"

	"github.com/tochemey/linda/actor"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/tuple"
	"github.com/tochemey/linda/value"
)

// TelegramsName is the actor name of Telegrams
const TelegramsName = "Telegrams"

const (
	telegramsFileMode os.FileMode = 0o600
	telegramsBucket               = "telegrams"
)

var (
	telegramsOptions      = bbolt.Options{Timeout: 5 * time.Second, NoGrowSync: true}
	errTelegramsClosed    = errors.New("telegram store is closed")
	errTelegramNoReceiver = errors.New("telegram has no recipient")
)

// Telegrams stores messages left for a recipient and hands them out on
// request.
//
// A TelegramSend carries the recipient and the telegram value; it is
// appended to the recipient's bucket and acknowledged. A TelegramRequest
// is answered with every telegram stored for the recipient, oldest first.
type Telegrams struct {
	db      *bbolt.DB
	emitter Emitter
	closed  *atomic.Bool
	logger  log.Logger
}

var _ actor.Actor = (*Telegrams)(nil)

// OpenTelegrams opens or creates the store at path
func OpenTelegrams(path string, emitter Emitter, logger log.Logger) (*Telegrams, error) {
	if logger == nil {
		logger = log.DiscardLogger
	}
	options := telegramsOptions
	db, err := bbolt.Open(path, telegramsFileMode, &options)
	if err != nil {
		return nil, fmt.Errorf("failed to open telegram store %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(telegramsBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize telegram store: %w", err)
	}
	return &Telegrams{
		db:      db,
		emitter: emitter,
		closed:  atomic.NewBool(false),
		logger:  logger,
	}, nil
}

// Name implements actor.Actor
func (x *Telegrams) Name() string {
	return TelegramsName
}

// Accept implements actor.Actor
func (x *Telegrams) Accept(t tuple.Tuple) bool {
	switch t.Type() {
	case TypeTelegramSend:
		reply := t.Reply(TypeTelegramSendResponse)
		if err := x.Store(t.Word(FieldRecipient), t.Get(FieldTelegram)); err != nil {
			x.logger.Warnf("failed to store telegram from %s: %v", t.SourceID(), err)
			reply.Set(FieldOK, value.Number(0))
			reply.Set(FieldError, value.Word(err.Error()))
		} else {
			reply.Set(FieldOK, value.Number(1))
		}
		x.reply(reply)
		return true
	case TypeTelegramRequest:
		reply := t.Reply(TypeTelegramResponse)
		telegrams, err := x.Load(t.Word(FieldRecipient))
		if err != nil {
			x.logger.Warnf("failed to load telegrams for %s: %v", t.SourceID(), err)
			reply.Set(FieldError, value.Word(err.Error()))
		}
		reply.Set(FieldRecipient, value.Word(t.Word(FieldRecipient)))
		reply.Set(FieldTelegrams, value.List(telegrams...))
		x.reply(reply)
		return true
	default:
		return false
	}
}

// Store appends telegram to the recipient's telegrams
func (x *Telegrams) Store(recipient string, telegram value.Value) error {
	if x.closed.Load() {
		return errTelegramsClosed
	}
	if recipient == "" {
		return errTelegramNoReceiver
	}
	data, err := telegram.MarshalBinary()
	if err != nil {
		return err
	}
	return x.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket([]byte(telegramsBucket)).CreateBucketIfNotExists([]byte(recipient))
		if err != nil {
			return err
		}
		sequence, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, sequence)
		return bucket.Put(key, data)
	})
}

// Load returns the telegrams stored for recipient, oldest first
func (x *Telegrams) Load(recipient string) ([]value.Value, error) {
	if x.closed.Load() {
		return nil, errTelegramsClosed
	}
	var telegrams []value.Value
	err := x.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(telegramsBucket)).Bucket([]byte(recipient))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, data []byte) error {
			var telegram value.Value
			if err := telegram.UnmarshalBinary(data); err != nil {
				return err
			}
			telegrams = append(telegrams, telegram)
			return nil
		})
	})
	return telegrams, err
}

// Close closes the store
func (x *Telegrams) Close() error {
	if !x.closed.CompareAndSwap(false, true) {
		return nil
	}
	return x.db.Close()
}

func (x *Telegrams) reply(t tuple.Tuple) {
	if err := x.emitter.Route(t); err != nil {
		x.logger.Warnf("failed to send %s: %v", t.Type(), err)
	}
}
