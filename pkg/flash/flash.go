// Package flash carries one-shot messages across a redirect.
package flash

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/newsletter/pkg/cookie"
	"github.com/dmitrymomot/newsletter/pkg/logger"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

const key = "messages"

type Messenger struct {
	cookies *cookie.Manager
	log     *slog.Logger
}

func New(cookies *cookie.Manager, log *slog.Logger) *Messenger {
	if log == nil {
		log = logger.Discard()
	}
	return &Messenger{cookies: cookies, log: log}
}

// Info queues text for the next page. A later call in the same response replaces earlier ones.
func (m *Messenger) Info(w http.ResponseWriter, text string) {
	m.set(w, Message{Level: LevelInfo, Text: text})
}

func (m *Messenger) Error(w http.ResponseWriter, text string) {
	m.set(w, Message{Level: LevelError, Text: text})
}

func (m *Messenger) set(w http.ResponseWriter, msgs ...Message) {
	if err := m.cookies.SetFlash(w, key, msgs); err != nil {
		m.log.Error("failed to set flash message", logger.Error(err), logger.Component("flash"))
	}
}

// Pop returns and clears the pending messages. Unreadable cookies yield nothing.
func (m *Messenger) Pop(w http.ResponseWriter, r *http.Request) []Message {
	var msgs []Message
	if err := m.cookies.GetFlash(w, r, key, &msgs); err != nil {
		return nil
	}
	return msgs
}
