package msglog

import (
	stderrs "errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// Manager fans records out to a set of sinks. Sink failures never reach the
// Logger: they are reported on the fallback logger and the record moves on to
// the next sink.
type Manager struct {
	mu       sync.RWMutex
	sinks    []Sink
	fallback zerolog.Logger
	closed   bool
}

// NewManager builds a Manager reporting its own problems to fallback
// (a zerolog console writer on stderr when nil).
func NewManager(fallback io.Writer, sinks ...Sink) *Manager {
	if fallback == nil {
		fallback = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	m := &Manager{
		fallback: zerolog.New(fallback).With().Timestamp().Str("component", "msglog").Logger(),
	}
	m.Add(sinks...)
	return m
}

// Add registers sinks. Nil sinks are ignored.
func (m *Manager) Add(sinks ...Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
}

// Len returns the number of registered sinks.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sinks)
}

// Fallback is the logger sinks use to report their own delivery failures.
func (m *Manager) Fallback() zerolog.Logger {
	return m.fallback
}

func (m *Manager) Write(rec *Record) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil
	}
	for _, s := range m.sinks {
		if err := s.Write(rec); err != nil {
			m.fallback.Warn().
				Err(err).
				Str("sink", fmt.Sprintf("%T", s)).
				Str("record_level", rec.Level).
				Str("emitter", rec.Emitter).
				Msg("log sink delivery failed")
		}
	}
	return nil
}

// Close closes every sink that implements io.Closer. Calling Close more than
// once is safe.
func (m *Manager) Close() error {
	const op errors.Op = "msglog.Manager.Close"
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	for _, s := range m.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return errors.New(op).Err(stderrs.Join(errs...)).Msg(errMsgCloseSinks)
	}
	return nil
}
