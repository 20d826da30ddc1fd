package msglog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// DefaultLogglyURL is the Loggly bulk endpoint host.
const DefaultLogglyURL = "https://logs-01.loggly.com"

// BufferLimitMessage is the text of the marker record inserted once when the
// Loggly buffer overflows.
const BufferLimitMessage = "buffer limit exceeded"

const (
	errMsgLogglyToken  = "Loggly token is not set."
	errMsgLogglyClosed = "Loggly sink is closed."
	errMsgLogglyPost   = "Loggly bulk request failed."
)

// LogglySink buffers encoded records and posts them in bulk. A flush happens
// when BatchSize records are waiting and on every FlushInterval tick. When
// MaxBuffer records are waiting further records are dropped and a single
// BufferLimitMessage marker is queued instead. Delivery failures are reported
// on the fallback logger and the failed batch is discarded.
type LogglySink struct {
	cfg      LogglyConfig
	endpoint string
	client   *http.Client
	fallback zerolog.Logger
	clock    Clock

	mu         sync.Mutex
	buffer     [][]byte
	overflowed bool
	closed     bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewLogglySink starts a Loggly sink. Zero values in cfg take the defaults
// of DefaultConfig.
func NewLogglySink(cfg LogglyConfig, fallback zerolog.Logger) (*LogglySink, error) {
	const op errors.Op = "msglog.NewLogglySink"
	if cfg.Token == emptyString {
		return nil, errors.New(op).Msg(errMsgLogglyToken)
	}
	def := DefaultConfig().Loggly
	if cfg.URL == emptyString {
		cfg.URL = def.URL
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxBuffer <= 0 {
		cfg.MaxBuffer = def.MaxBuffer
	}
	if cfg.FlushIntervalMS <= 0 {
		cfg.FlushIntervalMS = def.FlushIntervalMS
	}
	if cfg.TimeoutMS <= 0 {
		cfg.TimeoutMS = def.TimeoutMS
	}

	s := &LogglySink{
		cfg:      cfg,
		endpoint: logglyEndpoint(cfg),
		client:   &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond},
		fallback: fallback,
		clock:    SystemClock,
		buffer:   make([][]byte, 0, cfg.BatchSize),
		done:     make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run(time.Duration(cfg.FlushIntervalMS) * time.Millisecond)
	return s, nil
}

func logglyEndpoint(cfg LogglyConfig) string {
	endpoint := strings.TrimRight(cfg.URL, "/") + "/bulk/" + cfg.Token + "/"
	if len(cfg.Tags) > 0 {
		endpoint += "tag/" + strings.Join(cfg.Tags, ",") + "/"
	}
	return endpoint
}

func (s *LogglySink) run(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			_ = s.Flush(context.Background())
		}
	}
}

func (s *LogglySink) Write(rec *Record) error {
	const op errors.Op = "msglog.LogglySink.Write"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New(op).Msg(errMsgLogglyClosed)
	}

	if len(s.buffer) >= s.cfg.MaxBuffer {
		if !s.overflowed {
			s.overflowed = true
			s.buffer = append(s.buffer, encodeRecord(&Record{
				Timestamp: s.clock.Now(),
				Level:     LevelWarn,
				Emitter:   "msglog",
				Message:   BufferLimitMessage,
			}))
		}
		return nil
	}

	s.buffer = append(s.buffer, encodeRecord(rec))
	if len(s.buffer) >= s.cfg.BatchSize {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			_ = s.Flush(context.Background())
		}()
	}
	return nil
}

// Pending returns the number of buffered records.
func (s *LogglySink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}

// Flush posts everything buffered so far.
func (s *LogglySink) Flush(ctx context.Context) error {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.buffer
	s.buffer = make([][]byte, 0, s.cfg.BatchSize)
	s.overflowed = false
	s.mu.Unlock()

	if err := s.post(ctx, bytes.Join(batch, []byte("\n"))); err != nil {
		s.fallback.Warn().
			Err(err).
			Int("dropped", len(batch)).
			Str("endpoint", s.cfg.URL).
			Msg("loggly delivery failed")
		return err
	}
	return nil
}

func (s *LogglySink) post(ctx context.Context, body []byte) error {
	const op errors.Op = "msglog.LogglySink.post"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgLogglyPost)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgLogglyPost)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return errors.New(op).Msg(fmt.Sprintf("%s (status %d)", errMsgLogglyPost, resp.StatusCode))
	}
	return nil
}

// Close stops the flush loop and sends whatever is still buffered.
func (s *LogglySink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.TimeoutMS)*time.Millisecond)
	defer cancel()
	return s.Flush(ctx)
}
