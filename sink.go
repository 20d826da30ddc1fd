package msglog

import (
	"container/ring"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Sink receives every record a Logger dispatches. Implementations own
// delivery: buffering, retries and failure reporting. A sink may also
// implement io.Closer.
type Sink interface {
	Write(rec *Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(rec *Record) error

func (f SinkFunc) Write(rec *Record) error { return f(rec) }

// DefaultTimeFormat is the TextSink timestamp layout.
const DefaultTimeFormat = "15:04:05.000"

// TextSink writes one human readable line per record:
//
//	15:04:05.000 INFO [reqId] [sid] emitter: action <rendered message>
//
// The prefix is styled with the internal styles of its own table; the message
// is written as rendered by the logger.
type TextSink struct {
	out        io.Writer
	styles     *StyleTable
	timeFormat string
	mu         sync.Mutex
}

// NewTextSink writes to out. An empty timeFormat selects DefaultTimeFormat.
func NewTextSink(out io.Writer, styles *StyleTable, timeFormat string) *TextSink {
	if timeFormat == emptyString {
		timeFormat = DefaultTimeFormat
	}
	return &TextSink{out: out, styles: styles, timeFormat: timeFormat}
}

func (s *TextSink) Write(rec *Record) error {
	line := s.format(rec)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.out, line)
	return err
}

func (s *TextSink) format(rec *Record) string {
	segments := make([]string, 0, 7)
	segments = append(segments,
		s.styles.Apply(rec.Timestamp.Format(s.timeFormat), StyleTimestamp),
		s.styles.Apply(strings.ToUpper(rec.Level), StyleLevel),
	)
	if rec.ReqID != emptyString {
		segments = append(segments, s.styles.Apply("["+rec.ReqID+"]", StyleReqID))
	}
	if rec.SID != emptyString {
		segments = append(segments, s.styles.Apply("["+rec.SID+"]", StyleSID))
	}
	if rec.Emitter != emptyString {
		segments = append(segments, s.styles.Apply(rec.Emitter+":", StyleEmitter))
	}
	if rec.Action != emptyString {
		segments = append(segments, s.styles.Apply(rec.Action, StyleRecordAction))
	}
	segments = append(segments, rec.Rendered)
	return strings.Join(segments, " ") + "\n"
}

// JSONSink encodes records with zerolog, one JSON object per line.
type JSONSink struct {
	logger  zerolog.Logger
	timeKey string
}

// NewJSONSink writes JSON records to out.
func NewJSONSink(out io.Writer) *JSONSink {
	return &JSONSink{
		logger:  zerolog.New(zerolog.SyncWriter(out)),
		timeKey: FieldTimestamp,
	}
}

// NewPrettySink renders records through zerolog's ConsoleWriter.
func NewPrettySink(out io.Writer, noColor bool) *JSONSink {
	cw := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: DefaultTimeFormat,
		FormatLevel: func(i interface{}) string {
			if s, ok := i.(string); ok {
				return strings.ToUpper(s)
			}
			return "???"
		},
	}
	return &JSONSink{
		logger:  zerolog.New(zerolog.SyncWriter(cw)),
		timeKey: zerolog.TimestampFieldName,
	}
}

func (s *JSONSink) Write(rec *Record) error {
	e := s.logger.Log().Time(s.timeKey, rec.Timestamp)
	rec.marshalFields(e)
	e.Send()
	return nil
}

// MemorySink keeps the most recent records in a fixed size ring.
type MemorySink struct {
	mu     sync.RWMutex
	buffer *ring.Ring
	size   int
	count  int
}

// NewMemorySink keeps up to capacity records (1000 when capacity <= 0).
func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemorySink{buffer: ring.New(capacity), size: capacity}
}

func (s *MemorySink) Write(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.Value = *rec
	s.buffer = s.buffer.Next()
	if s.count < s.size {
		s.count++
	}
	return nil
}

// Records returns the retained records, oldest first.
func (s *MemorySink) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, s.count)
	start := s.buffer.Move(-s.count)
	for i := 0; i < s.count; i++ {
		out = append(out, start.Value.(Record))
		start = start.Next()
	}
	return out
}

// Messages returns the unstyled message of each retained record.
func (s *MemorySink) Messages() []string {
	recs := s.Records()
	out := make([]string, len(recs))
	for i := range recs {
		out[i] = recs[i].Message
	}
	return out
}

// Reset drops every retained record.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = ring.New(s.size)
	s.count = 0
}
