package msglog

import (
	"bytes"
	"time"

	"github.com/rs/zerolog"
)

// Record is what a Logger hands to its sink for every dispatched line.
type Record struct {
	Timestamp time.Time
	Level     string
	Rank      int
	Emitter   string
	Action    string
	// Message is the unstyled text of the line; Rendered is the same line
	// passed through the logger's style table.
	Message  string
	Rendered string
	SID      string
	ReqID    string
	Static   map[string]interface{}
	Data     map[string]interface{}
}

// Field names used by the structured encoders.
const (
	FieldTimestamp = "timestamp"
	FieldLevel     = "level"
	FieldEmitter   = "emitter"
	FieldAction    = "action"
	FieldMessage   = "message"
	FieldSID       = "sid"
	FieldReqID     = "reqId"
	FieldStatic    = "static"
	FieldData      = "data"
)

// MarshalZerologObject writes the record's fields onto e. Empty optional
// fields are omitted.
func (r *Record) MarshalZerologObject(e *zerolog.Event) {
	e.Time(FieldTimestamp, r.Timestamp)
	r.marshalFields(e)
}

// marshalFields writes everything except the timestamp, whose key depends on
// the encoder.
func (r *Record) marshalFields(e *zerolog.Event) {
	e.Str(FieldLevel, r.Level).
		Str(FieldEmitter, r.Emitter)
	if r.Action != emptyString {
		e.Str(FieldAction, r.Action)
	}
	e.Str(FieldMessage, r.Message)
	if r.SID != emptyString {
		e.Str(FieldSID, r.SID)
	}
	if r.ReqID != emptyString {
		e.Str(FieldReqID, r.ReqID)
	}
	if len(r.Static) > 0 {
		e.Dict(FieldStatic, zerolog.Dict().Fields(r.Static))
	}
	if len(r.Data) > 0 {
		e.Dict(FieldData, zerolog.Dict().Fields(r.Data))
	}
}

// encodeRecord returns the record as a single JSON object without a trailing
// newline.
func encodeRecord(rec *Record) []byte {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	zl.Log().EmbedObject(rec).Send()
	return bytes.TrimRight(buf.Bytes(), "\n")
}
