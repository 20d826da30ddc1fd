package msglog

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_ThresholdGating(t *testing.T) {
	sink := NewMemorySink(10)
	logger, err := NewLogger(threeLevels(t), WithSink(sink), WithThreshold(LevelWarn))
	require.NoError(t, err)

	assert.Equal(t, "e", logger.Level(LevelError).Emit("e"))
	assert.Equal(t, "w", logger.Level(LevelWarn).Emit("w"))
	assert.Empty(t, logger.Level(LevelInfo).Emit("i"))

	assert.Equal(t, []string{"e", "w"}, sink.Messages())
	assert.Equal(t, LevelWarn, logger.ThresholdName())
	assert.True(t, logger.LevelEnabled(LevelError))
	assert.False(t, logger.LevelEnabled(LevelInfo))
	assert.False(t, logger.LevelEnabled("nope"))
}

func TestLogger_DefaultThreshold(t *testing.T) {
	logger, err := NewLogger(DefaultLevels())
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, logger.ThresholdName())
	assert.Equal(t, 2, logger.Threshold())
}

func TestNewLogger_Errors(t *testing.T) {
	_, err := NewLogger(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), errMsgNilLevelSet)

	_, err = NewLogger(DefaultLevels(), WithThreshold("loud"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), errMsgBadThreshold)

	_, err = NewLogger(DefaultLevels(), WithThreshold(99))
	require.Error(t, err)
}

func TestLogger_SetThreshold(t *testing.T) {
	logger, _ := newTestLogger(t)

	require.NoError(t, logger.SetThreshold(LevelError))
	assert.Equal(t, 0, logger.Threshold())

	require.NoError(t, logger.SetThreshold(3))
	assert.Equal(t, LevelVerbose, logger.ThresholdName())

	err := logger.SetThreshold("loud")
	assert.ErrorIs(t, err, ErrUnknownLevel)
	assert.Equal(t, LevelVerbose, logger.ThresholdName(), "failed update keeps the old threshold")

	assert.Error(t, logger.SetThreshold(17))
}

func TestLogger_UnknownLevelReported(t *testing.T) {
	var fallback bytes.Buffer
	logger, sink := newTestLogger(t, WithFallback(zerolog.New(&fallback)), WithEmitterName("disk"))

	b := logger.Level("shout")
	assert.Equal(t, "shout", b.Level())
	assert.Empty(t, b.Text("x").Emit())
	assert.Empty(t, sink.Records())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(fallback.Bytes(), &entry))
	assert.Equal(t, "log level is not registered", entry["message"])
	assert.Equal(t, "shout", entry["requested_level"])
	assert.Equal(t, "disk", entry["emitter"])
}

func TestLogger_BuilderWithCustomLevels(t *testing.T) {
	levels, err := NewLevelSet(map[string]int{"fatal": 0, "notice": 1, LevelInfo: 2}, LevelInfo)
	require.NoError(t, err)
	var fallback bytes.Buffer
	sink := NewMemorySink(10)
	logger, err := NewLogger(levels, WithSink(sink), WithFallback(zerolog.New(&fallback)))
	require.NoError(t, err)

	_, err = logger.Builder(LevelError)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownLevel)

	assert.Empty(t, logger.Error().Text("disk failed").Emit())
	assert.Contains(t, fallback.String(), `"requested_level":"error"`)

	b, err := logger.Builder("notice")
	require.NoError(t, err)
	assert.Equal(t, "disk failed", b.Text("disk failed").Emit())
	assert.Equal(t, []string{"disk failed"}, sink.Messages())
}

func TestLogger_FallbackFromManager(t *testing.T) {
	var fallback bytes.Buffer
	m := NewManager(&fallback, NewMemorySink(10))
	logger, err := NewLogger(DefaultLevels(), WithSink(m))
	require.NoError(t, err)

	logger.Level("notcie").Text("typo").Emit()
	assert.Contains(t, fallback.String(), "log level is not registered")
	assert.Contains(t, fallback.String(), `"component":"msglog"`)
}

func TestLogger_ClonesShareThreshold(t *testing.T) {
	root, sink := newTestLogger(t, WithEmitterName("root"))
	child := root.WithEmitter("child").WithAction("sync")

	require.NoError(t, root.SetThreshold(LevelError))
	assert.Empty(t, child.Info().Emit("hidden"))

	require.NoError(t, child.SetThreshold(LevelInfo))
	assert.Equal(t, LevelInfo, root.ThresholdName())

	child.Info().Emit("shown")
	recs := sink.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "child", recs[0].Emitter)
	assert.Equal(t, "sync", recs[0].Action)
	assert.Equal(t, "root", root.Emitter())
}

func TestLogger_WithRequest(t *testing.T) {
	root, sink := newTestLogger(t)
	reqLog := root.WithRequest("r-1", "s-1")

	reqLog.Info().Emit("hello")
	root.Info().Emit("bare")

	recs := sink.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "r-1", recs[0].ReqID)
	assert.Equal(t, "s-1", recs[0].SID)
	assert.Empty(t, recs[1].ReqID)
	assert.Equal(t, "r-1", reqLog.RequestID())
	assert.Equal(t, "s-1", reqLog.SessionID())
}

func TestLogger_StaticFields(t *testing.T) {
	root, sink := newTestLogger(t, WithStaticFields(map[string]interface{}{"app": "demo"}))
	child := root.WithStatic(map[string]interface{}{"region": "eu"})

	child.Info().Emit("x")
	root.Info().Emit("y")

	recs := sink.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, map[string]interface{}{"app": "demo", "region": "eu"}, recs[0].Static)
	assert.Equal(t, map[string]interface{}{"app": "demo"}, recs[1].Static)
}

func TestLogger_WithStylesIsPerClone(t *testing.T) {
	root, _ := newTestLogger(t)
	styled := root.WithStyles(angleStyles())

	assert.Equal(t, "<t>", styled.Info().H1("t").Emit())
	assert.Equal(t, "t", root.Info().H1("t").Emit())
	assert.Equal(t, "t", root.WithStyles(nil).Info().H1("t").Emit())
}

func TestLogger_RecordTimestampFromClock(t *testing.T) {
	clock := newManualClock()
	logger, sink := newTestLogger(t, WithClock(clock))
	logger.Info().Emit("x")
	recs := sink.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, clock.Now(), recs[0].Timestamp)
	assert.Equal(t, LevelInfo, recs[0].Level)
	assert.Equal(t, 2, recs[0].Rank)
}

func TestNop(t *testing.T) {
	logger := Nop()
	assert.Empty(t, logger.Error().Text("x").Emit())
	assert.False(t, logger.LevelEnabled(LevelError))

	var nilLogger *Logger
	assert.False(t, nilLogger.Enabled(0))
}

func TestLogger_ConcurrentBuilders(t *testing.T) {
	logger, sink := newTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Info().Text("worker").Value(i).Emit()
		}(i)
	}
	wg.Wait()
	assert.Len(t, sink.Records(), 20)
}
