package msglog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type manualClock struct {
	t time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)}
}

func (c *manualClock) Now() time.Time          { return c.t }
func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// threeLevels is error=0 < warn=1 < info=2.
func threeLevels(t testing.TB) *LevelSet {
	t.Helper()
	ls, err := NewLevelSet(map[string]int{LevelError: 0, LevelWarn: 1, LevelInfo: 2}, LevelInfo)
	require.NoError(t, err)
	return ls
}

func newTestLogger(t testing.TB, opts ...Option) (*Logger, *MemorySink) {
	t.Helper()
	sink := NewMemorySink(100)
	opts = append([]Option{WithSink(sink), WithThreshold(LevelTrace)}, opts...)
	l, err := NewLogger(DefaultLevels(), opts...)
	require.NoError(t, err)
	return l, sink
}

func angleStyles() *StyleTable {
	return NewStyleTable(map[Style]StyleFunc{
		StyleH1: func(s string) string { return "<" + s + ">" },
	})
}
