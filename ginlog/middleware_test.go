package ginlog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Station-Manager/msglog"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) Option {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func(o *options) {
		o.now = func() time.Time {
			t = t.Add(step)
			return t
		}
	}
}

func newTestRouter(t *testing.T, opts ...Option) (*gin.Engine, *msglog.MemorySink, *msglog.Logger) {
	t.Helper()
	sink := msglog.NewMemorySink(50)
	base, err := msglog.NewLogger(msglog.DefaultLevels(), msglog.WithSink(sink))
	require.NoError(t, err)

	r := gin.New()
	r.Use(Middleware(base, NewRequestCounter(0), opts...))
	r.GET("/ping", func(c *gin.Context) {
		FromContext(c).Info().Text("inside").Emit()
		c.String(http.StatusOK, "pong")
	})
	r.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, sink, base
}

func doRequest(r http.Handler, method, path string, headers map[string]string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_AssignsRequestIDs(t *testing.T) {
	r, sink, _ := newTestRouter(t, steppingClock(5*time.Millisecond))

	w := doRequest(r, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get(HeaderRequestID))

	w = doRequest(r, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, "2", w.Header().Get(HeaderRequestID))

	recs := sink.Records()
	require.Len(t, recs, 4)

	assert.Equal(t, "inside", recs[0].Message)
	assert.Equal(t, "http", recs[0].Emitter)
	assert.Equal(t, "1", recs[0].ReqID)

	assert.Equal(t, "GET /ping 200 5ms", recs[1].Message)
	assert.Equal(t, msglog.LevelInfo, recs[1].Level)
	assert.Equal(t, 200, recs[1].Data["status"])
	assert.Equal(t, int64(5), recs[1].Data["duration_ms"])

	assert.Equal(t, "2", recs[3].ReqID)
}

func TestMiddleware_UsesCorrelationHeaders(t *testing.T) {
	r, sink, _ := newTestRouter(t, WithEmitter("api"))

	w := doRequest(r, http.MethodGet, "/ping", map[string]string{
		HeaderRequestID: "abc",
		HeaderSessionID: "s9",
	}, "")
	assert.Equal(t, "abc", w.Header().Get(HeaderRequestID))

	for _, rec := range sink.Records() {
		assert.Equal(t, "abc", rec.ReqID)
		assert.Equal(t, "s9", rec.SID)
		assert.Equal(t, "api", rec.Emitter)
	}
}

func TestMiddleware_LevelFromStatus(t *testing.T) {
	r, sink, _ := newTestRouter(t)

	doRequest(r, http.MethodGet, "/missing", nil, "")
	doRequest(r, http.MethodGet, "/boom", nil, "")

	recs := sink.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, msglog.LevelWarn, recs[0].Level)
	assert.Equal(t, msglog.LevelError, recs[1].Level)
	assert.Contains(t, recs[1].Message, assert.AnError.Error())
}

func TestMiddleware_SkipPaths(t *testing.T) {
	r, sink, _ := newTestRouter(t, WithSkipPaths("/health"))

	doRequest(r, http.MethodGet, "/health", nil, "")
	assert.Empty(t, sink.Records())
}

func TestMiddleware_LevelOptionGated(t *testing.T) {
	r, sink, _ := newTestRouter(t, WithLevel(msglog.LevelDebug))

	doRequest(r, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, []string{"inside"}, sink.Messages(), "debug access line is below the info threshold")
}

func TestFromContext_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, FromContext(c).Error().Emit("x"))
}

func TestRequestCounter(t *testing.T) {
	c := NewRequestCounter(41)
	assert.Equal(t, "42", c.Next())
	assert.Equal(t, "43", c.Next())
}

func TestThresholdHandler(t *testing.T) {
	logger, err := msglog.NewLogger(msglog.DefaultLevels())
	require.NoError(t, err)
	child := logger.WithEmitter("child")

	r := gin.New()
	r.Any("/log/threshold", ThresholdHandler(logger))

	w := doRequest(r, http.MethodGet, "/log/threshold", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Threshold string   `json:"threshold"`
		Levels    []string `json:"levels"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, msglog.LevelInfo, got.Threshold)
	assert.Equal(t, msglog.DefaultLevels().Names(), got.Levels)

	w = doRequest(r, http.MethodPut, "/log/threshold", nil, `{"threshold":"debug"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msglog.LevelDebug, logger.ThresholdName())
	assert.Equal(t, msglog.LevelDebug, child.ThresholdName())

	w = doRequest(r, http.MethodPut, "/log/threshold", nil, `{"threshold":"loud"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msglog.LevelDebug, logger.ThresholdName())

	w = doRequest(r, http.MethodPost, "/log/threshold", nil, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
