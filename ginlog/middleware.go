// Package ginlog attaches a request-scoped msglog.Logger to gin requests and
// logs one line per response.
package ginlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Station-Manager/msglog"
	"github.com/gin-gonic/gin"
	"go.uber.org/atomic"
)

// Correlation headers read from the request. The request id is echoed on the
// response.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderSessionID = "X-Session-ID"
)

const contextKey = "msglog.logger"

// RequestCounter hands out request ids. Each middleware instance is given
// its own counter.
type RequestCounter struct {
	n atomic.Uint64
}

// NewRequestCounter starts counting after start.
func NewRequestCounter(start uint64) *RequestCounter {
	c := &RequestCounter{}
	c.n.Store(start)
	return c
}

// Next returns the next id.
func (c *RequestCounter) Next() string {
	return strconv.FormatUint(c.n.Inc(), 10)
}

type options struct {
	emitter   string
	level     string
	skipPaths map[string]bool
	now       func() time.Time
}

// Option configures Middleware.
type Option func(*options)

// WithEmitter labels request loggers with name (default "http").
func WithEmitter(name string) Option {
	return func(o *options) { o.emitter = name }
}

// WithLevel sets the level of the access line for successful responses
// (default "info"). 4xx responses log at warn, 5xx at error.
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithSkipPaths disables the access line for the given paths. The request
// logger is still attached.
func WithSkipPaths(paths ...string) Option {
	return func(o *options) {
		for _, p := range paths {
			o.skipPaths[p] = true
		}
	}
}

// Middleware binds a request logger derived from base to every request and
// logs method, path, status and duration once the handlers have run.
func Middleware(base *msglog.Logger, counter *RequestCounter, opts ...Option) gin.HandlerFunc {
	o := options{
		emitter:   "http",
		level:     msglog.LevelInfo,
		skipPaths: map[string]bool{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if counter == nil {
		counter = NewRequestCounter(0)
	}

	return func(c *gin.Context) {
		start := o.now()

		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = counter.Next()
		}
		sid := c.GetHeader(HeaderSessionID)

		log := base.WithEmitter(o.emitter).WithRequest(reqID, sid)
		c.Set(contextKey, log)
		c.Header(HeaderRequestID, reqID)

		c.Next()

		path := c.Request.URL.Path
		if o.skipPaths[path] {
			return
		}

		status := c.Writer.Status()
		elapsed := o.now().Sub(start)
		level := o.level
		switch {
		case status >= http.StatusInternalServerError:
			level = msglog.LevelError
		case status >= http.StatusBadRequest:
			level = msglog.LevelWarn
		}

		b := log.Level(level).
			Action(c.Request.Method).
			Path(path).
			Value(status).
			Plain(elapsed.String()).
			Data("status", status).
			Data("duration_ms", elapsed.Milliseconds())
		if len(c.Errors) > 0 {
			b.Error(c.Errors.String())
		}
		b.Emit()
	}
}

// FromContext returns the request logger set by Middleware, or a Nop logger.
func FromContext(c *gin.Context) *msglog.Logger {
	if v, ok := c.Get(contextKey); ok {
		if l, ok := v.(*msglog.Logger); ok {
			return l
		}
	}
	return msglog.Nop()
}

type thresholdBody struct {
	Threshold string `json:"threshold" binding:"required"`
}

// ThresholdHandler serves the logger's threshold: GET reports it, PUT and
// POST set it from {"threshold": "<level>"}.
func ThresholdHandler(l *msglog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.JSON(http.StatusOK, gin.H{
				"threshold": l.ThresholdName(),
				"levels":    l.Levels().Names(),
			})
			return
		}

		var body thresholdBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := l.SetThreshold(body.Threshold); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"threshold": l.ThresholdName()})
	}
}
