package msglog

import (
	"os"

	"github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Logger binds a LevelSet, a StyleTable and an emitter identity, and hands
// out MessageBuilders for each of its levels. Loggers derived with the With*
// methods share the level set, style table, sink, timer and threshold of
// their parent.
type Logger struct {
	levels    *LevelSet
	styles    *StyleTable
	sink      Sink
	clock     Clock
	timer     *Timer
	tabSize   int
	threshold *atomic.Int64
	disabled  bool
	fallback  zerolog.Logger

	emitter string
	action  string
	reqID   string
	sid     string
	static  map[string]interface{}
}

// Option configures a Logger built by NewLogger.
type Option func(*loggerOptions)

type loggerOptions struct {
	styles    *StyleTable
	threshold interface{}
	sink      Sink
	emitter   string
	clock     Clock
	tabSize   int
	static    map[string]interface{}
	fallback  *zerolog.Logger
}

// WithStyles sets the style table. The default is PlainStyles.
func WithStyles(t *StyleTable) Option {
	return func(o *loggerOptions) { o.styles = t }
}

// WithThreshold sets the initial threshold, as a level name or rank. The
// default is the level set's default level.
func WithThreshold(nameOrRank interface{}) Option {
	return func(o *loggerOptions) { o.threshold = nameOrRank }
}

// WithSink sets where dispatched records go. Without a sink lines are still
// rendered and returned by Emit but go nowhere.
func WithSink(s Sink) Option {
	return func(o *loggerOptions) { o.sink = s }
}

// WithEmitterName sets the emitter label.
func WithEmitterName(name string) Option {
	return func(o *loggerOptions) { o.emitter = name }
}

// WithClock sets the clock used for timestamps and elapsed time.
func WithClock(c Clock) Option {
	return func(o *loggerOptions) { o.clock = c }
}

// WithTabSize sets the width of one MessageBuilder.Tab step.
func WithTabSize(n int) Option {
	return func(o *loggerOptions) { o.tabSize = n }
}

// WithStaticFields sets fields copied into every record.
func WithStaticFields(fields map[string]interface{}) Option {
	return func(o *loggerOptions) { o.static = fields }
}

// WithFallback sets where the Logger reports its own misuse, such as a
// builder requested for an unknown level. When unset, a sink that exposes
// Fallback() (like Manager) is used, otherwise stderr.
func WithFallback(fl zerolog.Logger) Option {
	return func(o *loggerOptions) { o.fallback = &fl }
}

// fallbackProvider is implemented by sinks that own a fallback channel.
type fallbackProvider interface {
	Fallback() zerolog.Logger
}

// NewLogger builds a Logger over levels. An unknown initial threshold is an
// error.
func NewLogger(levels *LevelSet, opts ...Option) (*Logger, error) {
	const op errors.Op = "msglog.NewLogger"
	if levels == nil {
		return nil, errors.New(op).Msg(errMsgNilLevelSet)
	}

	o := loggerOptions{tabSize: DefaultTabSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.styles == nil {
		o.styles = PlainStyles()
	}
	if o.clock == nil {
		o.clock = SystemClock
	}
	if o.tabSize <= 0 {
		o.tabSize = DefaultTabSize
	}
	if o.threshold == nil {
		o.threshold = levels.Default()
	}

	threshold, err := resolveThreshold(levels, o.threshold)
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgBadThreshold)
	}

	var fallback zerolog.Logger
	switch fp, ok := o.sink.(fallbackProvider); {
	case o.fallback != nil:
		fallback = *o.fallback
	case ok:
		fallback = fp.Fallback()
	default:
		fallback = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("component", "msglog").Logger()
	}

	return &Logger{
		levels:    levels,
		styles:    o.styles,
		sink:      o.sink,
		clock:     o.clock,
		timer:     NewTimer(o.clock),
		tabSize:   o.tabSize,
		threshold: atomic.NewInt64(int64(threshold)),
		emitter:   o.emitter,
		static:    copyFields(o.static),
		fallback:  fallback,
	}, nil
}

// Nop returns a Logger that never dispatches anything.
func Nop() *Logger {
	return &Logger{
		levels:    DefaultLevels(),
		styles:    PlainStyles(),
		clock:     SystemClock,
		timer:     NewTimer(SystemClock),
		tabSize:   DefaultTabSize,
		threshold: atomic.NewInt64(-1),
		disabled:  true,
		fallback:  zerolog.Nop(),
	}
}

// resolveThreshold accepts only values that name a registered level, whether
// given by name or by rank.
func resolveThreshold(levels *LevelSet, nameOrRank interface{}) (int, error) {
	rank, err := levels.AsValue(nameOrRank)
	if err != nil {
		return 0, err
	}
	if _, err = levels.AsName(rank); err != nil {
		return 0, err
	}
	return rank, nil
}

// Builder returns a builder for the named level. An unregistered name yields
// an error matching ErrUnknownLevel together with a builder that never emits.
func (l *Logger) Builder(name string) (*MessageBuilder, error) {
	rank, err := l.levels.AsValue(name)
	if err != nil {
		return newMessageBuilder(nil, name, 0), err
	}
	return newMessageBuilder(l, name, rank), nil
}

// Level is Builder for call chains. An unknown name is reported on the
// fallback logger and the returned builder never emits.
func (l *Logger) Level(name string) *MessageBuilder {
	b, err := l.Builder(name)
	if err != nil {
		l.fallback.Warn().
			Err(err).
			Str("requested_level", name).
			Str("emitter", l.emitter).
			Msg("log level is not registered")
	}
	return b
}

func (l *Logger) Error() *MessageBuilder   { return l.Level(LevelError) }
func (l *Logger) Warn() *MessageBuilder    { return l.Level(LevelWarn) }
func (l *Logger) Info() *MessageBuilder    { return l.Level(LevelInfo) }
func (l *Logger) Verbose() *MessageBuilder { return l.Level(LevelVerbose) }
func (l *Logger) Debug() *MessageBuilder   { return l.Level(LevelDebug) }
func (l *Logger) Trace() *MessageBuilder   { return l.Level(LevelTrace) }

// SetThreshold changes the threshold for lines emitted from now on. It is
// shared with every Logger derived from the same root.
func (l *Logger) SetThreshold(nameOrRank interface{}) error {
	rank, err := resolveThreshold(l.levels, nameOrRank)
	if err != nil {
		return err
	}
	l.threshold.Store(int64(rank))
	return nil
}

// Threshold returns the current threshold rank.
func (l *Logger) Threshold() int {
	return int(l.threshold.Load())
}

// ThresholdName returns the name of the current threshold level.
func (l *Logger) ThresholdName() string {
	name, _ := l.levels.AsName(l.Threshold())
	return name
}

// Enabled reports whether a line at rank would currently be dispatched.
func (l *Logger) Enabled(rank int) bool {
	if l == nil || l.disabled {
		return false
	}
	return l.levels.MeetsThreshold(rank, l.Threshold())
}

// LevelEnabled is Enabled by level name. Unknown names are never enabled.
func (l *Logger) LevelEnabled(name string) bool {
	rank, err := l.levels.AsValue(name)
	if err != nil {
		return false
	}
	return l.Enabled(rank)
}

func (l *Logger) Levels() *LevelSet   { return l.levels }
func (l *Logger) Styles() *StyleTable { return l.styles }
func (l *Logger) Emitter() string     { return l.emitter }
func (l *Logger) Timer() *Timer       { return l.timer }
func (l *Logger) RequestID() string   { return l.reqID }
func (l *Logger) SessionID() string   { return l.sid }

func (l *Logger) clone() *Logger {
	c := *l
	return &c
}

// WithEmitter returns a Logger labelled with emitter.
func (l *Logger) WithEmitter(emitter string) *Logger {
	c := l.clone()
	c.emitter = emitter
	return c
}

// WithRequest returns a Logger bound to a request and session.
func (l *Logger) WithRequest(reqID, sid string) *Logger {
	c := l.clone()
	c.reqID = reqID
	c.sid = sid
	return c
}

// WithAction returns a Logger whose records carry action.
func (l *Logger) WithAction(action string) *Logger {
	c := l.clone()
	c.action = action
	return c
}

// WithStyles returns a Logger rendering through t.
func (l *Logger) WithStyles(t *StyleTable) *Logger {
	c := l.clone()
	if t == nil {
		t = PlainStyles()
	}
	c.styles = t
	return c
}

// WithStatic returns a Logger whose records carry fields in addition to the
// parent's static fields.
func (l *Logger) WithStatic(fields map[string]interface{}) *Logger {
	c := l.clone()
	merged := copyFields(l.static)
	if merged == nil && len(fields) > 0 {
		merged = make(map[string]interface{}, len(fields))
	}
	for k, v := range fields {
		merged[k] = v
	}
	c.static = merged
	return c
}

func (l *Logger) dispatch(b *MessageBuilder, message, rendered string) {
	if l.sink == nil {
		return
	}
	rec := &Record{
		Timestamp: l.clock.Now(),
		Level:     b.level,
		Rank:      b.rank,
		Emitter:   l.emitter,
		Action:    l.action,
		Message:   message,
		Rendered:  rendered,
		SID:       l.sid,
		ReqID:     l.reqID,
		Static:    l.static,
		Data:      b.data,
	}
	// Delivery problems belong to the sink.
	_ = l.sink.Write(rec)
}

func copyFields(in map[string]interface{}) map[string]interface{} {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
