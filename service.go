package msglog

import (
	"os"
	"sync"

	"github.com/Station-Manager/errors"
	"go.uber.org/atomic"
)

// Service owns a configured Manager and root Logger for an application.
// Loggers handed out before Initialize, or after Close, discard everything.
type Service struct {
	// WorkingDir anchors a relative file sink directory.
	WorkingDir string
	// Config is used as is; DefaultConfig is used when nil.
	Config *Config

	manager       *Manager
	root          atomic.Pointer[Logger]
	isInitialized atomic.Bool
	mu            sync.Mutex
}

// NewService returns a Service for cfg.
func NewService(workingDir string, cfg *Config) *Service {
	return &Service{WorkingDir: workingDir, Config: cfg}
}

// Initialize validates the configuration, opens the sinks and builds the
// root Logger. Calling it again on an initialized Service is a no-op.
func (s *Service) Initialize() error {
	const op errors.Op = "msglog.Service.Initialize"
	if s == nil {
		return errors.New(op).Msg(errMsgNilService)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isInitialized.Load() {
		return nil
	}

	if s.Config == nil {
		cfg := DefaultConfig()
		s.Config = &cfg
	}
	cfg := s.Config
	if err := validateConfig(cfg); err != nil {
		return err
	}

	levels, err := cfg.LevelSet()
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	consoleOut := os.Stderr
	if cfg.Console.Stdout {
		consoleOut = os.Stdout
	}
	styles, err := StylesByName(cfg.Styles, consoleOut)
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	manager := NewManager(nil)
	if err = s.initializeSinks(manager, styles); err != nil {
		_ = manager.Close()
		return err
	}

	threshold := interface{}(cfg.Threshold)
	if cfg.Threshold == emptyString {
		threshold = levels.Default()
	}
	root, err := NewLogger(levels,
		WithStyles(styles),
		WithSink(manager),
		WithThreshold(threshold),
		WithTabSize(cfg.TabSize),
		WithEmitterName(cfg.Emitter),
	)
	if err != nil {
		_ = manager.Close()
		return err
	}

	s.manager = manager
	s.root.Store(root)
	s.isInitialized.Store(true)
	return nil
}

func (s *Service) initializeSinks(m *Manager, styles *StyleTable) error {
	const op errors.Op = "msglog.Service.initializeSinks"
	cfg := s.Config

	// Without any sink enabled, fall back to the console.
	console := cfg.Console.Enabled ||
		(!cfg.File.Enabled && !cfg.Loggly.Enabled && !cfg.Redis.Enabled)

	if console {
		m.Add(newConsoleSink(cfg.Console, styles))
	}
	if cfg.File.Enabled {
		fs, err := NewFileSink(s.WorkingDir, cfg.File)
		if err != nil {
			return errors.New(op).Err(err).Msg(errMsgSinkSetup)
		}
		m.Add(fs)
	}
	if cfg.Loggly.Enabled {
		ls, err := NewLogglySink(cfg.Loggly, m.Fallback())
		if err != nil {
			return errors.New(op).Err(err).Msg(errMsgSinkSetup)
		}
		m.Add(ls)
	}
	if cfg.Redis.Enabled {
		m.Add(NewRedisSink(cfg.Redis))
	}
	return nil
}

// Logger returns the root Logger, or a Nop logger before Initialize.
func (s *Service) Logger() *Logger {
	if s == nil || !s.isInitialized.Load() {
		return Nop()
	}
	if l := s.root.Load(); l != nil {
		return l
	}
	return Nop()
}

// Emitter returns a Logger labelled with name, sharing the root's threshold
// and sinks.
func (s *Service) Emitter(name string) *Logger {
	return s.Logger().WithEmitter(name)
}

// Manager returns the sink manager, nil before Initialize.
func (s *Service) Manager() *Manager {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager
}

// Close flushes and closes every sink. It is safe to call more than once,
// and on a nil or uninitialized Service.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isInitialized.Load() {
		return nil
	}
	s.isInitialized.Store(false)
	s.root.Store(nil)

	m := s.manager
	s.manager = nil
	if m == nil {
		return nil
	}
	return m.Close()
}
