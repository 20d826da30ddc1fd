package msglog

import (
	"os"
	"path/filepath"

	"github.com/Station-Manager/errors"
	"github.com/Station-Manager/utils"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileSink writes records to a size-rotated file.
type FileSink struct {
	Sink
	writer *lumberjack.Logger
}

// NewFileSink opens the rolling log file described by cfg. A relative
// cfg.Dir is resolved against workingDir. The file is named after the
// executable unless cfg.Name is set.
func NewFileSink(workingDir string, cfg FileConfig) (*FileSink, error) {
	const op errors.Op = "msglog.NewFileSink"

	name := cfg.Name
	if name == emptyString {
		exeName, err := utils.ExecName(true)
		if err != nil || exeName == emptyString {
			exeName = "app"
		}
		name = exeName + ".log"
	}

	dir := cfg.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(workingDir, dir)
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgCreateLogDir)
	}

	w := initializeRollingFileLogger(filepath.Join(dir, name), cfg)
	s := &FileSink{writer: w}
	if cfg.Format == FormatText {
		s.Sink = NewTextSink(w, PlainStyles(), "2006-01-02T15:04:05.000Z07:00")
	} else {
		s.Sink = NewJSONSink(w)
	}
	return s, nil
}

func initializeRollingFileLogger(path string, cfg FileConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		MaxSize:    cfg.MaxSizeMB,
	}
}

// Path returns the current log file path.
func (s *FileSink) Path() string {
	return s.writer.Filename
}

// Close closes the log file.
func (s *FileSink) Close() error {
	return s.writer.Close()
}

// newConsoleSink builds the terminal sink for cfg. Text output is styled with
// styles; json and pretty output carry unstyled messages.
func newConsoleSink(cfg ConsoleConfig, styles *StyleTable) Sink {
	out := os.Stderr
	if cfg.Stdout {
		out = os.Stdout
	}
	switch cfg.Format {
	case FormatJSON:
		return NewJSONSink(out)
	case FormatPretty:
		return NewPrettySink(out, !styles.Enabled() || len(styles.fns) == 0)
	default:
		return NewTextSink(out, styles, emptyString)
	}
}
