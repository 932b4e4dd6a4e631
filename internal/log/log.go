package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

var logger *slog.Logger
var baseHandler slog.Handler
var fileWriter *FileWriter

// Options configures the logger. The CLI root command builds this from
// --verbose/--json and the prefix's debug-log directory
// (<prefix>/logs by default, see internal/config).
type Options struct {
	// Verbose enables debug/info output to stderr. wenget runs are
	// always non-interactive, so unlike a TUI-driven tool this has no
	// separate interactive suppression flag.
	Verbose bool
	// JSONFormat uses JSON output format for stderr, mirroring --json.
	JSONFormat bool
	// DebugDir is the directory for debug log files. If empty, file logging is disabled.
	DebugDir string
	// RetentionDays is how many days to keep log files (0 = no cleanup)
	RetentionDays int
	// Stderr is the writer for stderr output (defaults to os.Stderr)
	Stderr io.Writer
}

// Init initializes the global logger with the given options.
func Init(opts Options) error {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var handlers []slog.Handler

	// Stderr handler: Warn+Error by default, all levels with --verbose.
	stderrLevel := slog.LevelWarn
	if opts.Verbose {
		stderrLevel = slog.LevelDebug
	}

	stderrOpts := &slog.HandlerOptions{
		Level: stderrLevel,
	}

	if opts.JSONFormat {
		handlers = append(handlers, slog.NewJSONHandler(stderr, stderrOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(stderr, stderrOpts))
	}

	// File handler: always all levels, always JSON
	if opts.DebugDir != "" {
		// Clean up old files first
		if opts.RetentionDays > 0 {
			Cleanup(opts.DebugDir, opts.RetentionDays)
		}

		fw, err := NewFileWriter(opts.DebugDir)
		if err != nil {
			return err
		}
		fileWriter = fw

		fileOpts := &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}
		handlers = append(handlers, slog.NewJSONHandler(fileWriter, fileOpts))
	}

	baseHandler = &multiHandler{handlers: handlers}
	logger = slog.New(baseHandler)
	slog.SetDefault(logger)
	return nil
}

// Close closes the file writer if one was created.
func Close() {
	if fileWriter != nil {
		fileWriter.Close()
		fileWriter = nil
	}
}

// multiHandler fans out log records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// With returns a logger with additional context.
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}

// SetOutput sets the output writer (for testing).
func SetOutput(w io.Writer) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	baseHandler = handler
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// SetOperation attaches an op attribute (e.g. "add", "update", "bucket-refresh")
// to all subsequent log messages, so a single debug log file can be grepped
// per invocation when several commands share one day's file.
func SetOperation(op string) {
	logger = slog.New(logger.Handler().WithAttrs([]slog.Attr{
		slog.String("op", op),
	}))
	slog.SetDefault(logger)
}

// ClearOperation restores the logger to its pre-SetOperation state.
func ClearOperation() {
	if baseHandler == nil {
		return
	}
	logger = slog.New(baseHandler)
	slog.SetDefault(logger)
}

func init() {
	// Default logger until Init is called
	logger = slog.Default()
}
