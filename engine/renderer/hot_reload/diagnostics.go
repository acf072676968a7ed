package hot_reload

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// CompileError is a failed reload of one watched file. Read failures are reported the same way as
// compiler rejections. It matches both common.ErrCompile and the underlying cause under errors.Is.
type CompileError struct {
	Path string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %v", e.Path, e.Err)
}

func (e *CompileError) Unwrap() []error {
	return []error{common.ErrCompile, e.Err}
}

// Diagnostic is one reported reload failure.
type Diagnostic struct {
	Path string
	Err  error
	Time time.Time
}

// DiagnosticSink receives reload failures. Report is called on the render goroutine, once per
// detected change that failed.
type DiagnosticSink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to DiagnosticSink.
type SinkFunc func(d Diagnostic)

func (f SinkFunc) Report(d Diagnostic) {
	f(d)
}

// LogSink writes diagnostics to a slog.Logger at warn level. A nil Logger uses common.Logger().
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Report(d Diagnostic) {
	l := s.Logger
	if l == nil {
		l = common.Logger()
	}
	msg := d.Err.Error()
	var ce *CompileError
	if errors.As(d.Err, &ce) {
		msg = ce.Err.Error()
	}
	l.Warn("shader compilation failed, keeping previous version", "path", d.Path, "err", msg)
}

// MultiSink fans a diagnostic out to several sinks in order.
type MultiSink []DiagnosticSink

func (m MultiSink) Report(d Diagnostic) {
	for _, s := range m {
		if s != nil {
			s.Report(d)
		}
	}
}
