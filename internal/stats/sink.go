package stats

import "log/slog"

// ErrorSink receives malformed rows skipped during a run. Implementations
// shared between parallel workers must tolerate concurrent calls; no
// ordering among workers is guaranteed.
type ErrorSink interface {
	Record(line []byte, err error)
}

// SlogSink logs each skipped row at Warn level. slog handlers are safe for
// concurrent use, so one SlogSink may be shared across workers.
type SlogSink struct {
	log *slog.Logger
}

func NewSlogSink(l *slog.Logger) *SlogSink {
	return &SlogSink{log: l}
}

func (s *SlogSink) Record(line []byte, err error) {
	s.log.Warn("skipping malformed row", "line", string(line), "reason", err)
}
