package logsink

import (
	log "github.com/sirupsen/logrus"
)

// LogrusSink formats records through logrus, the same way
// samsamfire/gocanopen formats node/SDO events — one structured field set
// per record rather than a raw Printf.
type LogrusSink struct {
	logger *log.Logger
}

// NewLogrusSink wraps an existing *logrus.Logger, or logrus's default
// logger when nil is passed.
func NewLogrusSink(logger *log.Logger) *LogrusSink {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogrusSink{logger: logger}
}

func (s *LogrusSink) Emit(r Record) {
	entry := s.logger.WithFields(log.Fields{
		"direction": r.Direction.String(),
		"bytes":     r.HexBytes,
		"timestamp": r.Timestamp,
	})
	switch r.Direction {
	case Error:
		entry.Error(r.Description)
	case Pending:
		entry.Warn(r.Description)
	default:
		entry.Info(r.Description)
	}
}
