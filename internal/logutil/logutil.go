package logutil

import (
	"time"

	"github.com/caarlos0/log"
)

// LogDuration reports the time elapsed since start, one level deeper than
// the current padding.
func LogDuration(logger *log.Logger, start time.Time) {
	logger.IncreasePadding()
	logger.Infof("took: %s", time.Since(start).Round(time.Millisecond))
	logger.DecreasePadding()
}
