// Package logging provides structured logging for the canvas generation engine.
// This file contains molecule-level helpers that compose common generation
// metadata into ready-to-use zap fields.
package logging

import (
	"time"

	"go.uber.org/zap"
)

// TaskFields creates the standard field set for a generation task.
//
// Example:
//
//	logger.Info("task settled", logging.TaskFields(task.ID, task.BatchKey, "image")...)
func TaskFields(taskID, batchKey, kind string) []zap.Field {
	return []zap.Field{
		zap.String("task_id", taskID),
		zap.String("batch_key", batchKey),
		zap.String("kind", kind),
	}
}

// QuotaFields creates the standard field set for quota accounting events.
func QuotaFields(userID string, used, limit, requested int) []zap.Field {
	return []zap.Field{
		zap.String("user_id", userID),
		zap.Int("used", used),
		zap.Int("limit", limit),
		zap.Int("requested", requested),
	}
}

// TimingFields creates fields for operation timing with automatic duration
// calculation.
func TimingFields(start, end time.Time) []zap.Field {
	return []zap.Field{
		zap.Time("start_time", start),
		zap.Time("end_time", end),
		zap.Duration("duration", end.Sub(start)),
	}
}
