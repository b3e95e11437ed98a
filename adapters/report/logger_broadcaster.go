// Package report contains broadcaster adapters that render a curation
// report to a destination: the process log or a standalone HTML document.
package report

import (
	"molcure/domain/report"
	"molcure/internal"
)

// LoggerBroadcaster writes the report through the leveled logger, one line
// per log entry. Images are announced by title only.
type LoggerBroadcaster struct {
	logger *internal.Logger
}

// NewLoggerBroadcaster creates a broadcaster over the given logger; a nil
// logger falls back to the environment-configured default.
func NewLoggerBroadcaster(logger *internal.Logger) *LoggerBroadcaster {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &LoggerBroadcaster{logger: logger}
}

// Broadcast implements ports.Broadcaster.
func (b *LoggerBroadcaster) Broadcast(rep *report.Report) error {
	b.logger.Info("===== %s =====", rep.Title)
	b.logger.Info("Run %s at %s (tool version %s)", rep.RunID, rep.TimeStamp, rep.ToolVersion)
	for _, section := range rep.Sections {
		b.logger.Info("=== %s ===", section.Title)
		for _, line := range section.Logs {
			b.logger.Info("%s", line)
		}
		for _, img := range section.Images {
			title := img.Title
			if title == "" {
				title = "untitled"
			}
			b.logger.Info("[image: %s, %d bytes %s]", title, len(img.Image), img.Format)
		}
	}
	return nil
}
