// Package report models the human-readable record of a curation run: an
// ordered list of sections, one per pipeline step, each accumulating log
// lines and annotated images. Rendering to a terminal, HTML or any other
// medium is the job of a Broadcaster adapter.
package report

import (
	"fmt"

	"molcure/domain/core"
)

// Version is the tool version stamped into every report.
const Version = "0.1.0"

// AnnotatedImage is image data with an optional title and description.
type AnnotatedImage struct {
	Image       []byte `json:"image"`
	Format      string `json:"format"` // "png", "svg", ...
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Section is a named accumulator of log lines and images for one pipeline
// step. A section is obtained from Report.StartSection and stays writable
// until End is called; writing to an ended section is a programming error and
// panics rather than silently dropping the entry.
type Section struct {
	Title  string           `json:"title"`
	Logs   []string         `json:"logs"`
	Images []AnnotatedImage `json:"images"`

	open bool
}

// Log appends a message to the section.
func (s *Section) Log(message string) {
	s.checkOpen()
	s.Logs = append(s.Logs, message)
}

// Logf appends a formatted message to the section.
func (s *Section) Logf(format string, args ...interface{}) {
	s.Log(fmt.Sprintf(format, args...))
}

// LogNewColumn records that a step added a column to the dataset.
func (s *Section) LogNewColumn(name string) {
	s.Logf("New column added: %s", name)
}

// LogImage appends an annotated image to the section.
func (s *Section) LogImage(img AnnotatedImage) {
	s.checkOpen()
	s.Images = append(s.Images, img)
}

// End closes the section. Further Log or LogImage calls panic.
func (s *Section) End() {
	s.open = false
}

func (s *Section) checkOpen() {
	if !s.open {
		panic(fmt.Sprintf("report section %q is not open; use Report.StartSection and write before End", s.Title))
	}
}

// Report summarizes the changes of one curation run.
type Report struct {
	Title       string         `json:"title"`
	RunID       core.RunID     `json:"run_id"`
	ToolVersion string         `json:"tool_version"`
	TimeStamp   core.Timestamp `json:"time_stamp"`
	Sections    []*Section     `json:"sections"`
}

// New creates an empty report with a fresh run ID.
func New() *Report {
	return &Report{
		Title:       "Curation Report",
		RunID:       core.NewRunID(),
		ToolVersion: Version,
		TimeStamp:   core.Now(),
	}
}

// StartSection opens a new section and returns its handle. The handle's
// lifetime is scoped to one pipeline step; the caller ends it when the step
// finishes.
func (r *Report) StartSection(name string) *Section {
	s := &Section{Title: name, open: true}
	r.Sections = append(r.Sections, s)
	return s
}
