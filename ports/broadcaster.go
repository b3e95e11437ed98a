package ports

import "molcure/domain/report"

// Broadcaster renders a finished curation report to some medium (terminal,
// HTML, ...). Implementations must preserve section order, log order within a
// section, and image order.
type Broadcaster interface {
	Broadcast(r *report.Report) error
}
