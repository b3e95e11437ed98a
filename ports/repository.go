package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"molcure/domain/core"
)

// WorkflowRecord is a stored curation workflow document.
type WorkflowRecord struct {
	ID        uuid.UUID
	Name      string
	Document  []byte // workflow JSON
	CreatedAt time.Time
}

// RunRecord is a stored result of one curation run.
type RunRecord struct {
	RunID      core.RunID
	WorkflowID uuid.UUID
	Report     []byte // report JSON
	CreatedAt  time.Time
}

// WorkflowRepository persists workflow documents and run reports.
type WorkflowRepository interface {
	SaveWorkflow(ctx context.Context, name string, document []byte) (uuid.UUID, error)
	GetWorkflow(ctx context.Context, id uuid.UUID) (*WorkflowRecord, error)
	ListWorkflows(ctx context.Context, limit int) ([]*WorkflowRecord, error)
	SaveRun(ctx context.Context, workflowID uuid.UUID, runID core.RunID, reportJSON []byte) error
	GetLatestRun(ctx context.Context, workflowID uuid.UUID) (*RunRecord, error)
}
