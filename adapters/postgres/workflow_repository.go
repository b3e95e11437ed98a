package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"molcure/domain/core"
	"molcure/ports"
)

// WorkflowRepositoryImpl implements WorkflowRepository for PostgreSQL
type WorkflowRepositoryImpl struct {
	db *sqlx.DB
}

// NewWorkflowRepository creates a new PostgreSQL workflow repository
func NewWorkflowRepository(db *sqlx.DB) ports.WorkflowRepository {
	return &WorkflowRepositoryImpl{db: db}
}

// SaveWorkflow stores a workflow document and returns its assigned ID
func (r *WorkflowRepositoryImpl) SaveWorkflow(ctx context.Context, name string, document []byte) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO curation_workflows (id, name, document, created_at)
		VALUES ($1, $2, $3, NOW())
	`, id, name, document)

	return id, err
}

// GetWorkflow retrieves a workflow document by its ID
func (r *WorkflowRepositoryImpl) GetWorkflow(ctx context.Context, id uuid.UUID) (*ports.WorkflowRecord, error) {
	var record ports.WorkflowRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, document, created_at
		FROM curation_workflows
		WHERE id = $1
	`, id).Scan(&record.ID, &record.Name, &record.Document, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListWorkflows returns stored workflows, newest first, optionally limited
func (r *WorkflowRepositoryImpl) ListWorkflows(ctx context.Context, limit int) ([]*ports.WorkflowRecord, error) {
	query := `
		SELECT id, name, document, created_at
		FROM curation_workflows
		ORDER BY created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*ports.WorkflowRecord
	for rows.Next() {
		var record ports.WorkflowRecord
		if err := rows.Scan(&record.ID, &record.Name, &record.Document, &record.CreatedAt); err != nil {
			return nil, err
		}
		workflows = append(workflows, &record)
	}
	return workflows, rows.Err()
}

// SaveRun stores the report of one curation run
func (r *WorkflowRepositoryImpl) SaveRun(ctx context.Context, workflowID uuid.UUID, runID core.RunID, reportJSON []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO curation_runs (run_id, workflow_id, report, created_at)
		VALUES ($1, $2, $3, NOW())
	`, runID.String(), workflowID, reportJSON)

	return err
}

// GetLatestRun returns the most recent run for a workflow, or nil if none
func (r *WorkflowRepositoryImpl) GetLatestRun(ctx context.Context, workflowID uuid.UUID) (*ports.RunRecord, error) {
	var record ports.RunRecord
	var runID string
	err := r.db.QueryRowContext(ctx, `
		SELECT run_id, workflow_id, report, created_at
		FROM curation_runs
		WHERE workflow_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, workflowID).Scan(&runID, &record.WorkflowID, &record.Report, &record.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	record.RunID = core.RunID(runID)
	return &record, nil
}
