package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"molcure/domain/core"
	"molcure/domain/report"
	"molcure/ports"
)

type fakeRepo struct {
	workflows map[uuid.UUID]*ports.WorkflowRecord
	runs      map[uuid.UUID]*ports.RunRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		workflows: make(map[uuid.UUID]*ports.WorkflowRecord),
		runs:      make(map[uuid.UUID]*ports.RunRecord),
	}
}

func (f *fakeRepo) SaveWorkflow(_ context.Context, name string, document []byte) (uuid.UUID, error) {
	id := uuid.New()
	f.workflows[id] = &ports.WorkflowRecord{ID: id, Name: name, Document: document, CreatedAt: time.Now()}
	return id, nil
}

func (f *fakeRepo) GetWorkflow(_ context.Context, id uuid.UUID) (*ports.WorkflowRecord, error) {
	wf, ok := f.workflows[id]
	if !ok {
		return nil, context.Canceled
	}
	return wf, nil
}

func (f *fakeRepo) ListWorkflows(_ context.Context, _ int) ([]*ports.WorkflowRecord, error) {
	var out []*ports.WorkflowRecord
	for _, wf := range f.workflows {
		out = append(out, wf)
	}
	return out, nil
}

func (f *fakeRepo) SaveRun(_ context.Context, workflowID uuid.UUID, runID core.RunID, reportJSON []byte) error {
	f.runs[workflowID] = &ports.RunRecord{RunID: runID, WorkflowID: workflowID, Report: reportJSON, CreatedAt: time.Now()}
	return nil
}

func (f *fakeRepo) GetLatestRun(_ context.Context, workflowID uuid.UUID) (*ports.RunRecord, error) {
	return f.runs[workflowID], nil
}

func TestServerListsAndFetchesWorkflows(t *testing.T) {
	repo := newFakeRepo()
	doc := []byte(`{"steps":[{"name":"deduplicate"}],"verbosity":"NORMAL"}`)
	id, _ := repo.SaveWorkflow(context.Background(), "dedup-only", doc)

	server := NewServer(repo, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/workflows", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}
	var entries []struct{ ID, Name string }
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "dedup-only" {
		t.Fatalf("unexpected list: %+v", entries)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/workflows/"+id.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "deduplicate") {
		t.Errorf("workflow document not served: %s", rec.Body.String())
	}
}

func TestServerRendersLatestRunReport(t *testing.T) {
	repo := newFakeRepo()
	id, _ := repo.SaveWorkflow(context.Background(), "wf", []byte(`{}`))

	rep := report.New()
	section := rep.StartSection("deduplicate")
	section.Log("Deduplication merged and removed 3 duplicated molecules from dataset")
	section.End()
	repJSON, _ := json.Marshal(rep)
	_ = repo.SaveRun(context.Background(), id, rep.RunID, repJSON)

	server := NewServer(repo, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workflows/"+id.String()+"/report", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("render returned %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "deduplicate") || !strings.Contains(body, "3 duplicated molecules") {
		t.Errorf("rendered report missing content: %s", body)
	}
}

func TestServerReportWithoutRunsIs404(t *testing.T) {
	repo := newFakeRepo()
	id, _ := repo.SaveWorkflow(context.Background(), "wf", []byte(`{}`))

	server := NewServer(repo, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workflows/"+id.String()+"/report", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
