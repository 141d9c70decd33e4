// Package jobs builds the enriched job views served by the API by joining the
// Active Queue against the Workflow Catalog.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kiranshivaraju/queueview/internal/tabular"
	"github.com/kiranshivaraju/queueview/pkg/models"
)

// DefaultTimeout bounds a single query when the caller does not configure one.
const DefaultTimeout = 10 * time.Second

var queueColumns = tabular.Required(
	tabular.ColJobID,
	tabular.ColWorkflowTypeID,
	tabular.ColSubmittedBy,
	tabular.ColStartTime,
	tabular.ColEndTime,
	tabular.ColStatusMessage,
	tabular.ColOutputResult,
	tabular.ColErrorMessage,
)

var catalogColumns = []tabular.Column{
	{Name: tabular.ColWorkflowTypeID},
	{Name: tabular.ColWorkflowType},
	{Name: tabular.ColDependentOn, Optional: true},
	{Name: tabular.ColWorkflowTask, Optional: true},
}

// Filter narrows a query. A nil SubmittedBy returns every job in the queue.
type Filter struct {
	SubmittedBy *string
}

// ForUser returns a Filter scoped to jobs submitted by username.
func ForUser(username string) Filter {
	return Filter{SubmittedBy: &username}
}

// Engine answers job queries against a tabular source. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	source  tabular.Store
	timeout time.Duration
}

// NewEngine creates an Engine. A non-positive timeout falls back to DefaultTimeout.
func NewEngine(source tabular.Store, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{source: source, timeout: timeout}
}

// Query returns the enriched jobs matching f in the source's row order.
// Every matching execution record appears exactly once, with or without a
// catalog match. Failures wrap ErrSchema or ErrSourceUnavailable.
func (e *Engine) Query(ctx context.Context, f Filter) ([]models.EnrichedJob, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.source.ReadTable(ctx, tabular.TableActiveQueue, queueColumns)
	if err != nil {
		return nil, classify(tabular.TableActiveQueue, err)
	}

	type parsed struct {
		rec   models.ExecutionRecord
		start time.Time
		end   *time.Time
	}

	records := make([]parsed, 0, len(rows))
	wanted := make(map[string]bool)
	for i, row := range rows {
		rec := toRecord(row)
		if f.SubmittedBy != nil && rec.SubmittedBy != *f.SubmittedBy {
			continue
		}

		start, end, err := parseSpan(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %w", ErrSchema, tabular.TableActiveQueue, i+1, err)
		}
		records = append(records, parsed{rec: rec, start: start, end: end})

		if rec.WorkflowTypeID != nil {
			wanted[*rec.WorkflowTypeID] = true
		}
	}

	catalog := map[string]*models.WorkflowType{}
	if len(wanted) > 0 {
		catalog, err = e.readCatalog(ctx, wanted)
		if err != nil {
			return nil, err
		}
	}

	out := make([]models.EnrichedJob, 0, len(records))
	for _, p := range records {
		var wf *models.WorkflowType
		if p.rec.WorkflowTypeID != nil {
			wf = catalog[*p.rec.WorkflowTypeID]
		}
		out = append(out, enrich(p.rec, p.start, p.end, wf))
	}
	return out, nil
}

// readCatalog loads the catalog rows whose ids are in wanted, keeping the
// first row for each id.
func (e *Engine) readCatalog(ctx context.Context, wanted map[string]bool) (map[string]*models.WorkflowType, error) {
	rows, err := e.source.ReadTable(ctx, tabular.TableWorkflowCatalog, catalogColumns)
	if err != nil {
		return nil, classify(tabular.TableWorkflowCatalog, err)
	}

	hasDep := hasColumn(rows, tabular.ColDependentOn)
	hasTask := hasColumn(rows, tabular.ColWorkflowTask)

	catalog := make(map[string]*models.WorkflowType, len(wanted))
	for _, row := range rows {
		id, ok := row.Get(tabular.ColWorkflowTypeID)
		if !ok {
			continue
		}
		id = normalizeID(id)
		if !wanted[id] {
			continue
		}
		if _, seen := catalog[id]; seen {
			continue
		}

		catalog[id] = &models.WorkflowType{
			WorkflowTypeID:  id,
			WorkflowType:    row.Ptr(tabular.ColWorkflowType),
			DependentOn:     row.Ptr(tabular.ColDependentOn),
			WorkflowTask:    row.Ptr(tabular.ColWorkflowTask),
			HasDependentOn:  hasDep,
			HasWorkflowTask: hasTask,
		}
	}
	return catalog, nil
}

// hasColumn reports whether any row carries col. An optional column that is
// empty in every row is indistinguishable from one the source lacks.
func hasColumn(rows []tabular.Row, col string) bool {
	for _, r := range rows {
		if _, ok := r[col]; ok {
			return true
		}
	}
	return false
}

func toRecord(row tabular.Row) models.ExecutionRecord {
	rec := models.ExecutionRecord{
		JobID:         row[tabular.ColJobID],
		SubmittedBy:   row[tabular.ColSubmittedBy],
		StartTime:     row[tabular.ColStartTime],
		EndTime:       row.Ptr(tabular.ColEndTime),
		StatusMessage: row.Ptr(tabular.ColStatusMessage),
		OutputResult:  row.Ptr(tabular.ColOutputResult),
		ErrorMessage:  row.Ptr(tabular.ColErrorMessage),
	}
	if id, ok := row.Get(tabular.ColWorkflowTypeID); ok {
		id = normalizeID(id)
		rec.WorkflowTypeID = &id
	}
	return rec
}

func parseSpan(rec models.ExecutionRecord) (time.Time, *time.Time, error) {
	if rec.StartTime == "" {
		return time.Time{}, nil, fmt.Errorf("job %q has no start_time", rec.JobID)
	}
	start, err := parseTimestamp(rec.StartTime)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("job %q start_time: %w", rec.JobID, err)
	}
	if rec.EndTime == nil {
		return start, nil, nil
	}
	end, err := parseTimestamp(*rec.EndTime)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("job %q end_time: %w", rec.JobID, err)
	}
	return start, &end, nil
}

func classify(table string, err error) error {
	if errors.Is(err, tabular.ErrMissingColumn) || errors.Is(err, tabular.ErrUnknownTable) {
		return fmt.Errorf("%w: read %s: %w", ErrSchema, table, err)
	}
	return fmt.Errorf("%w: read %s: %w", ErrSourceUnavailable, table, err)
}
