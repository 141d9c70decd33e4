// Package xlsx serves tabular tables from sheets of an Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kiranshivaraju/queueview/internal/tabular"
	"github.com/xuri/excelize/v2"
)

// TimestampLayout is the text form timestamp cells are converted to.
const TimestampLayout = "2006-01-02T15:04:05"

// Sheet maps a logical table onto a worksheet. Columns maps logical column
// names to header text; headers are matched after trimming whitespace.
type Sheet struct {
	Name        string
	Columns     map[string]string
	TimeColumns []string
}

// DefaultSheets is the layout of the jobs workbook exported by the execution system.
var DefaultSheets = map[string]Sheet{
	tabular.TableActiveQueue: {
		Name: "ActiveQueue",
		Columns: map[string]string{
			tabular.ColJobID:          "Name",
			tabular.ColWorkflowTypeID: "WorkflowTypeID",
			tabular.ColSubmittedBy:    "SubmittedBy",
			tabular.ColStartTime:      "StartTime",
			tabular.ColEndTime:        "EndTime",
			tabular.ColStatusMessage:  "StatusMessage",
			tabular.ColOutputResult:   "OutputResult",
			tabular.ColErrorMessage:   "errorMessage",
		},
		TimeColumns: []string{tabular.ColStartTime, tabular.ColEndTime},
	},
	tabular.TableWorkflowCatalog: {
		Name: "WorkflowDefinition",
		Columns: map[string]string{
			tabular.ColWorkflowTypeID: "WorkflowTypeID",
			tabular.ColWorkflowType:   "WorkflowType",
			tabular.ColDependentOn:    "DependentOn",
			tabular.ColWorkflowTask:   "WorkflowTask",
		},
	},
}

// Store implements tabular.Store over a workbook on disk. The file is opened
// on every read so each request sees the workbook as it currently is.
type Store struct {
	path   string
	sheets map[string]Sheet
}

// NewStore creates a Store for the workbook at path. A nil sheets map uses DefaultSheets.
func NewStore(path string, sheets map[string]Sheet) *Store {
	if sheets == nil {
		sheets = DefaultSheets
	}
	return &Store{path: path, sheets: sheets}
}

type readResult struct {
	rows []tabular.Row
	err  error
}

// ReadTable implements tabular.Store. excelize has no context support, so the
// read runs in its own goroutine and is abandoned when ctx ends.
func (s *Store) ReadTable(ctx context.Context, name string, columns []tabular.Column) ([]tabular.Row, error) {
	sheet, ok := s.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", tabular.ErrUnknownTable, name)
	}

	done := make(chan readResult, 1)
	go func() {
		rows, err := s.read(name, sheet, columns)
		done <- readResult{rows: rows, err: err}
	}()

	select {
	case res := <-done:
		return res.rows, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("read %s: %w", name, ctx.Err())
	}
}

func (s *Store) read(name string, sheet Sheet, columns []tabular.Column) ([]tabular.Row, error) {
	f, err := excelize.OpenFile(s.path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	raw, err := f.GetRows(sheet.Name, excelize.Options{RawCellValue: true})
	if err != nil {
		var missing excelize.ErrSheetNotExist
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: sheet %q", tabular.ErrUnknownTable, sheet.Name)
		}
		return nil, fmt.Errorf("read sheet %q: %w", sheet.Name, err)
	}

	var header []string
	if len(raw) > 0 {
		header = raw[0]
	}
	index := headerIndex(header)

	type binding struct {
		column string
		pos    int
		time   bool
	}
	bindings := make([]binding, 0, len(columns))
	for _, c := range columns {
		title, mapped := sheet.Columns[c.Name]
		pos, found := index[strings.TrimSpace(title)]
		if !mapped || !found {
			if c.Optional {
				continue
			}
			return nil, tabular.MissingColumnError(name, c.Name)
		}
		bindings = append(bindings, binding{
			column: c.Name,
			pos:    pos,
			time:   contains(sheet.TimeColumns, c.Name),
		})
	}

	rows := make([]tabular.Row, 0, len(raw))
	for _, cells := range raw[min(1, len(raw)):] {
		if blank(cells) {
			continue
		}
		row := make(tabular.Row, len(bindings))
		for _, b := range bindings {
			if b.pos >= len(cells) {
				continue
			}
			v := strings.TrimSpace(cells[b.pos])
			if v == "" {
				continue
			}
			if b.time {
				v = serialToTimestamp(v, date1904)
			}
			row[b.column] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// serialToTimestamp converts an Excel date serial to TimestampLayout text.
// Cells that are not numeric are returned unchanged.
func serialToTimestamp(v string, date1904 bool) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return v
	}
	return t.Round(time.Second).Format(TimestampLayout)
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
