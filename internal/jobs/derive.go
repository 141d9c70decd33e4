package jobs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kiranshivaraju/queueview/pkg/models"
)

// StartTimeLayout is how start times are rendered in EnrichedJob.
const StartTimeLayout = "2006-01-02T15:04:05.999999"

// timestampLayouts are tried in order when parsing source timestamps.
// Spreadsheet exports are zone-less; database text casts carry an offset.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02",
}

func parseTimestamp(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", v)
}

// formatElapsed renders d the way a Python timedelta prints:
// "H:MM:SS", with a "N day(s), " prefix past 24h and ".ffffff" when
// sub-second precision is present. Negative spans are rendered by magnitude.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	micros := d / time.Microsecond

	var b strings.Builder
	switch days {
	case 0:
	case 1:
		b.WriteString("1 day, ")
	default:
		fmt.Fprintf(&b, "%d days, ", days)
	}
	fmt.Fprintf(&b, "%d:%02d:%02d", hours, minutes, seconds)
	if micros > 0 {
		fmt.Fprintf(&b, ".%06d", micros)
	}
	return b.String()
}

// normalizeID makes workflow type ids from different sources comparable.
// Spreadsheet cells surface integers as "5.0", so integral floats collapse to "5".
func normalizeID(v string) string {
	v = strings.TrimSpace(v)
	if strings.ContainsAny(v, ".eE") {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return v
}

// enrich derives the presentation fields for one joined row.
// wf is nil when the record has no catalog match.
func enrich(rec models.ExecutionRecord, start time.Time, end *time.Time, wf *models.WorkflowType) models.EnrichedJob {
	job := models.EnrichedJob{
		JobID:     rec.JobID,
		User:      rec.SubmittedBy,
		StartTime: start.Format(StartTimeLayout),
		Duration:  models.DurationUnavailable,
		Progress:  models.ProgressActive,
		Status:    rec.StatusMessage,
		Details: models.JobDetails{
			ErrorMessage: orEmpty(rec.ErrorMessage),
			OutputResult: orEmpty(rec.OutputResult),
		},
	}

	if end != nil {
		job.Duration = formatElapsed(end.Sub(start))
		job.Progress = models.ProgressFinished
	}

	if wf != nil {
		job.WorkflowType = wf.WorkflowType
		if wf.HasWorkflowTask {
			task := orEmpty(wf.WorkflowTask)
			job.Details.WorkflowTask = &task
		}
		if wf.HasDependentOn {
			dep := orEmpty(wf.DependentOn)
			job.Details.DependentOn = &dep
		}
	}
	return job
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
