package todo

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

// ExportFormat names a supported download encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// isoMillis matches the millisecond UTC form of ISO-8601 used in exports.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var csvHeader = []string{"Title", "Tags", "Time", "Priority", "Status"}

// ParseExportFormat accepts "csv" or "json" in any case.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case ExportCSV:
		return ExportCSV, nil
	case ExportJSON:
		return ExportJSON, nil
	default:
		return "", domain.ErrUnknownExportFormat
	}
}

// ExportRow is the flattened projection written to export files.
type ExportRow struct {
	Title    string `json:"Title"`
	Tags     string `json:"Tags"`
	Time     string `json:"Time"`
	Priority string `json:"Priority"`
	Status   string `json:"Status"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export renders every todo matching c, in the requested order, as CSV or JSON.
func (uc *UseCase) Export(ctx context.Context, viewerID, format string, c Criteria) (*ExportFile, error) {
	f, err := ParseExportFormat(format)
	if err != nil {
		return nil, err
	}

	q := c.query(viewerID)
	q.Limit = uc.cfg.ExportMaxRows
	todos, err := uc.todos.Find(ctx, q)
	if err != nil {
		appLogger.WithRequestID(ctx, uc.logger).Error("failed to load todos for export",
			zap.String("viewer_id", viewerID), zap.Error(err))
		return nil, err
	}
	if len(todos) == 0 {
		return nil, domain.ErrNothingToExport
	}

	rows := make([]ExportRow, 0, len(todos))
	for i := range todos {
		rows = append(rows, projectRow(&todos[i]))
	}

	if f == ExportJSON {
		body, err := json.Marshal(rows)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: "todos.json", ContentType: "application/json", Body: body}, nil
	}

	body, err := renderCSV(rows)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Filename: "todos.csv", ContentType: "text/csv", Body: body}, nil
}

func projectRow(t *domain.Todo) ExportRow {
	row := ExportRow{
		Title:    t.Title,
		Tags:     strings.Join(t.Tags, "; "),
		Priority: string(t.Priority),
		Status:   string(t.Status),
	}
	if t.DueDate != nil {
		row.Time = exportTime(*t.DueDate)
	}
	return row
}

func renderCSV(rows []ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Title, r.Tags, r.Time, r.Priority, r.Status}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
