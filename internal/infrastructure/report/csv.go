// Package report renders run reports as CSV files for review in a
// spreadsheet, the workflow the reconciliation reports feed.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gisdx/catalog-core/internal/domain/entities"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// CSVSink implements ports.ReportSink, writing one timestamped CSV per run
// under the reports directory.
type CSVSink struct {
	dir string
}

// NewCSVSink creates a CSVSink writing into dir.
func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{dir: dir}
}

func (s *CSVSink) open(name string) (*os.File, *csv.Writer, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating reports directory: %w", err)
	}
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating report file: %w", err)
	}
	return f, csv.NewWriter(f), nil
}

func stamp() string {
	return timeNow().Format("20060102_150405")
}

func finish(f *os.File, w *csv.Writer) error {
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing report: %w", err)
	}
	return nil
}

// WriteDetect renders a detect report: the unique section, a summary row,
// then the error and duplicate sections.
func (s *CSVSink) WriteDetect(rep *entities.DetectReport) (string, error) {
	name := fmt.Sprintf("detect_%s_%s.csv", rep.Layer, stamp())
	f, w, err := s.open(name)
	if err != nil {
		return "", err
	}

	w.Write(rep.Headers)
	for _, row := range rep.Unique {
		w.Write(detectValues(rep.Headers, row))
	}

	w.Write([]string{"SUMMARY", strconv.Itoa(rep.Total) + "-total"})
	for _, field := range rep.Headers[1:] {
		w.Write([]string{"", field, strconv.Itoa(rep.FieldCounts[field]) + "/" + strconv.Itoa(rep.Total)})
	}
	w.Write([]string{"", "unique", strconv.Itoa(len(rep.Unique))})
	w.Write([]string{"", "duplicate_groups", strconv.Itoa(len(rep.Duplicates))})
	w.Write([]string{"", "errors", strconv.Itoa(len(rep.Errors))})

	if len(rep.Errors) > 0 {
		w.Write([]string{"ERRORS"})
		for _, row := range rep.Errors {
			w.Write(detectValues(rep.Headers, row))
		}
	}

	if len(rep.Duplicates) > 0 {
		w.Write([]string{"DUPLICATES"})
		for _, group := range rep.Duplicates {
			w.Write([]string{"DUPLICATE", group.Entity, strconv.Itoa(len(group.Records)) + " records"})
			for _, row := range group.Records {
				w.Write(detectValues(rep.Headers, row))
			}
		}
	}

	if err := finish(f, w); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

func detectValues(headers []string, row entities.DetectRow) []string {
	out := make([]string, 0, len(headers))
	out = append(out, row.Entity)
	for _, h := range headers[1:] {
		out = append(out, row.Values[h])
	}
	return out
}

// WriteFill renders a fill report: corrected values in place, healthy
// fields blank, then per-field health counts.
func (s *CSVSink) WriteFill(rep *entities.FillReport) (string, error) {
	name := fmt.Sprintf("fill_%s_%s.csv", rep.Layer, stamp())
	f, w, err := s.open(name)
	if err != nil {
		return "", err
	}

	w.Write(rep.Headers)
	for _, row := range rep.Rows {
		out := make([]string, 0, len(rep.Headers))
		out = append(out, row.Entity)
		for _, field := range rep.Headers[1:] {
			if field == "og_title" {
				out = append(out, row.OgTitle)
				continue
			}
			check := row.Cells[field]
			if check.Status == entities.FieldHealthy {
				out = append(out, "")
				continue
			}
			out = append(out, check.Value)
		}
		w.Write(out)
	}

	w.Write([]string{"SUMMARY", strconv.Itoa(len(rep.Rows)) + "-checked", strconv.Itoa(rep.Skipped) + "-skipped"})
	for _, field := range rep.Headers[1:] {
		if field == "og_title" {
			continue
		}
		w.Write([]string{"", field, strconv.Itoa(rep.HealthyCounts[field]) + "/" + strconv.Itoa(len(rep.Rows)) + " healthy"})
	}

	if err := finish(f, w); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// WriteCreate renders a create report: one row per entity field, plus the
// per-entity status.
func (s *CSVSink) WriteCreate(rep *entities.CreateReport) (string, error) {
	name := fmt.Sprintf("create_%s_%s.csv", rep.Layer, stamp())
	f, w, err := s.open(name)
	if err != nil {
		return "", err
	}

	w.Write([]string{"entity", "status", "field", "value"})
	for _, outcome := range rep.Outcomes {
		w.Write([]string{outcome.Entity, outcome.Status, "", ""})

		fields := make([]string, 0, len(outcome.Record))
		for field := range outcome.Record {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			w.Write([]string{"", "", field, outcome.Record[field]})
		}
		for _, field := range outcome.MissingFields {
			w.Write([]string{"", "", field, entities.ManualRequiredValue})
		}
	}
	w.Write([]string{
		"SUMMARY",
		strconv.Itoa(rep.Created) + "-created",
		strconv.Itoa(rep.Blocked) + "-blocked",
		strconv.Itoa(rep.Skipped) + "-skipped",
	})

	if err := finish(f, w); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// WriteInfer renders an inference report.
func (s *CSVSink) WriteInfer(rep *entities.InferReport) (string, error) {
	name := fmt.Sprintf("infer_%s.csv", stamp())
	f, w, err := s.open(name)
	if err != nil {
		return "", err
	}

	w.Write([]string{
		"entity", "layer", "state", "county", "city",
		"existing_transform", "proposed_transform", "confidence", "reasons", "applied",
	})
	for _, row := range rep.Rows {
		w.Write([]string{
			row.Entity, row.Layer, row.State, row.County, row.City,
			row.Existing, row.Proposed, row.Confidence,
			strings.Join(row.Reasons, "; "), strconv.FormatBool(row.Applied),
		})
	}
	w.Write([]string{"SUMMARY", strconv.Itoa(rep.Processed) + "-processed", strconv.Itoa(rep.Updated) + "-updated"})

	if err := finish(f, w); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}
