// Package reformat runs a layout profile against measurement workbooks.
//
// A file moves from unprocessed to processed exactly once: the whole
// profile is applied to the in-memory workbook, and the file is written
// back a single time after every step has succeeded. A failure leaves the
// file on disk as it was. Running two batches over the same directory at
// the same time is not supported.
package reformat

import (
	"errors"
	"fmt"
	"path/filepath"
	"vibroFmt/internal/excel"
	"vibroFmt/internal/layout"
	"vibroFmt/internal/logger"

	"github.com/xuri/excelize/v2"
)

// ErrSentinelEmpty means the transform finished without leaving a value in
// the sentinel cell, so a saved file would be transformed again next run.
var ErrSentinelEmpty = errors.New("sentinel cell empty after transform")

type Status string

const (
	StatusStarted          Status = "started"
	StatusReformatted      Status = "reformatted"
	StatusAlreadyProcessed Status = "already_processed"
	StatusFailed           Status = "failed"
)

// Result is the outcome for one workbook.
type Result struct {
	Path   string
	Status Status
	// Labels holds the snapshot values read before the transform.
	Labels map[string]string
	Err    error
}

// Apply snapshots the profile's label cells and runs every step against e.
// Nothing is saved.
func Apply(e *excel.Editor, p *layout.Profile) (map[string]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	labels := make(map[string]string, len(p.Snapshots))
	for key, cell := range p.Snapshots {
		value, err := e.GetCellValue(cell)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot %s (%s): %w", key, cell, err)
		}
		labels[key] = value
	}
	logger.Debug("Snapshotted labels", "labels", labels)

	for i, step := range p.Steps {
		if err := runStep(e, p, step, labels); err != nil {
			return labels, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}
	return labels, nil
}

func runStep(e *excel.Editor, p *layout.Profile, step layout.Step, labels map[string]string) error {
	switch step.Op {
	case layout.OpPrune:
		_, err := e.PruneColumns(step.Column)
		return err

	case layout.OpMove:
		src, err := excel.ParseRange(step.Range)
		if err != nil {
			return err
		}
		dst, err := excel.ParseCell(step.Target)
		if err != nil {
			return err
		}
		return e.MoveBlock(src, dst, p.CopyStyle)

	case layout.OpClearRow:
		return e.ClearRow(step.Row)

	case layout.OpClearRange:
		r, err := excel.ParseRange(step.Range)
		if err != nil {
			return err
		}
		return e.ClearRange(r)

	case layout.OpDeleteRow:
		return e.DeleteRow(step.Row)

	case layout.OpMerge:
		r, err := excel.ParseRange(step.Range)
		if err != nil {
			return err
		}
		label := step.Label
		if step.LabelFrom != "" {
			label = labels[step.LabelFrom]
		}
		return e.MergeRange(r, label)

	case layout.OpNumberFormat:
		r, err := excel.ParseRange(step.Range)
		if err != nil {
			return err
		}
		return e.ApplyNumberStyle(r, step.NumFmt, toFont(step.Font))

	case layout.OpFont:
		r, err := excel.ParseRange(step.Range)
		if err != nil {
			return err
		}
		return e.ApplyFont(r, *toFont(step.Font))

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func toFont(f *layout.FontSpec) *excelize.Font {
	if f == nil {
		return nil
	}
	return &excelize.Font{Family: f.Family, Size: f.Size}
}

// ReformatFile transforms one workbook in place unless its sentinel cell
// already holds a value.
func ReformatFile(path string, p *layout.Profile) (Result, error) {
	result := Result{Path: path, Status: StatusFailed}

	if err := p.Validate(); err != nil {
		result.Err = err
		return result, err
	}
	sentinel, _ := excel.ParseCell(p.SentinelCell)

	editor, err := excel.OpenFile(path)
	if err != nil {
		result.Err = err
		return result, err
	}
	defer editor.Close()

	processed, err := editor.IsProcessed(sentinel)
	if err != nil {
		result.Err = err
		return result, err
	}
	if processed {
		logger.Info("File already processed", "file", filepath.Base(path), "sentinel", p.SentinelCell)
		result.Status = StatusAlreadyProcessed
		return result, nil
	}

	labels, err := Apply(editor, p)
	result.Labels = labels
	if err != nil {
		result.Err = err
		return result, err
	}

	if err := markProcessed(editor, p, sentinel); err != nil {
		result.Err = err
		return result, err
	}

	if err := editor.Save(); err != nil {
		result.Err = err
		return result, err
	}

	logger.Info("Reformatted file", "file", filepath.Base(path), "profile", p.Name, "labels", labels)
	result.Status = StatusReformatted
	return result, nil
}

func markProcessed(editor *excel.Editor, p *layout.Profile, sentinel excel.Cell) error {
	done, err := editor.IsProcessed(sentinel)
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	if p.SentinelMark == "" {
		return fmt.Errorf("%w: %s", ErrSentinelEmpty, p.SentinelCell)
	}

	logger.Info("Writing sentinel mark", "sentinel", p.SentinelCell, "mark", p.SentinelMark)
	if err := editor.SetCellValue(sentinel.String(), p.SentinelMark); err != nil {
		return fmt.Errorf("failed to write sentinel %s: %w", p.SentinelCell, err)
	}
	return nil
}

// Event reports progress of ReformatDirectory. Index is 1-based.
type Event struct {
	Index  int
	Total  int
	File   string
	Status Status
	Err    error
}

// Summary counts the outcomes of a directory run.
type Summary struct {
	Total            int
	Reformatted      int
	AlreadyProcessed int
	Failed           int
	Results          []Result
}

// ReformatDirectory reformats every workbook in dir in listing order. A
// failing file, including one that panics, is reported and skipped; the
// error return is reserved for problems with dir itself.
func ReformatDirectory(dir string, p *layout.Profile, onEvent func(Event)) (Summary, error) {
	var summary Summary

	if err := p.Validate(); err != nil {
		return summary, err
	}

	workbooks, err := excel.ListWorkbooks(dir)
	if err != nil {
		return summary, err
	}
	summary.Total = len(workbooks)
	logger.Info("Found files to reformat", "dir", dir, "file_count", len(workbooks), "profile", p.Name)

	emit := func(e Event) {
		if onEvent != nil {
			onEvent(e)
		}
	}

	for i, path := range workbooks {
		emit(Event{Index: i + 1, Total: len(workbooks), File: path, Status: StatusStarted})

		result := reformatSafely(path, p)
		summary.Results = append(summary.Results, result)

		switch result.Status {
		case StatusReformatted:
			summary.Reformatted++
		case StatusAlreadyProcessed:
			summary.AlreadyProcessed++
		default:
			summary.Failed++
			logger.Error("Failed to reformat file", "file", filepath.Base(path), "error", result.Err)
		}

		emit(Event{Index: i + 1, Total: len(workbooks), File: path, Status: result.Status, Err: result.Err})
	}

	logger.Info("Reformat-all operation completed",
		"total", summary.Total,
		"reformatted", summary.Reformatted,
		"already_processed", summary.AlreadyProcessed,
		"failed", summary.Failed)
	return summary, nil
}

func reformatSafely(path string, p *layout.Profile) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Path: path, Status: StatusFailed, Err: fmt.Errorf("panic while reformatting: %v", r)}
		}
	}()

	result, _ = ReformatFile(path, p)
	return result
}
