package excel

import (
	"fmt"
	"vibroFmt/internal/logger"

	"github.com/xuri/excelize/v2"
)

// DefaultPruneThreshold is column B.
const DefaultPruneThreshold = 2

// DissolveMerges unmerges every merged region of the sheet and returns how
// many there were. Cell values are kept.
func (e *Editor) DissolveMerges() (int, error) {
	merged, err := e.file.GetMergeCells(e.sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to list merged cells: %w", err)
	}

	for _, mc := range merged {
		if err := e.file.UnmergeCell(e.sheet, mc.GetStartAxis(), mc.GetEndAxis()); err != nil {
			return 0, fmt.Errorf("failed to unmerge %s:%s: %w", mc.GetStartAxis(), mc.GetEndAxis(), err)
		}
	}
	return len(merged), nil
}

// PruneColumns drops every odd-numbered column at or after threshold. The
// source export alternates label and data columns; only the data survives.
// Merged regions are dissolved first because deleting a column inside a
// merge corrupts its bounds.
func (e *Editor) PruneColumns(threshold int) (int, error) {
	if threshold < 1 {
		threshold = DefaultPruneThreshold
	}

	dissolved, err := e.DissolveMerges()
	if err != nil {
		return 0, err
	}

	maxCol, err := e.MaxColumn()
	if err != nil {
		return 0, err
	}

	if err := e.requireNoMerges(); err != nil {
		return 0, err
	}

	// Descending, so a deletion never shifts a column still to be visited.
	removed := 0
	for col := maxCol; col >= threshold; col-- {
		if col%2 == 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return removed, err
		}
		if err := e.file.RemoveCol(e.sheet, name); err != nil {
			return removed, fmt.Errorf("failed to remove column %s: %w", name, err)
		}
		removed++
	}

	logger.Debug("Pruned columns",
		"sheet", e.sheet,
		"max_column", maxCol,
		"threshold", threshold,
		"removed", removed,
		"merges_dissolved", dissolved)
	return removed, nil
}

func (e *Editor) requireNoMerges() error {
	merged, err := e.file.GetMergeCells(e.sheet)
	if err != nil {
		return fmt.Errorf("failed to list merged cells: %w", err)
	}
	if len(merged) > 0 {
		return fmt.Errorf("%w: %d left", ErrMergedRegions, len(merged))
	}
	return nil
}

// PruneFile prunes the active sheet of inputPath and writes the result to
// outputPath, which may be the same file.
func PruneFile(inputPath, outputPath string, threshold int) (int, error) {
	editor, err := OpenFile(inputPath)
	if err != nil {
		return 0, err
	}
	defer editor.Close()

	removed, err := editor.PruneColumns(threshold)
	if err != nil {
		return 0, err
	}
	if err := editor.SaveAs(outputPath); err != nil {
		return 0, err
	}

	logger.Info("Pruned workbook", "input", inputPath, "output", outputPath, "removed_columns", removed)
	return removed, nil
}
