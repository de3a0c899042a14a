package excel

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"vibroFmt/internal/logger"
)

// FileState is the outcome of checking one workbook's sentinel cell.
type FileState string

const (
	StateUnprocessed FileState = "unprocessed"
	StateProcessed   FileState = "processed"
	StateUnreadable  FileState = "unreadable"
)

// FileStatus describes one workbook found by ScanDirectory.
type FileStatus struct {
	Path  string
	State FileState
	Err   error
}

// ListWorkbooks returns the .xlsx and .xlsm files directly inside dir in
// lexical order. Office lock files (~$name.xlsx) are skipped.
func ListWorkbooks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var workbooks []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".xlsx", ".xlsm":
			workbooks = append(workbooks, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(workbooks)

	return workbooks, nil
}

// ScanDirectory checks the sentinel cell of every workbook in dir without
// modifying anything.
func ScanDirectory(dir string, sentinel Cell) ([]FileStatus, error) {
	workbooks, err := ListWorkbooks(dir)
	if err != nil {
		return nil, err
	}

	statuses := make([]FileStatus, 0, len(workbooks))
	for _, path := range workbooks {
		status := FileStatus{Path: path}

		processed, err := checkSentinel(path, sentinel)
		switch {
		case err != nil:
			logger.Warn("Failed to scan workbook", "file", filepath.Base(path), "error", err)
			status.State, status.Err = StateUnreadable, err
		case processed:
			status.State = StateProcessed
		default:
			status.State = StateUnprocessed
		}
		statuses = append(statuses, status)
	}

	logger.Info("Scanned directory", "dir", dir, "workbooks", len(statuses))
	return statuses, nil
}

func checkSentinel(path string, sentinel Cell) (bool, error) {
	editor, err := OpenFile(path)
	if err != nil {
		return false, err
	}
	defer editor.Close()

	return editor.IsProcessed(sentinel)
}

// WriteStatusReport writes one "state<TAB>file" line per workbook.
func WriteStatusReport(filename string, statuses []FileStatus) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, status := range statuses {
		line := fmt.Sprintf("%s\t%s", status.State, filepath.Base(status.Path))
		if status.Err != nil {
			line += "\t" + status.Err.Error()
		}
		if _, err := writer.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write status: %w", err)
		}
	}

	return writer.Flush()
}
