package excel

import (
	"errors"
	"fmt"
)

// ErrMergedRegions is returned when a column deletion is attempted while
// merged regions are still present on the sheet.
var ErrMergedRegions = errors.New("sheet still has merged regions")

// InvalidAddressError reports an address or range that is not of the form
// A1 or A1:B2.
type InvalidAddressError struct {
	Address string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid cell address %q", e.Address)
}

// MergeConflictError reports a merge request overlapping an existing merged region.
type MergeConflictError struct {
	Range    string
	Existing string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("cannot merge %s: overlaps existing merged region %s", e.Range, e.Existing)
}

// FileAccessError wraps a failure to open or save a workbook.
type FileAccessError struct {
	Path string
	Op   string // "open", "save"
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}
