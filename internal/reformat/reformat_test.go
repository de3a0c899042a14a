package reformat

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"vibroFmt/internal/excel"
	"vibroFmt/internal/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sheet = "Sheet1"

// origValue is what the export holds at (row, col) of the pruned layout.
func origValue(row, col int) string {
	return fmt.Sprintf("r%dc%d", row, col)
}

// rawColumn maps a column of the pruned layout to the export, where every
// data column after B is preceded by a label column.
func rawColumn(col int) int {
	if col == 1 {
		return 1
	}
	return 2 * (col - 1)
}

// writeExport builds a synthetic export: three axis blocks (label rows 3,
// 25 and 47) of 11 columns after pruning, interleaved with label columns,
// with a merged region in the header.
func writeExport(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	set := func(col, row int, value interface{}) {
		name, err := excelize.CoordinatesToCellName(col, row)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, name, value))
	}

	set(1, 1, "title")
	set(1, 2, "header")
	for row := 3; row <= 68; row++ {
		for col := 1; col <= 11; col++ {
			set(rawColumn(col), row, origValue(row, col))
		}
		for raw := 3; raw <= 21; raw += 2 {
			set(raw, row, "label")
		}
	}
	set(2, 3, "X")
	set(2, 25, "Y")
	set(2, 47, "Z")
	require.NoError(t, f.MergeCell(sheet, "C1", "E1"))

	require.NoError(t, f.SaveAs(path))
}

func valueAt(t *testing.T, f *excelize.File, col, row int) string {
	t.Helper()
	name, err := excelize.CoordinatesToCellName(col, row)
	require.NoError(t, err)
	value, err := f.GetCellValue(sheet, name)
	require.NoError(t, err)
	return value
}

func profile(t *testing.T, name string) *layout.Profile {
	t.Helper()
	p, err := layout.Lookup(name)
	require.NoError(t, err)
	return p
}

func TestReformatFileEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	writeExport(t, path)

	result, err := ReformatFile(path, profile(t, "v"))
	require.NoError(t, err)
	assert.Equal(t, StatusReformatted, result.Status)
	assert.Equal(t, map[string]string{"x": "X", "y": "Y", "z": "Z"}, result.Labels)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Headers
	assert.Equal(t, layout.Banner, valueAt(t, f, 1, 1))
	assert.Equal(t, "X", valueAt(t, f, 1, 2))
	assert.Equal(t, "Y", valueAt(t, f, 1, 10))
	assert.Equal(t, "Z", valueAt(t, f, 1, 18))

	merged, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	var refs []string
	for _, mc := range merged {
		refs = append(refs, mc.GetStartAxis()+":"+mc.GetEndAxis())
	}
	assert.ElementsMatch(t, []string{"A1:AE1", "A2:AE2", "A10:AE10", "A18:AE18"}, refs)

	// Each axis: seven data rows, A..K in place, then the two relocated
	// sub-blocks at L..U and V..AE. offsets are final row -> export row.
	axes := []struct {
		name             string
		first            int
		left, mid, right int
	}{
		{"X", 3, 1, 8, 15},
		{"Y", 11, 15, 22, 29},
		{"Z", 19, 29, 36, 43},
	}
	for _, axis := range axes {
		for row := axis.first; row < axis.first+7; row++ {
			for col := 1; col <= 11; col++ {
				assert.Equal(t, origValue(row+axis.left, col), valueAt(t, f, col, row), "%s %d:%d", axis.name, col, row)
			}
			for col := 12; col <= 21; col++ {
				assert.Equal(t, origValue(row+axis.mid, col-10), valueAt(t, f, col, row), "%s %d:%d", axis.name, col, row)
			}
			for col := 22; col <= 31; col++ {
				assert.Equal(t, origValue(row+axis.right, col-20), valueAt(t, f, col, row), "%s %d:%d", axis.name, col, row)
			}
		}
	}

	// Nothing left below the compact layout.
	for row := 26; row <= 70; row++ {
		for col := 1; col <= 31; col++ {
			assert.Empty(t, valueAt(t, f, col, row), "residual at %d:%d", col, row)
		}
	}
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 25)

	sentinel, err := f.GetCellValue(sheet, "AD4")
	require.NoError(t, err)
	assert.Equal(t, origValue(19, 10), sentinel)

	// Data cells end up with 0.00 and the final Calibri font.
	styleID, err := f.GetCellStyle(sheet, "C5")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.Equal(t, 2, style.NumFmt)
	require.NotNil(t, style.Font)
	assert.Equal(t, "Calibri", style.Font.Family)
}

func TestReformatFileIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	writeExport(t, path)
	p := profile(t, "v")

	first, err := ReformatFile(path, p)
	require.NoError(t, err)
	require.Equal(t, StatusReformatted, first.Status)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	second, err := ReformatFile(path, p)
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyProcessed, second.Status)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after), "second run must not rewrite the file")
}

// blankExportCell empties the export cell that ends up in the sentinel.
func blankExportCell(t *testing.T, path string) {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	name, err := excelize.CoordinatesToCellName(rawColumn(10), 19)
	require.NoError(t, err)
	require.NoError(t, f.SetCellDefault(sheet, name, ""))
	require.NoError(t, f.Save())
}

func TestReformatFileEmptySentinelNotSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	writeExport(t, path)
	blankExportCell(t, path)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	for run := 0; run < 2; run++ {
		result, err := ReformatFile(path, profile(t, "v"))
		assert.True(t, errors.Is(err, ErrSentinelEmpty), "run %d: %v", run, err)
		assert.Equal(t, StatusFailed, result.Status)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(before, after), "run %d must not rewrite the file", run)
	}
}

func TestReformatFileWritesSentinelMark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	writeExport(t, path)
	blankExportCell(t, path)
	p := profile(t, "v")
	p.SentinelMark = "done"

	first, err := ReformatFile(path, p)
	require.NoError(t, err)
	require.Equal(t, StatusReformatted, first.Status)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	second, err := ReformatFile(path, p)
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyProcessed, second.Status)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "done", valueAt(t, f, 30, 4))
	assert.Equal(t, "X", valueAt(t, f, 1, 2))
}

func TestReformatFileVariantU(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	writeExport(t, path)

	result, err := ReformatFile(path, profile(t, "u"))
	require.NoError(t, err)
	require.Equal(t, StatusReformatted, result.Status)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// The second sub-block is anchored on U, the last column of the first.
	assert.Equal(t, origValue(11, 2), valueAt(t, f, 12, 3))
	assert.Equal(t, origValue(11, 10), valueAt(t, f, 20, 3))
	assert.Equal(t, origValue(18, 2), valueAt(t, f, 21, 3))
	assert.Equal(t, origValue(18, 11), valueAt(t, f, 30, 3))

	merged, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	var refs []string
	for _, mc := range merged {
		refs = append(refs, mc.GetStartAxis()+":"+mc.GetEndAxis())
	}
	assert.ElementsMatch(t, []string{"A1:AD1", "A2:AD2", "A10:AD10", "A18:AD18"}, refs)

	// No normalization in this variant.
	styleID, err := f.GetCellStyle(sheet, "C5")
	require.NoError(t, err)
	assert.Equal(t, 0, styleID)
}

func TestReformatFileFailureLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	writeExport(t, path)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	p := &layout.Profile{
		Name:         "conflict",
		SentinelCell: "AD4",
		Steps: []layout.Step{
			{Op: layout.OpClearRow, Row: 4},
			{Op: layout.OpMerge, Range: "A1:C1", Label: "one"},
			{Op: layout.OpMerge, Range: "B1:D1", Label: "two"},
		},
	}

	result, err := ReformatFile(path, p)
	var conflict *excel.MergeConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)
	assert.Equal(t, StatusFailed, result.Status)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after))
}

func TestApplyRejectsInvalidProfile(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue(sheet, "A1", "keep"))
	e := excel.NewEditor(f)

	p := &layout.Profile{
		Name:         "broken",
		SentinelCell: "AD4",
		Steps: []layout.Step{
			{Op: layout.OpClearRow, Row: 1},
			{Op: layout.OpMove, Range: "B11:K", Target: "L4"},
		},
	}

	_, err := Apply(e, p)
	var addrErr *excel.InvalidAddressError
	require.True(t, errors.As(err, &addrErr))

	value, err := e.GetCellValue("A1")
	require.NoError(t, err)
	assert.Equal(t, "keep", value)
}

func TestReformatFileMissing(t *testing.T) {
	result, err := ReformatFile(filepath.Join(t.TempDir(), "missing.xlsx"), profile(t, "v"))

	var accessErr *excel.FileAccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Equal(t, StatusFailed, result.Status)
}

func TestReformatDirectory(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, filepath.Join(dir, "a_export.xlsx"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_broken.xlsx"), []byte("not a workbook"), 0644))

	done := excelize.NewFile()
	require.NoError(t, done.SetCellValue(sheet, "AD4", 1.5))
	require.NoError(t, done.SaveAs(filepath.Join(dir, "c_done.xlsx")))
	require.NoError(t, done.Close())

	var events []Event
	summary, err := ReformatDirectory(dir, profile(t, "v"), func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Reformatted)
	assert.Equal(t, 1, summary.AlreadyProcessed)
	assert.Equal(t, 1, summary.Failed)

	require.Len(t, events, 6)
	assert.Equal(t, Event{Index: 1, Total: 3, File: filepath.Join(dir, "a_export.xlsx"), Status: StatusStarted}, events[0])
	assert.Equal(t, StatusReformatted, events[1].Status)
	assert.Equal(t, StatusFailed, events[3].Status)
	assert.Equal(t, StatusAlreadyProcessed, events[5].Status)
	assert.Equal(t, 3, events[5].Index)

	var accessErr *excel.FileAccessError
	assert.True(t, errors.As(events[3].Err, &accessErr))
}

func TestReformatDirectoryMissing(t *testing.T) {
	_, err := ReformatDirectory(filepath.Join(t.TempDir(), "missing"), profile(t, "v"), nil)
	assert.Error(t, err)
}

func TestReformatSafelyRecoversPanics(t *testing.T) {
	result := reformatSafely("unused.xlsx", nil)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Error(t, result.Err)
}
