package excel

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// cellAddrRegex matches cell addresses like A1, b23, AA100
var cellAddrRegex = regexp.MustCompile(`^([A-Za-z]+)([1-9][0-9]*)$`)

// Cell is a 1-based (column, row) pair.
type Cell struct {
	Col int
	Row int
}

// String formats the cell as an A1 reference.
func (c Cell) String() string {
	name, err := excelize.CoordinatesToCellName(c.Col, c.Row)
	if err != nil {
		return "?" + strconv.Itoa(c.Col) + ":" + strconv.Itoa(c.Row)
	}
	return name
}

// Range is a rectangle given by its top-left and bottom-right cells, inclusive.
type Range struct {
	Start Cell
	End   Cell
}

func (r Range) String() string {
	return r.Start.String() + ":" + r.End.String()
}

// Rows returns the number of rows covered by the range.
func (r Range) Rows() int {
	return r.End.Row - r.Start.Row + 1
}

// Cols returns the number of columns covered by the range.
func (r Range) Cols() int {
	return r.End.Col - r.Start.Col + 1
}

// Contains reports whether c lies inside the range.
func (r Range) Contains(c Cell) bool {
	return c.Col >= r.Start.Col && c.Col <= r.End.Col &&
		c.Row >= r.Start.Row && c.Row <= r.End.Row
}

// Overlaps reports whether the two rectangles share at least one cell.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Col <= o.End.Col && o.Start.Col <= r.End.Col &&
		r.Start.Row <= o.End.Row && o.Start.Row <= r.End.Row
}

// ParseCell parses an address like "B11" into column 2, row 11.
// Column letters are case-insensitive.
func ParseCell(addr string) (Cell, error) {
	matches := cellAddrRegex.FindStringSubmatch(strings.TrimSpace(addr))
	if matches == nil {
		return Cell{}, &InvalidAddressError{Address: addr}
	}

	col, err := excelize.ColumnNameToNumber(matches[1])
	if err != nil {
		return Cell{}, &InvalidAddressError{Address: addr}
	}
	row, err := strconv.Atoi(matches[2])
	if err != nil || row > excelize.TotalRows {
		return Cell{}, &InvalidAddressError{Address: addr}
	}

	return Cell{Col: col, Row: row}, nil
}

// ParseRange parses "B11:K18" into its corner cells. A single address is
// accepted as a one-cell range. Corner ordering is not checked.
func ParseRange(ref string) (Range, error) {
	start, end, found := strings.Cut(ref, ":")
	if !found {
		c, err := ParseCell(ref)
		if err != nil {
			return Range{}, err
		}
		return Range{Start: c, End: c}, nil
	}

	s, err := ParseCell(start)
	if err != nil {
		return Range{}, &InvalidAddressError{Address: ref}
	}
	e, err := ParseCell(end)
	if err != nil {
		return Range{}, &InvalidAddressError{Address: ref}
	}
	return Range{Start: s, End: e}, nil
}

// MustParseRange is ParseRange for literals known to be valid.
func MustParseRange(ref string) Range {
	r, err := ParseRange(ref)
	if err != nil {
		panic(err)
	}
	return r
}

// normalized returns the range with Start at the top-left corner.
func (r Range) normalized() Range {
	if r.Start.Col > r.End.Col {
		r.Start.Col, r.End.Col = r.End.Col, r.Start.Col
	}
	if r.Start.Row > r.End.Row {
		r.Start.Row, r.End.Row = r.End.Row, r.Start.Row
	}
	return r
}
