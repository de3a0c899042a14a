package layout

import (
	"fmt"
	"sort"
)

// Banner is written over the merged first row.
const Banner = "Значения виброскоростей, мкм/с в 1/3 октавной полосе со среднегеометрической частотой, Гц"

// DefaultProfile is the layout found in the retained tool. Whether "u" is
// the newer one has not been settled.
const DefaultProfile = "v"

// Each axis block of the export is a label row plus seven rows of ten
// data columns, split in three: B..K stays, the next seven rows go to the
// right of it, and the seven after that further right again.
func axisProfile(name, desc, third, last string, copyStyle, normalize bool) *Profile {
	steps := []Step{
		{Op: OpPrune, Column: 2},

		{Op: OpMove, Range: "B11:K17", Target: "L4"},
		{Op: OpMove, Range: "B18:K24", Target: third + "4"},
		{Op: OpClearRow, Row: 11},

		{Op: OpMove, Range: "A25:K32", Target: "A11"},
		{Op: OpMove, Range: "B33:K39", Target: "L12"},
		{Op: OpMove, Range: "B40:K46", Target: third + "12"},
		{Op: OpClearRow, Row: 19},

		{Op: OpMove, Range: "A47:K54", Target: "A19"},
		{Op: OpMove, Range: "B55:K61", Target: "L20"},
		{Op: OpMove, Range: "B62:K68", Target: third + "20"},

		{Op: OpClearRange, Range: "A27:AA100"},
		{Op: OpDeleteRow, Row: 2},

		{Op: OpMerge, Range: "A1:" + last + "1", Label: Banner},
		{Op: OpMerge, Range: "A2:" + last + "2", LabelFrom: "x"},
		{Op: OpMerge, Range: "A10:" + last + "10", LabelFrom: "y"},
		{Op: OpMerge, Range: "A18:" + last + "18", LabelFrom: "z"},
	}

	if normalize {
		data := &FontSpec{Family: "Times New Roman", Size: 9}
		for _, r := range []string{"A4:" + last + "9", "A12:" + last + "17", "A20:" + last + "25"} {
			steps = append(steps, Step{Op: OpNumberFormat, Range: r, NumFmt: 2, Font: data})
		}
		steps = append(steps, Step{Op: OpFont, Range: "A1:" + last + "25", Font: &FontSpec{Family: "Calibri", Size: 11}})
	}

	return &Profile{
		Name:         name,
		Description:  desc,
		SentinelCell: "AD4",
		CopyStyle:    copyStyle,
		Snapshots: map[string]string{
			"x": "B3",
			"y": "B25",
			"z": "B47",
		},
		Steps: steps,
	}
}

var builtins = map[string]func() *Profile{
	"v": func() *Profile {
		return axisProfile("v",
			"blocks to L and V, headers to AE, values only, 0.00 and font normalized",
			"V", "AE", false, true)
	},
	"u": func() *Profile {
		return axisProfile("u",
			"blocks to L and U, headers to AD, styles moved with values, no normalization",
			"U", "AD", true, false)
	},
}

// Lookup returns a fresh copy of a built-in profile.
func Lookup(name string) (*Profile, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownProfile, name, Names())
	}
	return build(), nil
}

// Names lists the built-in profiles in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
