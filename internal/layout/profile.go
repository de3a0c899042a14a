package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"vibroFmt/internal/excel"
)

// ErrUnknownProfile is returned by Lookup for a name with no built-in profile.
var ErrUnknownProfile = errors.New("unknown profile")

// Op names one structural edit.
type Op string

const (
	OpPrune        Op = "prune"
	OpMove         Op = "move"
	OpClearRow     Op = "clear_row"
	OpClearRange   Op = "clear_range"
	OpDeleteRow    Op = "delete_row"
	OpMerge        Op = "merge"
	OpNumberFormat Op = "number_format"
	OpFont         Op = "font"
)

// FontSpec is the font set by the number_format and font steps.
type FontSpec struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
}

// Step is one edit of a profile. Which fields matter depends on Op:
//
//	prune          Column (threshold)
//	move           Range (source), Target (destination top-left)
//	clear_row      Row
//	clear_range    Range
//	delete_row     Row
//	merge          Range, Label or LabelFrom (snapshot key)
//	number_format  Range, NumFmt, Font
//	font           Range, Font
type Step struct {
	Op        Op        `json:"op"`
	Range     string    `json:"range,omitempty"`
	Target    string    `json:"target,omitempty"`
	Row       int       `json:"row,omitempty"`
	Column    int       `json:"column,omitempty"`
	Label     string    `json:"label,omitempty"`
	LabelFrom string    `json:"label_from,omitempty"`
	NumFmt    int       `json:"num_fmt,omitempty"`
	Font      *FontSpec `json:"font,omitempty"`
}

// Profile is the full per-file transform as data.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// SentinelCell holds a value once a file has been transformed.
	// SentinelMark, when set, is written there if the transform left it
	// empty; otherwise such a file is failed and left unsaved.
	SentinelCell string `json:"sentinel_cell"`
	SentinelMark string `json:"sentinel_mark,omitempty"`

	// CopyStyle makes moves carry cell styles along with values.
	CopyStyle bool `json:"copy_style"`

	// Snapshots are read before any step runs: key -> cell.
	Snapshots map[string]string `json:"snapshots"`
	Steps     []Step            `json:"steps"`
}

// Validate checks every address and snapshot reference so a bad profile
// fails before any workbook is touched.
func (p *Profile) Validate() error {
	if _, err := excel.ParseCell(p.SentinelCell); err != nil {
		return fmt.Errorf("profile %s: sentinel: %w", p.Name, err)
	}
	for key, cell := range p.Snapshots {
		if _, err := excel.ParseCell(cell); err != nil {
			return fmt.Errorf("profile %s: snapshot %s: %w", p.Name, key, err)
		}
	}

	for i, step := range p.Steps {
		if err := p.validateStep(step); err != nil {
			return fmt.Errorf("profile %s: step %d (%s): %w", p.Name, i+1, step.Op, err)
		}
	}
	return nil
}

func (p *Profile) validateStep(step Step) error {
	switch step.Op {
	case OpPrune:
		if step.Column < 0 {
			return fmt.Errorf("negative threshold column %d", step.Column)
		}
		return nil
	case OpMove:
		if _, err := excel.ParseRange(step.Range); err != nil {
			return err
		}
		_, err := excel.ParseCell(step.Target)
		return err
	case OpClearRow, OpDeleteRow:
		if step.Row < 1 {
			return fmt.Errorf("row must be >= 1, got %d", step.Row)
		}
		return nil
	case OpClearRange, OpNumberFormat:
		_, err := excel.ParseRange(step.Range)
		return err
	case OpFont:
		if step.Font == nil {
			return fmt.Errorf("font step without font")
		}
		_, err := excel.ParseRange(step.Range)
		return err
	case OpMerge:
		if step.LabelFrom != "" {
			if _, ok := p.Snapshots[step.LabelFrom]; !ok {
				return fmt.Errorf("label_from %q is not a snapshot", step.LabelFrom)
			}
		}
		_, err := excel.ParseRange(step.Range)
		return err
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

// SaveToFile saves the profile to a JSON file
func (p *Profile) SaveToFile(filepath string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadFromFile loads and validates a profile from a JSON file
func LoadFromFile(filepath string) (*Profile, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", filepath, err)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetPruneThreshold rewrites the threshold column of every prune step.
func (p *Profile) SetPruneThreshold(column int) {
	if column < 1 {
		return
	}
	for i := range p.Steps {
		if p.Steps[i].Op == OpPrune {
			p.Steps[i].Column = column
		}
	}
}

// Resolve picks the profile for a run: a built-in named by flagName, then
// the JSON profile at profileFile, then the built-in configName. The prune
// threshold is applied to built-ins only; a profile file keeps its own.
func Resolve(flagName, profileFile, configName string, threshold int) (*Profile, error) {
	if flagName == "" && profileFile != "" {
		return LoadFromFile(profileFile)
	}

	name := flagName
	if name == "" {
		name = configName
	}
	profile, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	profile.SetPruneThreshold(threshold)
	return profile, nil
}
