// Package trials loads the ordered trial list of an experiment session.
package trials

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column names of the trial definition file.
const (
	ColTrialNumber         = "trial_number"
	ColAngularDisplacement = "angular_displacement"
	ColCursorVisibility    = "cursor_visibility"
	ColTargetNumber        = "target_number"
)

// Spec defines one trial.
type Spec struct {
	TrialNumber int
	// AngularDisplacement rotates cursor feedback, in degrees.
	AngularDisplacement float64
	CursorVisible       bool
	// TargetAngle places the target on the ring, in degrees.
	TargetAngle float64
}

// Load reads trial definitions from a CSV file.
func Load(path string) ([]Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trials %q: %w", path, err)
	}
	defer f.Close()

	specs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// Parse reads trial definitions from CSV with a header row. Columns are found by
// name, extra columns are ignored, and any row that does not convert fails the
// whole parse.
func Parse(r io.Reader) ([]Spec, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("trials: missing header row")
		}
		return nil, fmt.Errorf("trials: read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	cols := [...]string{ColTrialNumber, ColAngularDisplacement, ColCursorVisibility, ColTargetNumber}
	var at [len(cols)]int
	for i, name := range cols {
		j, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("trials: missing column %q", name)
		}
		at[i] = j
	}

	var specs []Spec
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trials: %w", err)
		}
		line, _ := cr.FieldPos(0)

		field := func(i int) string { return strings.TrimSpace(rec[at[i]]) }

		var s Spec
		if s.TrialNumber, err = strconv.Atoi(field(0)); err != nil {
			return nil, fieldErr(line, cols[0], err)
		}
		if s.AngularDisplacement, err = strconv.ParseFloat(field(1), 64); err != nil {
			return nil, fieldErr(line, cols[1], err)
		}
		vis, err := strconv.Atoi(field(2))
		if err != nil {
			return nil, fieldErr(line, cols[2], err)
		}
		s.CursorVisible = vis != 0
		if s.TargetAngle, err = strconv.ParseFloat(field(3), 64); err != nil {
			return nil, fieldErr(line, cols[3], err)
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func fieldErr(line int, col string, err error) error {
	return fmt.Errorf("trials: line %d: %s: %w", line, col, err)
}
