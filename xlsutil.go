// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xlsutil contains the format independent parts of the xlsx helpers:
// column addressing, style parameters, range and sheet selectors,
// and the tabular Dataset written by the xlsx package.
package xlsutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxColumns is the number of addressable columns (A .. XFD).
const MaxColumns = 16_384

// MaxRowCount is the number of maximum rows.
const MaxRowCount = 1_048_576

var (
	// ErrOutOfRange is returned for column labels/positions outside A .. XFD.
	ErrOutOfRange = errors.New("column out of range")
	// ErrColumnNotFound is returned when a named dataset column does not exist.
	ErrColumnNotFound = errors.New("column not found")
	// ErrInvalidMode is returned for unknown write modes, conflict policies or engines.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrFileAccess is returned when the target file is missing or cannot be accessed.
	ErrFileAccess = errors.New("file access")
	// ErrInvalidRange is returned for cell ranges whose min bound exceeds the max bound.
	ErrInvalidRange = errors.New("invalid range")
	// ErrSheetExists is returned when appending to an existing sheet under the "error" policy.
	ErrSheetExists = errors.New("sheet already exists")
	// ErrTooManyRows is returned when the dataset does not fit below the start row.
	ErrTooManyRows = errors.New("too many rows")
)

// Error carries the error Kind (one of the Err* variables),
// the offending Input and the underlying error, if any.
type Error struct {
	Kind  error
	Input string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%q: %v", e.Input, e.Kind)
	}
	return fmt.Sprintf("%q: %v: %v", e.Input, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, input string, err error) *Error {
	return &Error{Kind: kind, Input: input, Err: err}
}

// NewError returns an *Error of the given kind.
func NewError(kind error, input string, err error) error { return newError(kind, input, err) }

// FontStyle is the font applied to cells.
type FontStyle struct {
	Name  string  `yaml:"name"`
	Size  float64 `yaml:"size"`
	Bold  bool    `yaml:"bold"`
	Color string  `yaml:"color"` // RRGGBB
}

// Fill is a pattern fill.
type Fill struct {
	StartColor string `yaml:"start_color"`
	EndColor   string `yaml:"end_color"`
	// FillType is the pattern name ("solid", "gray125", ...).
	FillType string `yaml:"fill_type"`
}

// Alignment of the cell content.
type Alignment struct {
	Horizontal string `yaml:"horizontal"`
	Vertical   string `yaml:"vertical"`
	Wrap       bool   `yaml:"wrap"`
}

// HeaderStyle is a named, composite style for header cells.
// Name must be unique per workbook.
type HeaderStyle struct {
	Name      string    `yaml:"name"`
	Font      FontStyle `yaml:"font"`
	Fill      Fill      `yaml:"fill"`
	Alignment Alignment `yaml:"alignment"`
	RowHeight float64   `yaml:"row_height"`
}

// HeaderStyleAssignment binds Style to the named dataset Columns.
type HeaderStyleAssignment struct {
	Columns []string    `yaml:"columns"`
	Style   HeaderStyle `yaml:"style"`
}

// DateFormat is the number format of the date style.
const DateFormat = "dd/mm/yyyy"

// DateStyleName is the registry name of the date style.
const DateStyleName = "date_style"

var (
	// DefaultFont is a normal, black Arial 11.
	DefaultFont = FontStyle{Name: "Arial", Size: 11, Color: "000000"}

	// DefaultHeaderStyle is white bold Arial 9 on blue, centered and wrapped.
	DefaultHeaderStyle = HeaderStyle{
		Name:      "header",
		Font:      FontStyle{Name: "Arial", Size: 9, Bold: true, Color: "FFFFFF"},
		Fill:      Fill{StartColor: "0B64A0", EndColor: "0B64A0", FillType: "solid"},
		Alignment: Alignment{Horizontal: "center", Vertical: "center", Wrap: true},
		RowHeight: 34.7,
	}
)

// CellRange is a rectangle of 1-based, inclusive bounds.
type CellRange struct {
	MinRow, MaxRow, MinCol, MaxCol int
}

// Validate returns ErrInvalidRange if any bound is below 1 or a min bound exceeds its max.
func (r CellRange) Validate() error {
	if r.MinRow < 1 || r.MinCol < 1 || r.MinRow > r.MaxRow || r.MinCol > r.MaxCol {
		return newError(ErrInvalidRange, r.String(), nil)
	}
	if r.MaxRow > MaxRowCount || r.MaxCol > MaxColumns {
		return newError(ErrOutOfRange, r.String(), nil)
	}
	return nil
}

func (r CellRange) String() string {
	return fmt.Sprintf("R%dC%d:R%dC%d", r.MinRow, r.MinCol, r.MaxRow, r.MaxCol)
}

// Bound is an upper bound of a RangeSpec: a literal 1-based number, or Last.
type Bound int

// Last resolves to the current maximum row/column of the sheet.
const Last Bound = -1

// ParseBound parses "last" (case-insensitive) or a positive number.
func ParseBound(s string) (Bound, error) {
	if strings.EqualFold(s, "last") {
		return Last, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, newError(ErrInvalidRange, s, err)
	}
	return Bound(n), nil
}

func (b Bound) String() string {
	if b == Last {
		return "last"
	}
	return strconv.Itoa(int(b))
}

func (b Bound) resolve(extent int) int {
	if b == Last {
		return extent
	}
	return int(b)
}

// RangeSpec is a CellRange whose upper bounds may refer to the sheet's extent.
type RangeSpec struct {
	MinRow int
	MaxRow Bound
	MinCol int
	MaxCol Bound
}

// Resolve the range against a sheet with maxRow rows and maxCol columns.
func (s RangeSpec) Resolve(maxRow, maxCol int) (CellRange, error) {
	r := CellRange{
		MinRow: s.MinRow, MaxRow: s.MaxRow.resolve(maxRow),
		MinCol: s.MinCol, MaxCol: s.MaxCol.resolve(maxCol),
	}
	return r, r.Validate()
}

// SheetSelector selects one, many or all sheets of a workbook.
type SheetSelector struct {
	names []string
	all   bool
}

// OneSheet selects the named sheet.
func OneSheet(name string) SheetSelector { return SheetSelector{names: []string{name}} }

// Sheets selects the named sheets, in order.
func Sheets(names ...string) SheetSelector { return SheetSelector{names: names} }

// AllSheets selects every sheet of the workbook.
func AllSheets() SheetSelector { return SheetSelector{all: true} }

// ParseSheetSelector parses "all" (case-insensitive) or a comma separated list of names.
func ParseSheetSelector(s string) SheetSelector {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return AllSheets()
	}
	var names []string
	for _, nm := range strings.Split(s, ",") {
		if nm = strings.TrimSpace(nm); nm != "" {
			names = append(names, nm)
		}
	}
	return Sheets(names...)
}

// IsAll reports whether every sheet is selected.
func (s SheetSelector) IsAll() bool { return s.all }

// Names returns the explicitly selected sheet names.
func (s SheetSelector) Names() []string { return s.names }

// Select returns the selected names from the workbook's sheet list.
func (s SheetSelector) Select(sheets []string) []string {
	if s.all {
		return sheets
	}
	return s.names
}

// Mode of SaveDataset.
type Mode string

const (
	ModeWrite  = Mode("w")
	ModeAppend = Mode("a")
)

// ParseMode accepts "w", "write", "a" and "append".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "w", "write":
		return ModeWrite, nil
	case "a", "append":
		return ModeAppend, nil
	}
	return "", newError(ErrInvalidMode, s, nil)
}

// ConflictPolicy tells what to do when appending to an existing sheet.
type ConflictPolicy string

const (
	// PolicyError fails with ErrSheetExists.
	PolicyError = ConflictPolicy("error")
	// PolicyNew writes to a new sheet with a derived name.
	PolicyNew = ConflictPolicy("new")
	// PolicyReplace clears the sheet before writing.
	PolicyReplace = ConflictPolicy("replace")
	// PolicyOverlay writes over the existing cells, leaving others intact.
	PolicyOverlay = ConflictPolicy("overlay")
)

// ParseConflictPolicy parses the policy name; the empty string means PolicyOverlay.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(s)); p {
	case "":
		return PolicyOverlay, nil
	case PolicyError, PolicyNew, PolicyReplace, PolicyOverlay:
		return p, nil
	}
	return "", newError(ErrInvalidMode, s, nil)
}
