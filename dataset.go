// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsutil

import "slices"

// Dataset is an in-memory table of ordered, named columns.
type Dataset interface {
	Columns() []string
	NumRows() int
	// Cell returns the value at the 0-based row and column; nil is a missing value.
	Cell(row, col int) any
}

// Indexed is implemented by datasets with row labels.
type Indexed interface {
	IndexName() string
	RowLabel(row int) any
}

var (
	_ Dataset = (*Frame)(nil)
	_ Indexed = (*Frame)(nil)
)

// Frame is a simple row-oriented Dataset.
//
// Without Index, the row labels are the 0-based row numbers.
type Frame struct {
	Names     []string
	Rows      [][]any
	Index     []any
	IndexHead string
}

// NewFrame returns a Frame of the given columns and rows.
func NewFrame(columns []string, rows ...[]any) *Frame {
	return &Frame{Names: columns, Rows: rows}
}

func (f *Frame) Columns() []string { return f.Names }
func (f *Frame) NumRows() int      { return len(f.Rows) }
func (f *Frame) Cell(row, col int) any {
	if row < 0 || row >= len(f.Rows) || col < 0 || col >= len(f.Rows[row]) {
		return nil
	}
	return f.Rows[row][col]
}
func (f *Frame) IndexName() string { return f.IndexHead }
func (f *Frame) RowLabel(row int) any {
	if f.Index != nil && row < len(f.Index) {
		return f.Index[row]
	}
	return row
}

// Append a row.
func (f *Frame) Append(values ...any) { f.Rows = append(f.Rows, values) }

// ColumnPosition returns the 0-based position of the named column
// (the first one, if there are duplicates).
func ColumnPosition(ds Dataset, name string) (int, error) {
	if i := slices.Index(ds.Columns(), name); i >= 0 {
		return i, nil
	}
	return -1, newError(ErrColumnNotFound, name, nil)
}

// ColumnLetters returns the column labels of the named columns,
// as computed by ColumnIndexToLabel.
func ColumnLetters(ds Dataset, names ...string) ([]string, error) {
	letters := make([]string, 0, len(names))
	for _, nm := range names {
		i, err := ColumnPosition(ds, nm)
		if err != nil {
			return letters, err
		}
		s, err := ColumnIndexToLabel(i)
		if err != nil {
			return letters, err
		}
		letters = append(letters, s)
	}
	return letters, nil
}

// Select returns a view of ds restricted to the named columns, in the given order.
// The row labels of an Indexed ds are kept.
func Select(ds Dataset, names ...string) (Dataset, error) {
	if len(names) == 0 {
		return ds, nil
	}
	idx := make([]int, len(names))
	for i, nm := range names {
		var err error
		if idx[i], err = ColumnPosition(ds, nm); err != nil {
			return nil, err
		}
	}
	return selection{Dataset: ds, names: names, idx: idx}, nil
}

type selection struct {
	Dataset
	names []string
	idx   []int
}

func (s selection) Columns() []string     { return s.names }
func (s selection) Cell(row, col int) any { return s.Dataset.Cell(row, s.idx[col]) }
func (s selection) IndexName() string {
	if ix, ok := s.Dataset.(Indexed); ok {
		return ix.IndexName()
	}
	return ""
}
func (s selection) RowLabel(row int) any {
	if ix, ok := s.Dataset.(Indexed); ok {
		return ix.RowLabel(row)
	}
	return row
}
