// Copyright 2020, 2023, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xlsx applies styles to and writes datasets into xlsx workbooks,
// using excelize.
package xlsx

import (
	"errors"
	"io"
	"io/fs"
	"reflect"
	"slices"

	"github.com/UNO-SOFT/xlsutil"
	"github.com/xuri/excelize/v2"
)

// Workbook is an open xlsx file and the registry of its named styles.
//
// A Workbook is not safe for concurrent use.
//
// The whole workbook is kept in memory, so big sheets may impose problems.
type Workbook struct {
	xl     *excelize.File
	path   string
	styles map[string]namedStyle
}

type namedStyle struct {
	def *excelize.Style
	id  int
}

// New returns a new, empty Workbook (with one sheet, "Sheet1"), to be saved as path.
func New(path string) *Workbook {
	return &Workbook{xl: excelize.NewFile(), path: path}
}

// Open the existing xlsx file.
//
// A missing file results in an ErrFileAccess error that wraps fs.ErrNotExist.
func Open(path string) (*Workbook, error) {
	xl, err := excelize.OpenFile(path)
	if err != nil {
		return nil, xlsutil.NewError(xlsutil.ErrFileAccess, path, err)
	}
	return &Workbook{xl: xl, path: path}, nil
}

// File returns the underlying excelize.File.
func (wb *Workbook) File() *excelize.File { return wb.xl }

// Path returns the file name the workbook is saved as.
func (wb *Workbook) Path() string { return wb.path }

// Save the workbook to its path.
func (wb *Workbook) Save() error {
	if err := wb.xl.SaveAs(wb.path); err != nil {
		return xlsutil.NewError(xlsutil.ErrFileAccess, wb.path, err)
	}
	return nil
}

// WriteTo writes the workbook to w.
func (wb *Workbook) WriteTo(w io.Writer) (int64, error) { return wb.xl.WriteTo(w) }

// Close releases the workbook without saving it.
func (wb *Workbook) Close() error {
	if wb == nil || wb.xl == nil {
		return nil
	}
	xl := wb.xl
	wb.xl = nil
	return xl.Close()
}

// UpsertNamedStyle registers the style definition under name and returns its id.
//
// Registering the same definition again returns the same id;
// a changed definition replaces the previous one.
func (wb *Workbook) UpsertNamedStyle(name string, def *excelize.Style) (int, error) {
	if ns, ok := wb.styles[name]; ok {
		if reflect.DeepEqual(ns.def, def) {
			return ns.id, nil
		}
		delete(wb.styles, name)
	}
	id, err := wb.xl.NewStyle(def)
	if err != nil {
		return 0, err
	}
	if wb.styles == nil {
		wb.styles = make(map[string]namedStyle)
	}
	wb.styles[name] = namedStyle{def: def, id: id}
	return id, nil
}

// NamedStyle returns the id of the named style.
func (wb *Workbook) NamedStyle(name string) (int, bool) {
	ns, ok := wb.styles[name]
	return ns.id, ok
}

// NamedStyles returns the sorted names of the registered styles.
func (wb *Workbook) NamedStyles() []string {
	names := make([]string, 0, len(wb.styles))
	for k := range wb.styles {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Sheets returns the sheet names, in workbook order.
func (wb *Workbook) Sheets() []string { return wb.xl.GetSheetList() }

// HasSheet reports whether the named sheet exists.
func (wb *Workbook) HasSheet(name string) bool {
	idx, err := wb.xl.GetSheetIndex(name)
	return err == nil && idx >= 0
}

func (wb *Workbook) checkSheet(name string) error {
	if !wb.HasSheet(name) {
		return excelize.ErrSheetNotExist{SheetName: name}
	}
	return nil
}

// Extent returns the last row and column of the sheet holding a value.
// An empty sheet has an extent of 1x1.
//
// Cells that are only styled (no value) do not count, so a styled but
// empty trailing row or column is outside the extent.
func (wb *Workbook) Extent(sheet string) (maxRow, maxCol int, err error) {
	if err = wb.checkSheet(sheet); err != nil {
		return 0, 0, err
	}
	rows, err := wb.xl.GetRows(sheet)
	if err != nil {
		return 0, 0, err
	}
	maxRow, maxCol = max(1, len(rows)), 1
	for _, row := range rows {
		maxCol = max(maxCol, len(row))
	}
	return maxRow, maxCol, nil
}

// isNotExist reports whether err means a missing file.
func isNotExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }
