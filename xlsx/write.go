// Copyright 2020, 2023, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"database/sql/driver"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/UNO-SOFT/xlsutil"
	"github.com/xuri/excelize/v2"
)

// DefaultEngine is the only supported engine.
const DefaultEngine = "excelize"

// headerStyleName is the registry name of the plain header/index style.
const headerStyleName = "_header"

// WriteOptions of SaveDataset.
type WriteOptions struct {
	// Logger is used for progress messages; nil means no logging.
	Logger *slog.Logger

	Sheet string
	// NaRep is written for missing values; empty leaves the cell empty.
	NaRep string
	// Columns is the subset of the dataset's columns to write (all if empty).
	Columns []string
	// Header writes the column names, Index the row labels.
	Header, Index bool
	// Start is the top-left cell of the written block.
	Start         xlsutil.Coordinate
	Mode          xlsutil.Mode
	Engine        string
	IfSheetExists xlsutil.ConflictPolicy
	// FloatFormat is a fmt verb the floats are rounded with ("%.2f").
	FloatFormat string

	// DateFormat enables the date style on the DateColumns (column labels).
	DateFormat  bool
	DateColumns []string

	// HeaderFormat enables the header styles (see Workbook.ApplyHeaderStyles).
	HeaderFormat bool
	HeaderStyles []xlsutil.HeaderStyleAssignment
}

// DefaultWriteOptions returns the defaults: sheet "Feuil1", "NaN" for missing values,
// header and index written from A1, append mode with the overlay policy,
// floats rounded to two decimals.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Sheet:         "Feuil1",
		NaRep:         "NaN",
		Header:        true,
		Index:         true,
		Start:         xlsutil.Coordinate{Column: "A", Row: 1},
		Mode:          xlsutil.ModeAppend,
		Engine:        DefaultEngine,
		IfSheetExists: xlsutil.PolicyOverlay,
		FloatFormat:   "%.2f",
	}
}

// block is the placement of the dataset in the sheet.
type block struct {
	row, col int // 1-based top-left cell
	nRows    int
	columns  []string
}

func (b block) dataCol(opts WriteOptions) int {
	if opts.Index {
		return b.col + 1
	}
	return b.col
}

func (b block) firstDataRow(opts WriteOptions) int {
	if opts.Header {
		return b.row + 1
	}
	return b.row
}

// SaveDataset writes ds into the sheet of the xlsx file at path.
//
// In write mode the file is created (or truncated).
// In append mode the existing file is opened, and the sheet is handled according to
// IfSheetExists; if the file does not exist, SaveDataset writes it as in write mode.
//
// Path gets an ".xlsx" extension if it has neither ".xlsx" nor ".xlsm".
// The file is saved only if every step (writing, date and header styles) succeeded.
func SaveDataset(ds xlsutil.Dataset, path string, opts WriteOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !(opts.Engine == "" || strings.EqualFold(opts.Engine, DefaultEngine)) {
		return xlsutil.NewError(xlsutil.ErrInvalidMode, opts.Engine, nil)
	}
	if opts.Mode != xlsutil.ModeWrite && opts.Mode != xlsutil.ModeAppend {
		return xlsutil.NewError(xlsutil.ErrInvalidMode, string(opts.Mode), nil)
	}
	policy, err := xlsutil.ParseConflictPolicy(string(opts.IfSheetExists))
	if err != nil {
		return err
	}
	opts.IfSheetExists = policy
	if opts.Sheet == "" {
		opts.Sheet = DefaultWriteOptions().Sheet
	}
	if ds, err = xlsutil.Select(ds, opts.Columns...); err != nil {
		return err
	}
	b, err := placeBlock(ds, opts)
	if err != nil {
		return err
	}
	if opts.DateFormat {
		for _, label := range opts.DateColumns {
			if _, err := xlsutil.ColumnLabelToIndex(label, true); err != nil {
				return err
			}
		}
	}
	if opts.HeaderFormat {
		for _, a := range opts.HeaderStyles {
			for _, nm := range a.Columns {
				if _, err := xlsutil.ColumnPosition(ds, nm); err != nil {
					return err
				}
			}
		}
	}

	path = normalizePath(path, logger)
	if opts.Mode == xlsutil.ModeWrite {
		return writeNew(ds, path, b, opts, logger)
	}
	absent, err := tryAppend(ds, path, b, opts, logger)
	if absent {
		logger.Info("file does not exist, writing it", "file", path)
		return writeNew(ds, path, b, opts, logger)
	}
	return err
}

// placeBlock checks that the dataset fits into the sheet at opts.Start.
func placeBlock(ds xlsutil.Dataset, opts WriteOptions) (block, error) {
	start := opts.Start
	if start.Column == "" {
		start = DefaultWriteOptions().Start
	}
	col, row, err := start.Grid(true)
	if err != nil {
		return block{}, err
	}
	b := block{row: row + 1, col: col, nRows: ds.NumRows(), columns: ds.Columns()}
	if b.row < 1 {
		return b, xlsutil.NewError(xlsutil.ErrInvalidRange, start.String(), nil)
	}
	lastRow := b.firstDataRow(opts) + b.nRows - 1
	if lastRow > xlsutil.MaxRowCount {
		return b, fmt.Errorf("%d rows from %s: %w", b.nRows, start, xlsutil.ErrTooManyRows)
	}
	if lastCol := b.dataCol(opts) + len(b.columns) - 1; lastCol > xlsutil.MaxColumns {
		return b, xlsutil.NewError(xlsutil.ErrOutOfRange, strconv.Itoa(lastCol), nil)
	}
	return b, nil
}

func normalizePath(path string, logger *slog.Logger) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
		return path
	}
	logger.Info("file name has no extension, using .xlsx", "file", path)
	return path + ".xlsx"
}

func writeNew(ds xlsutil.Dataset, path string, b block, opts WriteOptions, logger *slog.Logger) error {
	wb := New(path)
	defer wb.Close()
	if first := wb.xl.GetSheetName(0); first != opts.Sheet {
		if err := wb.xl.SetSheetName(first, opts.Sheet); err != nil {
			return err
		}
	}
	if err := wb.writeDataset(opts.Sheet, ds, b, opts); err != nil {
		return err
	}
	if err := wb.Save(); err != nil {
		return err
	}
	logger.Debug("written", "file", path, "sheet", opts.Sheet, "rows", b.nRows)
	return nil
}

// tryAppend writes into the existing file; absent is true iff the file does not exist.
func tryAppend(ds xlsutil.Dataset, path string, b block, opts WriteOptions, logger *slog.Logger) (absent bool, err error) {
	wb, err := Open(path)
	if err != nil {
		return isNotExist(err), err
	}
	defer wb.Close()
	sheet, err := wb.prepareSheet(opts.Sheet, opts.IfSheetExists)
	if err != nil {
		return false, err
	}
	if err = wb.writeDataset(sheet, ds, b, opts); err != nil {
		return false, err
	}
	if err = wb.Save(); err != nil {
		return false, err
	}
	logger.Debug("appended", "file", path, "sheet", sheet, "rows", b.nRows)
	return false, nil
}

// prepareSheet returns the name of the sheet to write into, according to the policy.
func (wb *Workbook) prepareSheet(name string, policy xlsutil.ConflictPolicy) (string, error) {
	if !wb.HasSheet(name) {
		_, err := wb.xl.NewSheet(name)
		return name, err
	}
	switch policy {
	case xlsutil.PolicyError:
		return "", xlsutil.NewError(xlsutil.ErrSheetExists, name, nil)
	case xlsutil.PolicyNew:
		nm := wb.freeSheetName(name)
		_, err := wb.xl.NewSheet(nm)
		return nm, err
	case xlsutil.PolicyReplace:
		if err := wb.recreateSheet(name); err != nil {
			return "", fmt.Errorf("%s: replace: %w", name, err)
		}
	}
	return name, nil
}

// recreateSheet replaces the sheet with an empty one at the same position,
// dropping its cells, merges, column widths and row heights.
func (wb *Workbook) recreateSheet(name string) error {
	old := wb.freeSheetName("~" + name)
	if err := wb.xl.SetSheetName(name, old); err != nil {
		return err
	}
	if _, err := wb.xl.NewSheet(name); err != nil {
		return err
	}
	if err := wb.xl.MoveSheet(name, old); err != nil {
		return err
	}
	return wb.xl.DeleteSheet(old)
}

// freeSheetName returns name followed by the first number that gives an unused sheet name.
func (wb *Workbook) freeSheetName(name string) string {
	for i := 1; ; i++ {
		suffix := strconv.Itoa(i)
		base := name
		if n := excelize.MaxSheetNameLength - len(suffix); utf8.RuneCountInString(base) > n {
			base = string([]rune(base)[:n])
		}
		if nm := base + suffix; !wb.HasSheet(nm) {
			return nm
		}
	}
}

// writeDataset writes the values of the block, then applies the date and header styles.
func (wb *Workbook) writeDataset(sheet string, ds xlsutil.Dataset, b block, opts WriteOptions) error {
	if err := wb.writeValues(sheet, ds, b, opts); err != nil {
		return err
	}
	if opts.DateFormat && len(opts.DateColumns) != 0 && b.nRows != 0 {
		first := b.firstDataRow(opts)
		if err := wb.ApplyDateStyleToColumns(sheet, first, first+b.nRows-1, opts.DateColumns...); err != nil {
			return err
		}
	}
	if opts.HeaderFormat && opts.Header && len(opts.HeaderStyles) != 0 {
		r := xlsutil.CellRange{
			MinRow: b.row, MaxRow: b.row,
			MinCol: b.col, MaxCol: max(b.col, b.dataCol(opts)+len(b.columns)-1),
		}
		if err := wb.ClearStyle(sheet, r); err != nil {
			return err
		}
		if err := wb.applyHeaderStyles(sheet, b.row, b.dataCol(opts)-1, opts.HeaderStyles, b.columns); err != nil {
			return err
		}
	}
	return nil
}

func (wb *Workbook) writeValues(sheet string, ds xlsutil.Dataset, b block, opts WriteOptions) error {
	headerID, err := wb.UpsertNamedStyle(headerStyleName, &excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}
	var labels xlsutil.Indexed
	if opts.Index {
		var ok bool
		if labels, ok = ds.(xlsutil.Indexed); !ok {
			labels = rowNumbers{}
		}
	}
	dataCol := b.dataCol(opts)
	row := b.row
	if opts.Header {
		if opts.Index {
			if nm := labels.IndexName(); nm != "" {
				if err = wb.setValue(sheet, b.col, row, nm, "", ""); err != nil {
					return err
				}
			}
		}
		for j, nm := range b.columns {
			if err = wb.setValue(sheet, dataCol+j, row, nm, "", ""); err != nil {
				return err
			}
		}
		r := xlsutil.CellRange{MinRow: row, MaxRow: row, MinCol: b.col, MaxCol: max(b.col, dataCol+len(b.columns)-1)}
		if err = wb.setRangeStyle(sheet, r, headerID); err != nil {
			return err
		}
		row++
	}
	for i := 0; i < b.nRows; i++ {
		if opts.Index {
			if err = wb.setValue(sheet, b.col, row+i, labels.RowLabel(i), opts.NaRep, ""); err != nil {
				return err
			}
		}
		for j := range b.columns {
			if err = wb.setValue(sheet, dataCol+j, row+i, ds.Cell(i, j), opts.NaRep, opts.FloatFormat); err != nil {
				return err
			}
		}
	}
	if opts.Index && b.nRows != 0 {
		r := xlsutil.CellRange{MinRow: row, MaxRow: row + b.nRows - 1, MinCol: b.col, MaxCol: b.col}
		return wb.setRangeStyle(sheet, r, headerID)
	}
	return nil
}

type rowNumbers struct{}

func (rowNumbers) IndexName() string    { return "" }
func (rowNumbers) RowLabel(row int) any { return row }

// setValue sets the cell's value: missing values (nil, NULL, NaN, zero time) are written as naRep,
// floats are rounded with floatFormat.
func (wb *Workbook) setValue(sheet string, col, row int, v any, naRep, floatFormat string) error {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%d/%d: %w", col, row, err)
	}
	if vr, ok := v.(driver.Valuer); ok {
		if vv, err := vr.Value(); err == nil {
			v = vv
		}
	}
	isNil := v == nil
	switch x := v.(type) {
	case time.Time:
		isNil = x.IsZero()
	case float32:
		v = float64(x)
	case []byte:
		v = string(x)
	case fmt.Stringer:
		v = x.String()
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		isNil = true
	}
	if isNil {
		if naRep == "" {
			return nil
		}
		err = wb.xl.SetCellStr(sheet, axis, naRep)
	} else {
		switch x := v.(type) {
		case string:
			err = wb.xl.SetCellStr(sheet, axis, x)
		case float64:
			err = wb.setFloat(sheet, axis, x, floatFormat)
		default:
			err = wb.xl.SetCellValue(sheet, axis, v)
		}
	}
	if err != nil {
		return fmt.Errorf("%s[%s]: %w", sheet, axis, err)
	}
	return nil
}

func (wb *Workbook) setFloat(sheet, axis string, f float64, floatFormat string) error {
	if math.IsInf(f, 0) {
		if f < 0 {
			return wb.xl.SetCellStr(sheet, axis, "-inf")
		}
		return wb.xl.SetCellStr(sheet, axis, "inf")
	}
	if floatFormat != "" {
		s := fmt.Sprintf(floatFormat, f)
		g, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return wb.xl.SetCellStr(sheet, axis, s)
		}
		f = g
	}
	return wb.xl.SetCellFloat(sheet, axis, f, -1, 64)
}
