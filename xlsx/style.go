// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/UNO-SOFT/xlsutil"
	"github.com/xuri/excelize/v2"
)

// fillPatterns are the pattern names, in excelize's pattern index order.
var fillPatterns = []string{
	"none", "solid", "mediumGray", "darkGray", "lightGray",
	"darkHorizontal", "darkVertical", "darkDown", "darkUp", "darkGrid", "darkTrellis",
	"lightHorizontal", "lightVertical", "lightDown", "lightUp", "lightGrid", "lightTrellis",
	"gray125", "gray0625",
}

func excelFont(font xlsutil.FontStyle) *excelize.Font {
	return &excelize.Font{
		Family: font.Name,
		Size:   font.Size,
		Bold:   font.Bold,
		Color:  strings.TrimPrefix(font.Color, "#"),
	}
}

func excelStyle(hs xlsutil.HeaderStyle) (*excelize.Style, error) {
	st := excelize.Style{
		Font: excelFont(hs.Font),
		Alignment: &excelize.Alignment{
			Horizontal: hs.Alignment.Horizontal,
			Vertical:   hs.Alignment.Vertical,
			WrapText:   hs.Alignment.Wrap,
		},
	}
	if hs.Fill.FillType != "" && hs.Fill.FillType != "none" {
		pattern := slices.IndexFunc(fillPatterns, func(s string) bool {
			return strings.EqualFold(s, hs.Fill.FillType)
		})
		if pattern < 0 {
			return nil, fmt.Errorf("%s: unknown fill type %q", hs.Name, hs.Fill.FillType)
		}
		color := hs.Fill.StartColor
		if color == "" {
			color = hs.Fill.EndColor
		}
		st.Fill = excelize.Fill{Type: "pattern", Pattern: pattern, Color: []string{strings.TrimPrefix(color, "#")}}
	}
	return &st, nil
}

// ApplyFont sets the font of every cell in the range.
// Other style attributes of the cells (number format, fill...) are kept.
func (wb *Workbook) ApplyFont(sheet string, r xlsutil.CellRange, font xlsutil.FontStyle) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := wb.checkSheet(sheet); err != nil {
		return err
	}
	fnt := excelFont(font)
	// original style id -> id with the font
	withFont := make(map[int]int)
	for row := r.MinRow; row <= r.MaxRow; row++ {
		for col := r.MinCol; col <= r.MaxCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			id, err := wb.xl.GetCellStyle(sheet, cell)
			if err != nil {
				return fmt.Errorf("%s[%s]: %w", sheet, cell, err)
			}
			nid, ok := withFont[id]
			if !ok {
				st, err := wb.xl.GetStyle(id)
				if err != nil {
					return fmt.Errorf("style %d: %w", id, err)
				}
				f := *fnt
				st.Font = &f
				if nid, err = wb.xl.NewStyle(st); err != nil {
					return err
				}
				withFont[id] = nid
			}
			if err = wb.xl.SetCellStyle(sheet, cell, cell, nid); err != nil {
				return fmt.Errorf("%s[%s]: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// ApplyFontAcrossSheets applies the font to the range of each selected sheet.
// Last bounds are resolved against each sheet's own extent.
func (wb *Workbook) ApplyFontAcrossSheets(sel xlsutil.SheetSelector, spec xlsutil.RangeSpec, font xlsutil.FontStyle) error {
	for _, sheet := range sel.Select(wb.Sheets()) {
		maxRow, maxCol, err := wb.Extent(sheet)
		if err != nil {
			return err
		}
		r, err := spec.Resolve(maxRow, maxCol)
		if err != nil {
			return fmt.Errorf("%s: %w", sheet, err)
		}
		if err = wb.ApplyFont(sheet, r, font); err != nil {
			return err
		}
	}
	return nil
}

// ApplyFontToFile opens the existing file, applies the font to the selected
// sheets (see ApplyFontAcrossSheets) and saves it.
func ApplyFontToFile(path string, sel xlsutil.SheetSelector, spec xlsutil.RangeSpec, font xlsutil.FontStyle) error {
	wb, err := Open(path)
	if err != nil {
		return err
	}
	defer wb.Close()
	if err = wb.ApplyFontAcrossSheets(sel, spec, font); err != nil {
		return err
	}
	return wb.Save()
}

func (wb *Workbook) dateStyle() (int, error) {
	format := xlsutil.DateFormat
	return wb.UpsertNamedStyle(xlsutil.DateStyleName, &excelize.Style{CustomNumFmt: &format})
}

// ApplyDateStyle sets the date style (dd/mm/yyyy) on the rows [minRow, maxRow]
// of the labeled column.
func (wb *Workbook) ApplyDateStyle(sheet, label string, minRow, maxRow int) error {
	col, err := xlsutil.ColumnLabelToIndex(label, true)
	if err != nil {
		return err
	}
	r := xlsutil.CellRange{MinRow: minRow, MaxRow: maxRow, MinCol: col, MaxCol: col}
	if err = r.Validate(); err != nil {
		return err
	}
	if err = wb.checkSheet(sheet); err != nil {
		return err
	}
	id, err := wb.dateStyle()
	if err != nil {
		return err
	}
	return wb.setRangeStyle(sheet, r, id)
}

// ApplyDateStyleToColumns calls ApplyDateStyle for each label.
func (wb *Workbook) ApplyDateStyleToColumns(sheet string, minRow, maxRow int, labels ...string) error {
	for _, label := range labels {
		if err := wb.ApplyDateStyle(sheet, label, minRow, maxRow); err != nil {
			return err
		}
	}
	return nil
}

// ClearStyle resets the cells of the range to the default style.
func (wb *Workbook) ClearStyle(sheet string, r xlsutil.CellRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := wb.checkSheet(sheet); err != nil {
		return err
	}
	return wb.setRangeStyle(sheet, r, 0)
}

func (wb *Workbook) setRangeStyle(sheet string, r xlsutil.CellRange, id int) error {
	tl, err := excelize.CoordinatesToCellName(r.MinCol, r.MinRow)
	if err != nil {
		return err
	}
	br, err := excelize.CoordinatesToCellName(r.MaxCol, r.MaxRow)
	if err != nil {
		return err
	}
	return wb.xl.SetCellStyle(sheet, tl, br, id)
}

// ApplyHeaderStyles styles the first-row cells of the columns named in each assignment.
//
// The columns are looked up in the dataset; the header row gets the height of the
// style (the last assignment wins).
func (wb *Workbook) ApplyHeaderStyles(sheet string, assignments []xlsutil.HeaderStyleAssignment, ds xlsutil.Dataset) error {
	return wb.applyHeaderStyles(sheet, 1, 0, assignments, ds.Columns())
}

// applyHeaderStyles styles the cells of the header row, where the first column is at colOffset+1.
func (wb *Workbook) applyHeaderStyles(sheet string, row, colOffset int, assignments []xlsutil.HeaderStyleAssignment, columns []string) error {
	if err := wb.checkSheet(sheet); err != nil {
		return err
	}
	for _, a := range assignments {
		positions := make([]int, len(a.Columns))
		for i, nm := range a.Columns {
			if positions[i] = slices.Index(columns, nm); positions[i] < 0 {
				return xlsutil.NewError(xlsutil.ErrColumnNotFound, nm, nil)
			}
		}
		def, err := excelStyle(a.Style)
		if err != nil {
			return err
		}
		id, err := wb.UpsertNamedStyle(a.Style.Name, def)
		if err != nil {
			return err
		}
		for _, p := range positions {
			col := colOffset + p + 1
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			if a.Style.RowHeight > 0 {
				if err = wb.xl.SetRowHeight(sheet, row, a.Style.RowHeight); err != nil {
					return err
				}
			}
			if err = wb.xl.SetCellStyle(sheet, cell, cell, id); err != nil {
				return fmt.Errorf("%s[%s]: %w", sheet, cell, err)
			}
			if err = wb.fitColumn(sheet, col, columns[p], a.Style.Font.Size); err != nil {
				return err
			}
		}
	}
	return nil
}

// fitColumn widens the column to fit the header text.
func (wb *Workbook) fitColumn(sheet string, col int, text string, fontSize float64) error {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	if fontSize <= 0 {
		fontSize = 11
	}
	width := float64(utf8.RuneCountInString(text))*fontSize/11*1.2 + 2
	if width > 255 {
		width = 255
	}
	if cur, err := wb.xl.GetColWidth(sheet, name); err == nil && cur >= width {
		return nil
	}
	return wb.xl.SetColWidth(sheet, name, name, width)
}
