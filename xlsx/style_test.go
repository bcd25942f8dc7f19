// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/UNO-SOFT/xlsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var courier = xlsutil.FontStyle{Name: "Courier New", Size: 14, Bold: true, Color: "1F4E79"}

func fill(t *testing.T, xl *excelize.File, sheet string, rows, cols int) {
	t.Helper()
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			cell, err := excelize.CoordinatesToCellName(c, r)
			require.NoError(t, err)
			require.NoError(t, xl.SetCellValue(sheet, cell, cell))
		}
	}
}

func assertFont(t *testing.T, xl *excelize.File, sheet, cell string, want xlsutil.FontStyle) {
	t.Helper()
	_, st := cellStyle(t, xl, sheet, cell)
	require.NotNil(t, st.Font, cell)
	assert.Equal(t, want.Name, st.Font.Family, cell)
	assert.Equal(t, want.Size, st.Font.Size, cell)
	assert.Equal(t, want.Bold, st.Font.Bold, cell)
	assert.True(t, sameColor(want.Color, st.Font.Color), "%s: color %q", cell, st.Font.Color)
}

func TestApplyFont(t *testing.T) {
	wb := New(filepath.Join(t.TempDir(), "a.xlsx"))
	defer wb.Close()
	xl := wb.File()
	fill(t, xl, "Sheet1", 3, 3)

	require.NoError(t, wb.ApplyFont("Sheet1", xlsutil.CellRange{MinRow: 1, MaxRow: 2, MinCol: 1, MaxCol: 2}, courier))
	for _, cell := range []string{"A1", "B1", "A2", "B2"} {
		assertFont(t, xl, "Sheet1", cell, courier)
	}
	for _, cell := range []string{"C1", "C2", "A3", "C3"} {
		id, err := xl.GetCellStyle("Sheet1", cell)
		require.NoError(t, err)
		assert.Zero(t, id, cell)
	}
	v, err := xl.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "B2", v)

	err = wb.ApplyFont("Sheet1", xlsutil.CellRange{MinRow: 2, MaxRow: 1, MinCol: 1, MaxCol: 1}, courier)
	assert.ErrorIs(t, err, xlsutil.ErrInvalidRange)
	err = wb.ApplyFont("nope", xlsutil.CellRange{MinRow: 1, MaxRow: 1, MinCol: 1, MaxCol: 1}, courier)
	var notExist excelize.ErrSheetNotExist
	assert.ErrorAs(t, err, &notExist)
}

func TestApplyFontKeepsNumberFormat(t *testing.T) {
	wb := New(filepath.Join(t.TempDir(), "a.xlsx"))
	defer wb.Close()
	require.NoError(t, wb.ApplyDateStyle("Sheet1", "B", 1, 3))
	require.NoError(t, wb.ApplyFont("Sheet1", xlsutil.CellRange{MinRow: 1, MaxRow: 3, MinCol: 1, MaxCol: 2}, courier))
	_, st := cellStyle(t, wb.File(), "Sheet1", "B2")
	require.NotNil(t, st.CustomNumFmt)
	assert.Equal(t, xlsutil.DateFormat, *st.CustomNumFmt)
	assertFont(t, wb.File(), "Sheet1", "B2", courier)
}

func TestApplyFontAcrossSheets(t *testing.T) {
	wb := New(filepath.Join(t.TempDir(), "a.xlsx"))
	defer wb.Close()
	xl := wb.File()
	_, err := xl.NewSheet("Big")
	require.NoError(t, err)
	fill(t, xl, "Sheet1", 3, 2)
	fill(t, xl, "Big", 5, 4)

	spec := xlsutil.RangeSpec{MinRow: 1, MaxRow: xlsutil.Last, MinCol: 1, MaxCol: xlsutil.Last}
	require.NoError(t, wb.ApplyFontAcrossSheets(xlsutil.AllSheets(), spec, courier))
	assertFont(t, xl, "Big", "D5", courier)
	assertFont(t, xl, "Sheet1", "B3", courier)
	for sheet, cells := range map[string][]string{"Sheet1": {"C1", "A4"}, "Big": {"E1", "A6"}} {
		for _, cell := range cells {
			id, err := xl.GetCellStyle(sheet, cell)
			require.NoError(t, err)
			assert.Zero(t, id, sheet+"!"+cell)
		}
	}

	_, err = xl.NewSheet("Third")
	require.NoError(t, err)
	fill(t, xl, "Third", 2, 2)
	spec = xlsutil.RangeSpec{MinRow: 1, MaxRow: 1, MinCol: 1, MaxCol: xlsutil.Last}
	require.NoError(t, wb.ApplyFontAcrossSheets(xlsutil.Sheets("Third"), spec, xlsutil.DefaultFont))
	assertFont(t, xl, "Third", "B1", xlsutil.DefaultFont)
	id, err := xl.GetCellStyle("Third", "A2")
	require.NoError(t, err)
	assert.Zero(t, id)

	err = wb.ApplyFontAcrossSheets(xlsutil.Sheets("Third", "nope"), spec, courier)
	var notExist excelize.ErrSheetNotExist
	assert.ErrorAs(t, err, &notExist)
}

func TestApplyFontToFile(t *testing.T) {
	dir := t.TempDir()
	err := ApplyFontToFile(filepath.Join(dir, "missing.xlsx"), xlsutil.AllSheets(), xlsutil.RangeSpec{MinRow: 1, MaxRow: 1, MinCol: 1, MaxCol: 1}, courier)
	assert.ErrorIs(t, err, xlsutil.ErrFileAccess)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	fn := filepath.Join(dir, "a.xlsx")
	wb := New(fn)
	fill(t, wb.File(), "Sheet1", 2, 2)
	require.NoError(t, wb.Save())
	require.NoError(t, wb.Close())

	spec := xlsutil.RangeSpec{MinRow: 1, MaxRow: xlsutil.Last, MinCol: 1, MaxCol: xlsutil.Last}
	require.NoError(t, ApplyFontToFile(fn, xlsutil.ParseSheetSelector("all"), spec, courier))

	xl, err := excelize.OpenFile(fn)
	require.NoError(t, err)
	defer xl.Close()
	assertFont(t, xl, "Sheet1", "B2", courier)
	v, err := xl.GetCellValue("Sheet1", "A2")
	require.NoError(t, err)
	assert.Equal(t, "A2", v)
}

func TestApplyDateStyleIdempotent(t *testing.T) {
	wb := New(filepath.Join(t.TempDir(), "a.xlsx"))
	defer wb.Close()
	xl := wb.File()

	require.NoError(t, wb.ApplyDateStyle("Sheet1", "D", 2, 25))
	id1, st := cellStyle(t, xl, "Sheet1", "D25")
	require.NotNil(t, st.CustomNumFmt)
	assert.Equal(t, "dd/mm/yyyy", *st.CustomNumFmt)

	require.NoError(t, wb.ApplyDateStyleToColumns("Sheet1", 2, 25, "B", "D"))
	id2, _ := cellStyle(t, xl, "Sheet1", "D2")
	id3, _ := cellStyle(t, xl, "Sheet1", "B10")
	assert.Equal(t, id1, id2)
	assert.Equal(t, id1, id3)
	assert.Equal(t, []string{xlsutil.DateStyleName}, wb.NamedStyles())

	for _, cell := range []string{"D1", "D26", "C2"} {
		id, err := xl.GetCellStyle("Sheet1", cell)
		require.NoError(t, err)
		assert.Zero(t, id, cell)
	}

	assert.ErrorIs(t, wb.ApplyDateStyle("Sheet1", "XFE", 2, 3), xlsutil.ErrOutOfRange)
	assert.ErrorIs(t, wb.ApplyDateStyle("Sheet1", "A", 3, 2), xlsutil.ErrInvalidRange)
}

func TestClearStyle(t *testing.T) {
	wb := New(filepath.Join(t.TempDir(), "a.xlsx"))
	defer wb.Close()
	xl := wb.File()
	fill(t, xl, "Sheet1", 2, 2)
	require.NoError(t, wb.ApplyFont("Sheet1", xlsutil.CellRange{MinRow: 1, MaxRow: 2, MinCol: 1, MaxCol: 2}, courier))
	require.NoError(t, wb.ClearStyle("Sheet1", xlsutil.CellRange{MinRow: 1, MaxRow: 1, MinCol: 1, MaxCol: 2}))
	for _, cell := range []string{"A1", "B1"} {
		id, err := xl.GetCellStyle("Sheet1", cell)
		require.NoError(t, err)
		assert.Zero(t, id, cell)
	}
	assertFont(t, xl, "Sheet1", "A2", courier)
	v, err := xl.GetCellValue("Sheet1", "B1")
	require.NoError(t, err)
	assert.Equal(t, "B1", v)
}

func cars() *xlsutil.Frame {
	return xlsutil.NewFrame([]string{"Type", "Marque", "Modèle", "Motorisation"},
		[]any{"Voiture", "Peugeot", "208", "Essence"},
		[]any{"Voiture", "Audi", "A3", "Essence"},
	)
}

func TestApplyHeaderStyles(t *testing.T) {
	wb := New(filepath.Join(t.TempDir(), "a.xlsx"))
	defer wb.Close()
	xl := wb.File()
	df := cars()
	require.NoError(t, xl.SetSheetRow("Sheet1", "A1", &df.Names))

	first := xlsutil.DefaultHeaderStyle
	first.Name = "existing"
	second := first
	second.Name = "second"
	second.Font.Color = "FF0000"
	second.RowHeight = 20
	require.NoError(t, wb.ApplyHeaderStyles("Sheet1", []xlsutil.HeaderStyleAssignment{
		{Columns: []string{"Type", "Marque"}, Style: first},
		{Columns: []string{"Motorisation"}, Style: second},
	}, df))

	_, st := cellStyle(t, xl, "Sheet1", "B1")
	require.NotNil(t, st.Font)
	assert.True(t, st.Font.Bold)
	assert.Equal(t, "Arial", st.Font.Family)
	assert.Equal(t, 9.0, st.Font.Size)
	assert.True(t, sameColor("FFFFFF", st.Font.Color), st.Font.Color)
	assert.Equal(t, 1, st.Fill.Pattern)
	require.NotEmpty(t, st.Fill.Color)
	assert.True(t, sameColor("0B64A0", st.Fill.Color[0]), st.Fill.Color[0])
	require.NotNil(t, st.Alignment)
	assert.Equal(t, "center", st.Alignment.Horizontal)
	assert.True(t, st.Alignment.WrapText)

	_, st = cellStyle(t, xl, "Sheet1", "D1")
	assert.True(t, sameColor("FF0000", st.Font.Color), st.Font.Color)
	id, err := xl.GetCellStyle("Sheet1", "C1")
	require.NoError(t, err)
	assert.Zero(t, id)

	height, err := xl.GetRowHeight("Sheet1", 1)
	require.NoError(t, err)
	assert.Equal(t, 20.0, height)
	assert.Equal(t, []string{"existing", "second"}, wb.NamedStyles())

	// re-running with a changed definition replaces the named style
	first.Font.Size = 12
	require.NoError(t, wb.ApplyHeaderStyles("Sheet1", []xlsutil.HeaderStyleAssignment{
		{Columns: []string{"Type"}, Style: first},
	}, df))
	_, st = cellStyle(t, xl, "Sheet1", "A1")
	assert.Equal(t, 12.0, st.Font.Size)
	height, err = xl.GetRowHeight("Sheet1", 1)
	require.NoError(t, err)
	assert.Equal(t, 34.7, height)
	assert.Equal(t, []string{"existing", "second"}, wb.NamedStyles())
}

func TestApplyHeaderStylesColumnNotFound(t *testing.T) {
	wb := New(filepath.Join(t.TempDir(), "a.xlsx"))
	defer wb.Close()
	xl := wb.File()
	df := cars()
	require.NoError(t, xl.SetSheetRow("Sheet1", "A1", &df.Names))

	err := wb.ApplyHeaderStyles("Sheet1", []xlsutil.HeaderStyleAssignment{
		{Columns: []string{"Type", "Couleur"}, Style: xlsutil.DefaultHeaderStyle},
	}, df)
	require.ErrorIs(t, err, xlsutil.ErrColumnNotFound)
	id, err := xl.GetCellStyle("Sheet1", "A1")
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.Empty(t, wb.NamedStyles())

	bad := xlsutil.DefaultHeaderStyle
	bad.Fill.FillType = "polkaDots"
	err = wb.ApplyHeaderStyles("Sheet1", []xlsutil.HeaderStyleAssignment{
		{Columns: []string{"Type"}, Style: bad},
	}, df)
	assert.ErrorContains(t, err, "polkaDots")
}
