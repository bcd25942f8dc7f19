// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsutil

import (
	"strconv"
	"strings"
)

// ColumnLabelToIndex returns the index of the column label ("A", "AB", "XFD"):
// 0-based, or 1-based when addOne is true.
//
//	ColumnLabelToIndex("E", false) == 4
//	ColumnLabelToIndex("E", true) == 5
func ColumnLabelToIndex(label string, addOne bool) (int, error) {
	if label == "" {
		return 0, newError(ErrOutOfRange, label, nil)
	}
	var index int
	for _, c := range strings.ToUpper(label) {
		if c < 'A' || c > 'Z' {
			return 0, newError(ErrOutOfRange, label, nil)
		}
		index = index*26 + int(c-'A'+1)
		if index > MaxColumns {
			return 0, newError(ErrOutOfRange, label, nil)
		}
	}
	if addOne {
		return index, nil
	}
	return index - 1, nil
}

// ColumnIndexToLabel returns the label of the dataset's 0-based column position.
//
// Above Z the first letter is computed as position/25, the second as position%26;
// this does not agree with ColumnLabelToIndex (position 50 is "BY", not "AY").
// Positions whose first letter would be past Z are out of range.
func ColumnIndexToLabel(position int) (string, error) {
	if position < 0 || position+1 > MaxColumns {
		return "", newError(ErrOutOfRange, strconv.Itoa(position), nil)
	}
	if position <= 25 {
		return string(rune('A' + position)), nil
	}
	first := position / 25
	if first > 26 {
		return "", newError(ErrOutOfRange, strconv.Itoa(position), nil)
	}
	return string([]rune{rune('A' + first - 1), rune('A' + position%26)}), nil
}

// GridCoordinate returns the column index of label (see ColumnLabelToIndex)
// and the 0-based row index of the 1-based row.
//
//	GridCoordinate("H", 4, false) == 7, 3
//	GridCoordinate("H", 4, true) == 8, 3
func GridCoordinate(label string, row int, addOne bool) (int, int, error) {
	col, err := ColumnLabelToIndex(label, addOne)
	return col, row - 1, err
}

// Coordinate is a cell address: column label and 1-based row.
type Coordinate struct {
	Column string
	Row    int
}

// ParseCoordinate parses a cell name such as "H4".
func ParseCoordinate(s string) (Coordinate, error) {
	i := strings.IndexFunc(s, func(r rune) bool { return '0' <= r && r <= '9' })
	if i <= 0 {
		return Coordinate{}, newError(ErrOutOfRange, s, nil)
	}
	row, err := strconv.Atoi(s[i:])
	if err != nil || row < 1 || row > MaxRowCount {
		return Coordinate{}, newError(ErrOutOfRange, s, err)
	}
	c := Coordinate{Column: strings.ToUpper(s[:i]), Row: row}
	if _, err := ColumnLabelToIndex(c.Column, true); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Grid is GridCoordinate(c.Column, c.Row, addOne).
func (c Coordinate) Grid(addOne bool) (int, int, error) {
	return GridCoordinate(c.Column, c.Row, addOne)
}

func (c Coordinate) String() string { return c.Column + strconv.Itoa(c.Row) }
