// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsutil

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

// LoadHeaderStyles reads a YAML list of header style assignments:
//
//	- columns: [Type, Brand]
//	  style:
//	    name: existing
//	    font: {name: Arial, size: 9, bold: true, color: FFFFFF}
//	    fill: {start_color: 0b64a0, end_color: 0b64a0, fill_type: solid}
//	    alignment: {horizontal: center, vertical: center, wrap: true}
//	    row_height: 34.7
func LoadHeaderStyles(r io.Reader) ([]HeaderStyleAssignment, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var assignments []HeaderStyleAssignment
	if err := yaml.UnmarshalStrict(b, &assignments); err != nil {
		return nil, fmt.Errorf("parse header styles: %w", err)
	}
	for i, a := range assignments {
		if a.Style.Name == "" {
			return nil, fmt.Errorf("header style #%d of %v has no name", i, a.Columns)
		}
	}
	return assignments, nil
}
