// Copyright 2021, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/UNO-SOFT/xlsutil"
	"github.com/UNO-SOFT/xlsutil/xlsx"
	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil {
		slog.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

func Main() error {
	opts := xlsx.DefaultWriteOptions()
	opts.Index = false

	fs := flag.NewFlagSet("csv2xlsx", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	fs.String("config", "", "config file (optional)")
	flagEnc := fs.String("charset", xlsutil.EncName, "csv charset name")
	flagStart := fs.String("start", "A1", "top-left cell of the written table")
	flagMode := fs.String("mode", string(opts.Mode), "w(rite) or a(ppend)")
	flagPolicy := fs.String("if-sheet-exists", string(opts.IfSheetExists), "error|new|replace|overlay")
	flagNoHeader := fs.Bool("no-header", false, "do not write the column names")
	flagColumns := fs.String("columns", "", "comma separated list of the columns to write")
	flagDateCols := fs.String("date-cols", "", "comma separated column letters to format as dates")
	flagHeaderStyles := fs.String("header-styles", "", "YAML file of header styles")
	fs.BoolVar(&opts.Index, "index", opts.Index, "write the row numbers")
	fs.StringVar(&opts.NaRep, "na-rep", opts.NaRep, "missing value representation")
	fs.StringVar(&opts.FloatFormat, "float-format", opts.FloatFormat, "float format")

	fontFS := flag.NewFlagSet("font", flag.ContinueOnError)
	flagSheets := fontFS.String("sheets", "all", "comma separated sheet names, or all")
	flagMinRow := fontFS.Int("min-row", 1, "first row")
	flagMaxRow := fontFS.String("max-row", "last", "last row (number or last)")
	flagMinCol := fontFS.Int("min-col", 1, "first column")
	flagMaxCol := fontFS.String("max-col", "last", "last column (number or last)")
	font := xlsutil.DefaultFont
	fontFS.StringVar(&font.Name, "name", font.Name, "font name")
	fontFS.Float64Var(&font.Size, "size", font.Size, "font size")
	fontFS.BoolVar(&font.Bold, "bold", font.Bold, "bold")
	fontFS.StringVar(&font.Color, "color", font.Color, "font color (RRGGBB)")

	fontCmd := ffcli.Command{Name: "font", FlagSet: fontFS,
		ShortUsage: "csv2xlsx font [flags] <file.xlsx>",
		ShortHelp:  "apply a font to the cells of the sheets",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return flag.ErrHelp
			}
			if b, err := hex.DecodeString(strings.TrimPrefix(font.Color, "#")); err != nil || len(b) != 3 {
				return fmt.Errorf("color %q: wanted RRGGBB", font.Color)
			}
			spec := xlsutil.RangeSpec{MinRow: *flagMinRow, MinCol: *flagMinCol}
			var err error
			if spec.MaxRow, err = xlsutil.ParseBound(*flagMaxRow); err != nil {
				return err
			}
			if spec.MaxCol, err = xlsutil.ParseBound(*flagMaxCol); err != nil {
				return err
			}
			logger.Debug("font", "file", args[0], "sheets", *flagSheets, "range", spec, "font", font)
			return xlsx.ApplyFontToFile(args[0], xlsutil.ParseSheetSelector(*flagSheets), spec, font)
		},
	}

	app := ffcli.Command{Name: "csv2xlsx", FlagSet: fs,
		ShortUsage: "csv2xlsx [flags] <out.xlsx> <[sheet:]in.csv>...",
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ff.PlainParser),
		},
		Subcommands: []*ffcli.Command{&fontCmd},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) < 2 {
				return flag.ErrHelp
			}
			start, err := xlsutil.ParseCoordinate(*flagStart)
			if err != nil {
				return err
			}
			opts.Start = start
			if opts.Mode, err = xlsutil.ParseMode(*flagMode); err != nil {
				return err
			}
			if opts.IfSheetExists, err = xlsutil.ParseConflictPolicy(*flagPolicy); err != nil {
				return err
			}
			opts.Header = !*flagNoHeader
			opts.Columns = splitList(*flagColumns)
			if opts.DateColumns = splitList(*flagDateCols); len(opts.DateColumns) != 0 {
				opts.DateFormat = true
			}
			if *flagHeaderStyles != "" {
				if opts.HeaderStyles, err = loadHeaderStyles(*flagHeaderStyles); err != nil {
					return err
				}
				opts.HeaderFormat = true
			}
			opts.Logger = logger

			out := args[0]
			for i, fn := range args[1:] {
				sheetName := fmt.Sprintf("Sheet%d", i+1)
				if j := strings.IndexByte(fn, ':'); j >= 0 {
					sheetName, fn = fn[:j], fn[j+1:]
				} else if fn != "" && fn != "-" {
					sheetName = strings.TrimSuffix(filepath.Base(fn), ".csv")
				}
				o := opts
				o.Sheet = sheetName
				if i != 0 && o.Mode == xlsutil.ModeWrite {
					// the first sheet created the file
					o.Mode = xlsutil.ModeAppend
				}
				if err := copyFile(out, fn, *flagEnc, o); err != nil {
					return fmt.Errorf("%q: %w", fn, err)
				}
			}
			return nil
		},
	}

	if err := app.Parse(os.Args[1:]); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return app.Run(ctx)
}

func copyFile(out, fn, encName string, opts xlsx.WriteOptions) error {
	cr, err := xlsutil.OpenCsv(fn, encName)
	if err != nil {
		return err
	}
	defer cr.Close()
	df, err := xlsutil.ReadFrame(cr.Reader)
	if err != nil {
		return err
	}
	logger.Debug("read", "file", fn, "columns", df.Columns(), "rows", df.NumRows())
	return xlsx.SaveDataset(df, out, opts)
}

func loadHeaderStyles(fn string) ([]xlsutil.HeaderStyleAssignment, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return xlsutil.LoadHeaderStyles(fh)
}

func splitList(s string) []string {
	var list []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			list = append(list, e)
		}
	}
	return list
}
