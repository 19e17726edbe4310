package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type statusLevel int

const (
	levelInfo statusLevel = iota
	levelOK
	levelWarn
	levelError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var statusStyles = map[statusLevel]struct {
	label string
	color string
}{
	levelInfo:  {label: "INFO", color: ansiBlue},
	levelOK:    {label: "OK", color: ansiGreen},
	levelWarn:  {label: "WARN", color: ansiYellow},
	levelError: {label: "ERROR", color: ansiRed},
}

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

// renderTable renders headers and rows with rounded borders. Column numbers
// listed in rightAligned (1-based) are right-aligned; everything else is
// left-aligned.
func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, name := range headers {
		header[i] = name
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		align := text.AlignLeft
		if slices.Contains(rightAligned, i+1) {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func statusLine(name string, level statusLevel, detail string, colorize bool) string {
	style := statusStyles[level]
	token := "[" + style.label + "]"
	if detail != "" {
		token += " " + detail
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, name+":", token)
	if colorize && style.color != "" {
		return style.color + line + ansiReset
	}
	return line
}

func sectionHeader(title string, colorize bool) string {
	head := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(head))
	if colorize {
		head, rule = ansiBlue+head+ansiReset, ansiBlue+rule+ansiReset
	}
	return head + "\n" + rule
}

func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
