package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"pokedex/internal/identify"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
	ansiDim   = "\x1b[2m"
)

const statusLabelWidth = 20

func renderStatusLine(label string, ok bool, message string, colorize bool) string {
	status, color := "ERROR", ansiRed
	if ok {
		status, color = "OK", ansiGreen
	}
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", status)
	if message != "" {
		line += " " + message
	}
	if colorize {
		return color + line + ansiReset
	}
	return line
}

type rgb struct{ r, g, b uint8 }

// typeColors holds the chip colour for each of the 18 canonical type tags.
// Tags outside this table are not rendered.
var typeColors = map[string]rgb{
	"一般":  {0xA8, 0xA8, 0x78},
	"火":   {0xF0, 0x80, 0x30},
	"水":   {0x68, 0x90, 0xF0},
	"電":   {0xF8, 0xD0, 0x30},
	"草":   {0x78, 0xC8, 0x50},
	"冰":   {0x98, 0xD8, 0xD8},
	"格鬥":  {0xC0, 0x30, 0x28},
	"毒":   {0xA0, 0x40, 0xA0},
	"地面":  {0xE0, 0xC0, 0x68},
	"飛行":  {0xA8, 0x90, 0xF0},
	"超能力": {0xF8, 0x58, 0x88},
	"蟲":   {0xA8, 0xB8, 0x20},
	"岩石":  {0xB8, 0xA0, 0x38},
	"幽靈":  {0x70, 0x58, 0x98},
	"龍":   {0x70, 0x38, 0xF8},
	"惡":   {0x70, 0x58, 0x48},
	"鋼":   {0xB8, 0xB8, 0xD0},
	"妖精":  {0xEE, 0x99, 0xAC},
}

// renderTypes joins the known type tags in catalog order. It returns "" when
// no tag is known.
func renderTypes(types []string, colorize bool) string {
	parts := make([]string, 0, len(types))
	for _, tag := range types {
		color, ok := typeColors[tag]
		if !ok {
			continue
		}
		if colorize {
			parts = append(parts, fmt.Sprintf("\x1b[1;97;48;2;%d;%d;%dm %s %s", color.r, color.g, color.b, tag, ansiReset))
		} else {
			parts = append(parts, tag)
		}
	}
	if colorize {
		return strings.Join(parts, " ")
	}
	return strings.Join(parts, " / ")
}

// renderOutcome shows name and label for every outcome. Number, generation
// and types are only shown for resolved outcomes.
func renderOutcome(outcome identify.Outcome, colorize bool) string {
	rows := [][]string{
		{"Name", outcome.Payload.Name},
		{"Label", outcome.Payload.Label},
	}
	if details := outcome.Details; outcome.Payload.Resolved && details != nil {
		if details.AltName != "" {
			rows = append(rows, []string{"Alt name", details.AltName})
		}
		if details.Number != "" {
			rows = append(rows, []string{"Number", "#" + details.Number})
		}
		if details.Generation != "" {
			rows = append(rows, []string{"Generation", details.Generation})
		}
		if types := renderTypes(details.Types, colorize); types != "" {
			rows = append(rows, []string{"Types", types})
		}
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func renderKeyValues(title string, pairs [][2]string, colorize bool) string {
	width := 0
	for _, pair := range pairs {
		width = max(width, len(pair[0])+1)
	}
	var b strings.Builder
	header := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		header = ansiBlue + header + ansiReset
	}
	b.WriteString(header)
	b.WriteByte('\n')
	for _, pair := range pairs {
		value := pair[1]
		if value == "" {
			value = "-"
			if colorize {
				value = ansiDim + value + ansiReset
			}
		}
		fmt.Fprintf(&b, "  %-*s %s\n", width, pair[0]+":", value)
	}
	return b.String()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
