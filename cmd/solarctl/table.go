package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

const columnGap = 2

// cell is one table entry. Style is applied after padding so escape codes
// never count towards the column width.
type cell struct {
	text  string
	style *color.Color
}

func plain(text string) cell {
	return cell{text: text}
}

func styled(style *color.Color, text string) cell {
	return cell{text: text, style: style}
}

func writeTable(w io.Writer, rows [][]cell) error {
	var widths []int
	for _, row := range rows {
		for i, c := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(c.text); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, c := range row {
			text := c.text
			if c.style != nil {
				text = c.style.Sprint(c.text)
			}
			b.WriteString(text)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c.text)+columnGap))
			}
		}
		b.WriteByte('\n')
	}
	_, err := fmt.Fprint(w, b.String())
	return err
}

func headerRow(titles ...string) []cell {
	bold := color.New(color.Bold)
	row := make([]cell, len(titles))
	for i, title := range titles {
		row[i] = styled(bold, title)
	}
	return row
}
