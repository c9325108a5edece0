package main

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// statusf prints a status message to statusWriter unless quiet mode is set.
func statusf(quiet bool, format string, args ...any) {
	if !quiet {
		fmt.Fprintf(statusWriter, format, args...)
	}
}

// sizeUnits lists binary units from largest to smallest above bytes.
var sizeUnits = []struct {
	suffix string
	bytes  int64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
}

// formatSize returns a human-readable size string (e.g. "1.2 MB").
func formatSize(n int64) string {
	for _, u := range sizeUnits {
		if n >= u.bytes {
			return fmt.Sprintf("%.1f %s", float64(n)/float64(u.bytes), u.suffix)
		}
	}

	return fmt.Sprintf("%d B", n)
}

// formatUsage renders part as a size plus its share of total, e.g.
// "2.0 GB (20.0%)". The share is omitted when total is unknown.
func formatUsage(part, total int64) string {
	if total <= 0 {
		return formatSize(part)
	}

	return fmt.Sprintf("%s (%.1f%%)", formatSize(part), float64(part)*100/float64(total))
}

// formatTime renders a provider timestamp in local time: "Jan _2 15:04"
// within the current year, "Jan _2  2006" otherwise. The zero time, which
// stands for a missing timestamp, renders as "-".
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	if t.Year() == time.Now().Year() {
		return t.Format("Jan _2 15:04")
	}

	return t.Format("Jan _2  2006")
}

// printTable writes headers and rows as left-aligned columns separated by
// two spaces. Rows shorter than headers are padded with empty cells.
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	printRow(w, headers, widths)

	for _, row := range rows {
		printRow(w, row, widths)
	}
}

func printRow(w io.Writer, cells []string, widths []int) {
	var b strings.Builder

	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}

		if i > 0 {
			b.WriteString("  ")
		}

		fmt.Fprintf(&b, "%-*s", width, cell)
	}

	fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
}
