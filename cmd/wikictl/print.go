package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mdbot/gitwiki/diffview"
	"github.com/mdbot/gitwiki/wiki"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("109"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	staleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	revisionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	numberStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(5).Align(lipgloss.Right)
	addStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	delStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("174"))
	hunkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))
	changedStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func printCollection(w io.Writer, pages *wiki.PageCollection) {
	for _, page := range pages.Pages {
		if page.Err != nil {
			_, _ = fmt.Fprintf(w, "%s  %s\n", page.Name, dimStyle.Render(page.Err.Error()))
			continue
		}
		line := page.Name
		if page.LastModified != nil {
			line += "  " + dimStyle.Render(fmt.Sprintf("%s %s", shortHash(page.LastModified.Revision), page.LastModified.Time.Format("2006-01-02")))
		}
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("page %d of %d, %d pages in total", pages.CurrentPage, pages.TotalPages, pages.Total)))
}

func printPage(w io.Writer, page *wiki.Page) {
	header := titleStyle.Render(page.Title)
	if page.Stale() {
		header += " " + staleStyle.Render(fmt.Sprintf("(at %s, latest is %s)", page.Revision, shortHash(page.Hashes[0])))
	}
	_, _ = fmt.Fprintln(w, header)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, page.Content)
	if !strings.HasSuffix(page.Content, "\n") {
		_, _ = fmt.Fprintln(w)
	}
}

func printHistory(w io.Writer, history []wiki.HistoryEntry) {
	for _, entry := range history {
		message, _, _ := strings.Cut(entry.Message, "\n")
		_, _ = fmt.Fprintf(w, "%s %s %s %s\n",
			revisionStyle.Render(shortHash(entry.Revision)),
			dimStyle.Render(entry.Time.Format("2006-01-02 15:04")),
			entry.Author,
			message,
		)
	}
}

func printDiff(w io.Writer, raw string) error {
	lines, err := diffview.Format(raw)
	if err != nil {
		return err
	}
	for _, line := range diffview.Highlight(lines) {
		_, _ = fmt.Fprintf(w, "%s %s %s\n", numberStyle.Render(line.Left), numberStyle.Render(line.Right), renderLine(line))
	}
	return nil
}

func renderLine(line diffview.Line) string {
	var style lipgloss.Style
	switch line.Class {
	case diffview.Addition:
		style = addStyle
	case diffview.Deletion:
		style = delStyle
	case diffview.HunkMarker:
		return hunkStyle.Render(line.Text)
	default:
		return line.Text
	}

	if len(line.Segments) == 0 {
		return style.Render(line.Text)
	}
	var b strings.Builder
	b.WriteString(style.Render(line.Text[:1]))
	for _, s := range line.Segments {
		if s.Changed {
			b.WriteString(style.Inherit(changedStyle).Render(s.Text))
		} else {
			b.WriteString(style.Render(s.Text))
		}
	}
	return b.String()
}
