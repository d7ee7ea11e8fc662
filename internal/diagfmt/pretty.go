package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bundler/internal/diag"
	"bundler/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, path, gutter, marker *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		marker: color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.gutter, p.marker} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders diagnostics for a terminal, in bag order (call bag.Sort
// first). Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with the primary span underlined, and notes
// when opts.ShowNotes is set. Diagnostics whose file was never loaded print
// the path alone.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	PrettyItems(w, bag.Items(), fs, opts)
}

// PrettyItems is Pretty over a plain slice.
func PrettyItems(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &items[i], fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	file := lookup(fs, d.Path)
	sev := pal.severity(d.Severity)
	header := fmt.Sprintf("%s %s:", sev.Sprint(d.Severity.String()), d.Code.ID())
	if loc := location(d.Path, file, d.Primary.Start, fs, opts.PathMode); loc != "" {
		fmt.Fprintf(w, "%s: %s %s\n", pal.path.Sprint(loc), header, d.Message)
	} else {
		fmt.Fprintf(w, "%s %s\n", header, d.Message)
	}

	if file != nil {
		writeSnippet(w, file, d.Primary, opts, pal, sev)
	}

	if !opts.ShowNotes {
		return
	}
	for _, note := range d.Notes {
		label := pal.note.Sprint("note")
		if loc := location(d.Path, file, note.Span.Start, fs, opts.PathMode); loc != "" && file != nil {
			fmt.Fprintf(w, "  %s: %s: %s\n", label, loc, note.Msg)
			writeSnippet(w, file, note.Span, PrettyOpts{Width: opts.Width}, pal, pal.note)
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", label, note.Msg)
	}
}

func location(p string, file *source.File, off uint32, fs *source.FileSet, mode PathMode) string {
	shown := formatPath(p, fs, mode)
	if file == nil {
		return shown
	}
	pos := file.Position(off)
	return fmt.Sprintf("%s:%d:%d", shown, pos.Line, pos.Col)
}

func writeSnippet(w io.Writer, file *source.File, span source.Span, opts PrettyOpts, pal palette, mark *color.Color) {
	start := file.Position(span.Start)
	if start.Line == 0 {
		return
	}
	first := start.Line
	if ctx := uint32(max(opts.Context, 0)); ctx < first {
		first -= ctx
	} else {
		first = 1
	}
	gutterWidth := len(strconv.FormatUint(uint64(start.Line), 10))

	for ln := first; ln <= start.Line; ln++ {
		text := displayLine(file.GetLine(ln), opts.Width)
		fmt.Fprintf(w, " %s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), text)
	}

	line := file.GetLine(start.Line)
	col := int(start.Col) - 1
	col = min(max(col, 0), len(line))
	end := col + int(span.Len())
	if span.End < span.Start {
		end = col
	}
	end = min(end, len(line))

	pad := runewidth.StringWidth(expandTabs(line[:col]))
	width := max(runewidth.StringWidth(expandTabs(line[col:end])), 1)
	if opts.Width > 0 {
		limit := int(opts.Width)
		if pad >= limit {
			return
		}
		width = min(width, limit-pad)
	}
	underline := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, " %s %s%s\n", pal.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", pad), mark.Sprint(underline))
}

func displayLine(line string, width uint8) string {
	line = expandTabs(line)
	if width > 0 && runewidth.StringWidth(line) > int(width) {
		return runewidth.Truncate(line, int(width), "…")
	}
	return line
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
