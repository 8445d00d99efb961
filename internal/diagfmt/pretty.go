package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"estcheck/internal/diag"
	"estcheck/internal/source"
)

type palette struct {
	path *color.Color
	code *color.Color
	note *color.Color
	sev  map[diag.Severity]*color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path: color.New(color.Bold),
		code: color.New(color.FgMagenta),
		note: color.New(color.FgCyan),
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgBlue),
		},
	}
	all := []*color.Color{p.path, p.code, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty форматирует диагностики одного файла в человекочитаемый вид.
// Идёт по in.Bag.Items() (ожидается bag.Sort() заранее). Для каждой
// диагностики печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем, если включено, notes с отступом под уровнем серьёзности.
func Pretty(w io.Writer, in Input, opts PrettyOpts) {
	p := newPalette(opts.Color)
	path := in.DisplayPath(opts.PathMode, opts.BaseDir)

	for _, d := range in.items() {
		where := locationLabel(path, d.Location)
		sevCol := p.sev[d.Severity]
		if sevCol == nil {
			sevCol = p.sev[diag.SevInfo]
		}
		msg := clip(singleLine(d.Message), opts.Width)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path.Sprint(where), sevCol.Sprint(d.Severity), p.code.Sprint(d.Code.ID()), msg)

		// полезная нагрузка таймингов нужна только в JSON
		if !opts.ShowNotes || d.Code == diag.ObsTimings {
			continue
		}
		indent := strings.Repeat(" ", runewidth.StringWidth(where)+2)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "%s%s %s: %s\n", indent, p.note.Sprint("note:"),
				locationLabel(path, n.Location), clip(singleLine(n.Msg), opts.Width))
		}
	}
}

// Summary prints the closing line of a run: how many errors in how many files.
func Summary(w io.Writer, errors, files int, useColor bool) {
	p := newPalette(useColor)
	switch {
	case errors == 0:
		fmt.Fprintf(w, "%s\n", p.sev[diag.SevInfo].Sprintf("no early errors in %s", plural(files, "file")))
	default:
		fmt.Fprintf(w, "%s\n", p.sev[diag.SevError].Sprintf("%s in %s", plural(errors, "early error"), plural(files, "file")))
	}
}

// CountErrors counts diagnostics with Severity >= Error.
func CountErrors(inputs []Input) int {
	n := 0
	for _, in := range inputs {
		for _, d := range in.items() {
			if d.Severity >= diag.SevError {
				n++
			}
		}
	}
	return n
}

func locationLabel(path string, loc source.Location) string {
	if loc.IsZero() {
		return path
	}
	return path + ":" + loc.String()
}

func singleLine(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", " ")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}

// clip ограничивает ширину сообщения с учётом широких символов.
func clip(msg string, width int) string {
	if width <= 0 || runewidth.StringWidth(msg) <= width {
		return msg
	}
	if width <= 3 {
		return runewidth.Truncate(msg, width, "")
	}
	return runewidth.Truncate(msg, width, "...")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
