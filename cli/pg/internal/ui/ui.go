package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Prefix starts every line printed through Log and friends.
const Prefix = "pg: "

// Kind selects the colour of a message.
type Kind int

const (
	KindLog Kind = iota
	KindError
	KindSuccess
	KindWarning
)

// Printer writes human-facing messages. Colours are dropped automatically
// when the destination is not a terminal.
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	styles   map[Kind]lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:        w,
		renderer: r,
		styles: map[Kind]lipgloss.Style{
			KindLog:     r.NewStyle(),
			KindError:   r.NewStyle().Foreground(lipgloss.Color("1")),
			KindSuccess: r.NewStyle().Foreground(lipgloss.Color("2")),
			KindWarning: r.NewStyle().Foreground(lipgloss.Color("3")),
		},
	}
}

// Writer returns the destination of the printer.
func (p *Printer) Writer() io.Writer { return p.w }

// Colorize renders msg in the colour associated with kind.
func (p *Printer) Colorize(msg string, kind Kind) string {
	st, ok := p.styles[kind]
	if !ok || kind == KindLog {
		return msg
	}
	return st.Render(msg)
}

func (p *Printer) print(msg string, kind Kind, end string, prefix bool) {
	pre := ""
	if prefix {
		pre = Prefix
	}
	fmt.Fprint(p.w, pre+p.Colorize(msg, kind)+end)
}

func (p *Printer) Log(msg string)     { p.print(msg, KindLog, "\n", true) }
func (p *Printer) Error(msg string)   { p.print(msg, KindError, "\n", true) }
func (p *Printer) Success(msg string) { p.print(msg, KindSuccess, "\n", true) }
func (p *Printer) Warning(msg string) { p.print(msg, KindWarning, "\n", true) }

// Progress announces a step; the line is completed by Done.
func (p *Printer) Progress(desc string) { p.print(desc+"... ", KindLog, "", true) }

// Done completes a Progress line. On failure the command is echoed so it can
// be rerun by hand.
func (p *Printer) Done(ok bool, cmdLine string) {
	if ok {
		p.print("OK", KindSuccess, "\n", false)
		return
	}
	p.print("failed", KindError, "\n", false)
	p.print("command used: "+cmdLine, KindError, "\n", false)
}

// Table renders rows under headers as borderless, left-aligned columns.
// highlight is called for every body cell and may return a colour kind.
func (p *Printer) Table(headers []string, rows [][]string, highlight func(row, col int) Kind) string {
	cell := p.renderer.NewStyle().PaddingRight(4)
	t := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || highlight == nil {
				return cell
			}
			if st, ok := p.styles[highlight(row, col)]; ok {
				return st.PaddingRight(4)
			}
			return cell
		})
	return t.String()
}
