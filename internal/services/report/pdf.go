package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	bodyFont     = "Arial"
	bodySize     = 9.0
	lineHeight   = 5.0
	tableFont    = 8.0
	tableLine    = 4.0
	contentWidth = 190.0
	pageBottom   = 297.0 - 15.0
)

var disablePdfcpuConfig sync.Once

// Service renders Markdown reports to PDF
type Service struct {
	logger arbor.ILogger
}

// NewService creates a report Service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Document is a rendered PDF report
type Document struct {
	Data  []byte
	Pages int
}

// RenderPDF converts a Markdown report into a PDF document. YAML frontmatter
// is dropped; the title becomes the document title property. The output is
// read back with pdfcpu, so an unreadable PDF is an error.
func (s *Service) RenderPDF(markdown, title string) (*Document, error) {
	markdown = stripFrontmatter(markdown)

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetCreator("IntentRank", true)
	doc.SetMargins(10, 10, 10)
	doc.SetAutoPageBreak(true, 10)
	doc.AddPage()
	doc.SetFont(bodyFont, "", bodySize)

	source := []byte(markdown)
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(source))

	w := &pdfWriter{
		pdf:    doc,
		source: source,
		tr:     doc.UnicodeTranslatorFromDescriptor(""),
	}
	if err := ast.Walk(root, w.walk); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF output: %w", err)
	}

	pages, err := PageCount(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("rendered report is not a readable PDF: %w", err)
	}

	s.logger.Debug().
		Str("title", title).
		Int("markdown_len", len(markdown)).
		Int("pdf_size", buf.Len()).
		Int("pages", pages).
		Msg("Report rendered to PDF")
	return &Document{Data: buf.Bytes(), Pages: pages}, nil
}

// PageCount reads a rendered PDF back and returns its page count
func PageCount(data []byte) (int, error) {
	disablePdfcpuConfig.Do(api.DisableConfigDir)

	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	return n, nil
}

// pdfWriter walks the goldmark AST and draws each node with fpdf
type pdfWriter struct {
	pdf    *fpdf.Fpdf
	source []byte
	tr     func(string) string
	bold   bool
	italic bool
	lists  []listState
}

type listState struct {
	ordered bool
	next    int
}

func (w *pdfWriter) setFont() {
	style := ""
	if w.bold {
		style += "B"
	}
	if w.italic {
		style += "I"
	}
	w.pdf.SetFont(bodyFont, style, bodySize)
}

func (w *pdfWriter) write(s string) {
	w.pdf.Write(lineHeight, w.tr(s))
}

func (w *pdfWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		w.heading(node, entering)
	case *ast.Paragraph:
		if !entering {
			w.pdf.Ln(lineHeight + 1)
		}
	case *ast.Text:
		if entering {
			w.write(string(node.Segment.Value(w.source)))
			if node.SoftLineBreak() {
				w.write(" ")
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			w.bold = entering
		} else {
			w.italic = entering
		}
		w.setFont()
	case *ast.CodeSpan:
		if entering {
			w.pdf.SetFont("Courier", "", bodySize)
			w.write(string(node.Text(w.source)))
			w.setFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.List:
		w.list(node, entering)
	case *ast.ListItem:
		if entering {
			w.listItem()
		}
	case *ast.TextBlock:
		if !entering {
			w.pdf.Ln(lineHeight)
		}
	case *ast.ThematicBreak:
		if entering {
			y := w.pdf.GetY() + 2
			w.pdf.Line(10, y, 200, y)
			w.pdf.Ln(4)
		}
	case *extast.Table:
		if entering {
			w.table(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (w *pdfWriter) heading(n *ast.Heading, entering bool) {
	if !entering {
		w.pdf.Ln(lineHeight + 2)
		w.setFont()
		return
	}
	sizes := map[int]float64{1: 15, 2: 12, 3: 10.5}
	size, ok := sizes[n.Level]
	if !ok {
		size = 10
	}
	w.pdf.Ln(3)
	w.pdf.SetFont(bodyFont, "B", size)
}

func (w *pdfWriter) list(n *ast.List, entering bool) {
	if entering {
		start := n.Start
		if start == 0 {
			start = 1
		}
		w.lists = append(w.lists, listState{ordered: n.IsOrdered(), next: start})
		return
	}
	w.lists = w.lists[:len(w.lists)-1]
	if len(w.lists) == 0 {
		w.pdf.Ln(2)
	}
}

func (w *pdfWriter) listItem() {
	if len(w.lists) == 0 {
		return
	}
	state := &w.lists[len(w.lists)-1]
	w.pdf.SetX(12 + float64(len(w.lists))*4)

	marker := "- "
	if state.ordered {
		marker = strconv.Itoa(state.next) + ". "
		state.next++
	}
	w.write(marker)
}

func (w *pdfWriter) table(n *extast.Table) {
	var rows [][]string
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *extast.TableHeader:
			rows = append(rows, w.cells(row))
		case *extast.TableRow:
			rows = append(rows, w.cells(row))
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	widths := w.columnWidths(rows)
	w.pdf.Ln(1)

	for i, row := range rows {
		header := i == 0
		if header {
			w.pdf.SetFont(bodyFont, "B", tableFont)
			w.pdf.SetFillColor(230, 230, 230)
		} else {
			w.pdf.SetFont(bodyFont, "", tableFont)
		}

		lines := 1
		for j, c := range row {
			if j < len(widths) {
				if wrapped := len(w.pdf.SplitText(c, widths[j]-2)); wrapped > lines {
					lines = wrapped
				}
			}
		}
		height := float64(lines)*tableLine + 2

		if w.pdf.GetY()+height > pageBottom {
			w.pdf.AddPage()
		}
		x, y := w.pdf.GetX(), w.pdf.GetY()
		for j, c := range row {
			if j >= len(widths) {
				break
			}
			style := "D"
			if header {
				style = "FD"
			}
			w.pdf.Rect(x, y, widths[j], height, style)
			w.pdf.SetXY(x+1, y+1)
			w.pdf.MultiCell(widths[j]-2, tableLine, c, "", "L", false)
			x += widths[j]
		}
		w.pdf.SetXY(10, y+height)
	}

	w.pdf.Ln(3)
	w.setFont()
}

// cells extracts the translated text of every cell in a table row
func (w *pdfWriter) cells(row ast.Node) []string {
	var out []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*extast.TableCell); ok {
			out = append(out, w.tr(strings.TrimSpace(string(c.Text(w.source)))))
		}
	}
	return out
}

// columnWidths sizes columns by their widest cell and scales the table to
// the content width
func (w *pdfWriter) columnWidths(rows [][]string) []float64 {
	cols := len(rows[0])
	widths := make([]float64, cols)

	w.pdf.SetFont(bodyFont, "B", tableFont)
	for _, row := range rows {
		for j := 0; j < cols && j < len(row); j++ {
			if cw := w.pdf.GetStringWidth(row[j]) + 4; cw > widths[j] {
				widths[j] = cw
			}
		}
	}

	total := 0.0
	for j := range widths {
		if widths[j] < 12 {
			widths[j] = 12
		}
		if widths[j] > contentWidth/2 {
			widths[j] = contentWidth / 2
		}
		total += widths[j]
	}
	if total > contentWidth {
		scale := contentWidth / total
		for j := range widths {
			widths[j] *= scale
		}
	}
	return widths
}

// stripFrontmatter removes a leading YAML frontmatter block
func stripFrontmatter(markdown string) string {
	if !strings.HasPrefix(markdown, "---\n") {
		return markdown
	}
	end := strings.Index(markdown[4:], "\n---\n")
	if end == -1 {
		return markdown
	}
	return strings.TrimSpace(markdown[4+end+5:])
}
