package report

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

// page geometry, in mm
const (
	pageMargin   = 15.0
	bottomMargin = 22.0
	cellPad      = 2.0
	lineHeight   = 7.0
	logoWidth    = 28.0
	bannerHeight = 22.0
	categoryW    = 55.0
)

type renderer struct {
	pdf      *fpdf.Fpdf
	layout   Layout
	family   string
	shape    Shaper
	logo     bool
	logoOpts fpdf.ImageOptions
	lines    map[string][]line // wrapped logical lines drawn per field key
}

func (r *renderer) render() (*Document, error) {
	pdf := r.pdf
	pdf.SetFooterFunc(r.footer)
	pdf.AddPage()

	r.header()
	r.infoPanel()
	r.section("التغذية الراجعة", "Feedback")
	r.table([2]string{"التفاصيل / Detail", "الفئة / Category"}, r.layout.Feedback)
	if len(r.layout.Scores) > 0 {
		r.section("الدرجات", "Scores")
		r.table([2]string{"الدرجة / Score", "المجال / Domain"}, r.layout.Scores)
	}
	r.evaluatorPanel()

	if err := pdf.Error(); err != nil {
		return nil, errors.Wrap(err, "drawing report")
	}
	pages := pdf.PageCount()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing report")
	}
	return &Document{Layout: r.layout, data: buf.Bytes(), pages: pages, lines: r.lines}, nil
}

// text prepares a logical string for drawing.
func (r *renderer) text(s string) string {
	return r.shape(s)
}

func (r *renderer) width() float64 {
	w, _ := r.pdf.GetPageSize()
	return w - 2*pageMargin
}

func (r *renderer) header() {
	pdf := r.pdf
	pageW, _ := pdf.GetPageSize()
	y := pdf.GetY()

	if r.logo {
		pdf.ImageOptions(logoName, (pageW-logoWidth)/2, y, logoWidth, 0, false, r.logoOpts, 0, "")
		y += logoWidth + 4
	}

	pdf.SetFillColor(bannerColor[0], bannerColor[1], bannerColor[2])
	pdf.Rect(pageMargin, y, r.width(), bannerHeight, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(pageMargin, y+2)
	pdf.SetFont(r.family, "B", 17)
	pdf.CellFormat(r.width(), 9, r.text(r.layout.TitleAr), "", 1, "C", false, 0, "")
	pdf.SetFont(r.family, "", 13)
	pdf.CellFormat(r.width(), 8, r.text(r.layout.TitleEn), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetY(y + bannerHeight + 5)
}

func (r *renderer) infoPanel() {
	r.panel(r.layout.Info)
}

func (r *renderer) evaluatorPanel() {
	r.pdf.Ln(4)
	r.panel(r.layout.Evaluator)
}

// panel draws right-aligned "label value" lines on a tinted background.
func (r *renderer) panel(fields []Field) {
	pdf := r.pdf
	pdf.SetFont(r.family, "", 12)
	pdf.SetFillColor(panelColor[0], panelColor[1], panelColor[2])
	for _, f := range fields {
		r.paragraph(f.Key, f.Label+" "+f.Value, r.width(), "R", true)
	}
	pdf.Ln(4)
}

func (r *renderer) section(ar, en string) {
	pdf := r.pdf
	r.ensureSpace(3 * lineHeight)
	pdf.SetFont(r.family, "B", 14)
	pdf.SetTextColor(bannerColor[0], bannerColor[1], bannerColor[2])
	pdf.CellFormat(r.width(), 9, r.text(ar+" / "+en), "B", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}

// table draws a two-column (value | label) table, one row per field.
// Rows are drawn line by line so long text continues on the next page under a repeated head.
func (r *renderer) table(head [2]string, rows []Field) {
	pdf := r.pdf
	detailW := r.width() - categoryW

	drawHead := func() {
		pdf.SetFont(r.family, "B", 11)
		pdf.SetFillColor(bannerColor[0], bannerColor[1], bannerColor[2])
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(detailW, lineHeight+1, r.text(head[0]), "1", 0, "C", true, 0, "")
		pdf.CellFormat(categoryW, lineHeight+1, r.text(head[1]), "1", 1, "C", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(r.family, "", 11)
	}

	r.ensureSpace(2 * lineHeight)
	drawHead()
	for i, row := range rows {
		pdf.SetFont(r.family, "", 11)
		detail := r.wrap(row.Value, detailW)
		category := r.wrap(row.Label, categoryW)
		r.lines[row.Key] = detail

		n := len(detail)
		if len(category) > n {
			n = len(category)
		}
		fill := i%2 == 1
		pdf.SetFillColor(rowColor[0], rowColor[1], rowColor[2])
		for j := 0; j < n; j++ {
			if r.ensureSpace(lineHeight) {
				drawHead()
			}
			border := "LR"
			if j == 0 {
				border += "T"
			}
			if j == n-1 {
				border += "B"
			}
			pdf.CellFormat(detailW, lineHeight, r.text(lineAt(detail, j)), border, 0, "R", fill, 0, "")
			pdf.CellFormat(categoryW, lineHeight, r.text(lineAt(category, j)), border, 1, "R", fill, 0, "")
		}
	}
	pdf.Ln(4)
}

// paragraph draws wrapped text across the full width and records its lines under key.
func (r *renderer) paragraph(key, s string, w float64, align string, fill bool) {
	lines := r.wrap(s, w)
	r.lines[key] = lines
	for _, l := range lines {
		r.ensureSpace(lineHeight)
		r.pdf.CellFormat(w, lineHeight, r.text(l.text), "", 1, align, fill, 0, "")
	}
}

// ensureSpace starts a new page when h does not fit above the bottom margin.
func (r *renderer) ensureSpace(h float64) bool {
	_, pageH := r.pdf.GetPageSize()
	if r.pdf.GetY()+h > pageH-bottomMargin {
		r.pdf.AddPage()
		return true
	}
	return false
}

func (r *renderer) footer() {
	pdf := r.pdf
	pdf.SetY(-(bottomMargin - 4))
	pdf.SetFont(r.family, "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(r.width(), 5, r.text(r.layout.FooterAr), "T", 1, "R", false, 0, "")
	pdf.CellFormat(r.width()/2, 5, r.text(r.layout.FooterEn), "", 0, "L", false, 0, "")
	pdf.CellFormat(r.width()/2, 5, strconv.Itoa(pdf.PageNo()), "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// wrap splits logical text into lines that fit w once drawn. Lines break at whitespace runs
// and line endings; a word wider than w is cut by characters. Every line keeps the text consumed
// at its break so the input can be rebuilt from the lines.
func (r *renderer) wrap(s string, w float64) []line {
	maxW := w - 2*cellPad
	fits := func(text string) bool { return r.pdf.GetStringWidth(r.text(text)) <= maxW }

	var lines []line
	for _, b := range splitBlocks(s) {
		lines = append(lines, wrapBlock(b.text, b.end, fits)...)
	}
	return lines
}

// block is a paragraph of logical text and the line ending that closes it.
type block struct {
	text string
	end  string // "\n", "\r\n", or "" for the last one
}

func splitBlocks(s string) []block {
	var blocks []block
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			return append(blocks, block{text: s})
		}
		text, end := s[:i], "\n"
		if strings.HasSuffix(text, "\r") {
			text, end = text[:len(text)-1], "\r\n"
		}
		blocks = append(blocks, block{text: text, end: end})
		s = s[i+1:]
	}
}

func wrapBlock(text, end string, fits func(string) bool) []line {
	var (
		lines   []line
		cur     string
		pending string // whitespace run after cur
	)
	for _, tok := range tokens(text) {
		if strings.TrimSpace(tok) == "" {
			pending = tok
			continue
		}
		if candidate := cur + pending + tok; fits(candidate) {
			cur, pending = candidate, ""
			continue
		}
		if cur != "" {
			lines = append(lines, line{text: cur, brk: pending})
			pending = ""
		}
		// leading whitespace of the paragraph stays on its first line
		cur, pending = pending+tok, ""
		for !fits(cur) {
			head, tail := splitToFit(cur, fits)
			if tail == "" {
				break
			}
			lines = append(lines, line{text: head})
			cur = tail
		}
	}
	return append(lines, line{text: cur + pending, brk: end})
}

// tokens splits s into alternating runs of whitespace and non-whitespace.
func tokens(s string) []string {
	var (
		out   []string
		start int
		space bool
	)
	for i, c := range s {
		sp := unicode.IsSpace(c)
		if i > 0 && sp != space {
			out = append(out, s[start:i])
			start = i
		}
		space = sp
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// splitToFit cuts the longest prefix (at least one character) of word that fits.
func splitToFit(word string, fits func(string) bool) (string, string) {
	runes := []rune(word)
	cut := 1
	for cut < len(runes) && fits(string(runes[:cut+1])) {
		cut++
	}
	return string(runes[:cut]), string(runes[cut:])
}

func lineAt(lines []line, i int) string {
	if i < len(lines) {
		return lines[i].text
	}
	return ""
}
