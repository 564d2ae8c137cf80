package report

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"

	domain "github.com/affordableaudits/audit-api/internal/domain/audit"
)

// Branding holds the fixed visual identity of the rendered document.
type Branding struct {
	Name       string
	Color      string // #RRGGBB
	FooterText string
}

// PDFRenderer lays out a SynthesizedReport as a branded A4 document:
// header, metadata, narrative summary, one titled section per raw finding
// set, footer on every page. Layout is deterministic for a given report:
// the creation date comes from the report itself, not the wall clock.
type PDFRenderer struct {
	branding Branding
}

func NewPDFRenderer(b Branding) *PDFRenderer {
	if b.Name == "" {
		b.Name = "Affordable Smart Contract Audits"
	}
	if b.Color == "" {
		b.Color = "#1F3A5F"
	}
	return &PDFRenderer{branding: b}
}

func (r *PDFRenderer) Render(rep *domain.SynthesizedReport, outputPath string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.branding.Name+" Smart Contract Audit", true)
	pdf.SetCreationDate(rep.GeneratedAt)
	pdf.SetModificationDate(rep.GeneratedAt)
	pdf.SetMargins(18, 20, 18)
	pdf.SetAutoPageBreak(true, 22)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	br, bg, bb := hexColor(r.branding.Color)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-16)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 8, tr(r.branding.FooterText), "", 0, "L", false, 0, "")
	})

	pdf.AddPage()

	// Branded header
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(br, bg, bb)
	pdf.CellFormat(0, 12, tr(r.branding.Name), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// Metadata block
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(br, bg, bb)
	r.metaRow(pdf, tr, "Report Generated", rep.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))
	pdf.SetTextColor(60, 60, 60)
	r.metaRow(pdf, tr, "Automated Tools", "Slither, Mythril")
	pdf.Ln(5)

	// Narrative summary
	r.sectionTitle(pdf, tr, "Executive Summary", br, bg, bb)
	r.writeBlocks(pdf, tr, parseMarkdown(rep.Summary))
	pdf.Ln(4)

	// Raw findings, structural first
	r.sectionTitle(pdf, tr, "Detailed Findings", br, bg, bb)
	for _, res := range []domain.ScanResult{rep.Structural, rep.Symbolic} {
		r.findingSection(pdf, tr, res)
	}

	return pdf.OutputFileAndClose(outputPath)
}

func (r *PDFRenderer) metaRow(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.CellFormat(45, 6, tr(label), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func (r *PDFRenderer) sectionTitle(pdf *fpdf.Fpdf, tr func(string) string, title string, cr, cg, cb int) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(cr, cg, cb)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func (r *PDFRenderer) writeBlocks(pdf *fpdf.Fpdf, tr func(string) string, blocks []block) {
	for _, b := range blocks {
		switch b.kind {
		case blockHeading:
			pdf.SetFont("Helvetica", "B", 16)
			pdf.SetTextColor(40, 40, 40)
			pdf.MultiCell(0, 8, tr(b.text), "", "L", false)
		case blockSubheading:
			pdf.SetFont("Helvetica", "B", 13)
			pdf.SetTextColor(40, 40, 40)
			pdf.MultiCell(0, 7, tr(b.text), "", "L", false)
		case blockBullet:
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetTextColor(20, 20, 20)
			pdf.MultiCell(0, 6, tr("• "+b.text), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetTextColor(20, 20, 20)
			pdf.MultiCell(0, 6, tr(b.text), "", "L", false)
		}
		pdf.Ln(1.5)
	}
}

func (r *PDFRenderer) findingSection(pdf *fpdf.Fpdf, tr func(string) string, res domain.ScanResult) {
	title := fmt.Sprintf("%s (%s)", toolTitle(res.Tool), res.Status)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(40, 40, 40)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")

	raw, err := json.MarshalIndent(res.Report, "", "  ")
	if err != nil {
		raw = []byte("{}")
	}
	pdf.SetFont("Courier", "", 8)
	pdf.SetTextColor(70, 70, 70)
	pdf.MultiCell(0, 4, tr(string(raw)), "", "L", false)
	pdf.Ln(3)
}

func toolTitle(t domain.Tool) string {
	switch t {
	case domain.ToolSlither:
		return "Slither JSON"
	case domain.ToolMythril:
		return "Mythril JSON"
	}
	return string(t)
}

// hexColor parses #RRGGBB; a bad value falls back to near-black rather than
// failing the render.
func hexColor(s string) (int, int, int) {
	if len(s) == 7 && s[0] == '#' {
		r, err1 := strconv.ParseUint(s[1:3], 16, 8)
		g, err2 := strconv.ParseUint(s[3:5], 16, 8)
		b, err3 := strconv.ParseUint(s[5:7], 16, 8)
		if err1 == nil && err2 == nil && err3 == nil {
			return int(r), int(g), int(b)
		}
	}
	return 20, 20, 20
}
