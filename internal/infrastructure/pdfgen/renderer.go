package pdfgen

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"

	"github.com/flexfinder/backend/internal/domain"
)

// Page geometry in points (Letter, 48pt margins all around).
const (
	pageMargin  = 48.0
	pageBottom  = 792.0 - pageMargin
	labelWidth  = 1.4 * 72
	valueWidth  = 4.1 * 72
	imageWidth  = 2.6 * 72
	imageHeight = 1.7 * 72
)

// Brand palette.
var (
	crestronBlue = [3]int{0, 74, 128}
	crestronTeal = [3]int{0, 124, 160}
	textGray     = [3]int{107, 114, 128}
	borderGray   = [3]int{229, 231, 235}
	fillGray     = [3]int{249, 250, 251}
)

// RendererConfig holds configuration for the quote PDF renderer
type RendererConfig struct {
	MaxProducts int
}

// Renderer lays out recommendation quotes as branded PDF documents.
type Renderer struct {
	fetcher     domain.PageFetcher
	maxProducts int
	now         func() time.Time
}

// NewRenderer creates a new quote PDF renderer
func NewRenderer(fetcher domain.PageFetcher, cfg RendererConfig) *Renderer {
	if cfg.MaxProducts <= 0 {
		cfg.MaxProducts = 4
	}
	return &Renderer{fetcher: fetcher, maxProducts: cfg.MaxProducts, now: time.Now}
}

// Render builds the quote document: title, room profile table, rationale,
// then up to MaxProducts product sections with imagery where it can be
// fetched. Image failures leave the section text-only.
func (r *Renderer) Render(ctx context.Context, req *domain.QuoteRequest) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	r.header(pdf, tr)
	r.profileTable(pdf, tr, req)
	r.rationale(pdf, tr, req.Rationale)

	products := req.Products
	if len(products) > r.maxProducts {
		products = products[:r.maxProducts]
	}
	if len(products) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 14, tr("No products available. Generate recommendations in the app first."), "", "L", false)
	} else {
		r.productSections(ctx, pdf, tr, products)
	}

	pdf.Ln(16)
	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, textGray)
	pdf.MultiCell(0, 11, tr("This document is for demo purposes only. Pricing is indicative and may require a dealer quote. Salesforce integration simulated via CSV."), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		logrus.Errorf("[PDF] render failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPDFRender, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) header(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 20)
	setText(pdf, crestronBlue)
	pdf.CellFormat(0, 24, tr("Crestron Flex – Recommendation Summary"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, textGray)
	generated := "Generated: " + r.now().UTC().Format("2006-01-02 15:04") + " UTC"
	pdf.CellFormat(0, 11, generated, "", 1, "C", false, 0, "")
	pdf.Ln(14)
}

func (r *Renderer) profileTable(pdf *gofpdf.Fpdf, tr func(string) string, req *domain.QuoteRequest) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	setDraw(pdf, borderGray)
	setFill(pdf, fillGray)

	rows := [][2]string{
		{"Room Type", valueOrDash(req.RoomType)},
		{"Platform", valueOrDash(req.Platform)},
		{"User Needs", valueOrDash(req.UserNeeds)},
	}
	for _, row := range rows {
		value := tr(row[1])
		lines := len(pdf.SplitText(value, valueWidth-12))
		if lines == 0 {
			lines = 1
		}
		rowH := float64(lines) * 18

		x, y := pdf.GetXY()
		pdf.CellFormat(labelWidth, rowH, tr(row[0]), "1", 0, "L", true, 0, "")
		pdf.SetXY(x+labelWidth, y)
		pdf.MultiCell(valueWidth, 18, value, "1", "L", true)
	}
	pdf.Ln(14)
}

func (r *Renderer) rationale(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	setText(pdf, crestronBlue)
	pdf.CellFormat(0, 18, "Rationale", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	if strings.TrimSpace(text) == "" {
		text = "—"
	}
	pdf.MultiCell(0, 14, tr(text), "", "L", false)
	pdf.Ln(12)
}

func (r *Renderer) productSections(ctx context.Context, pdf *gofpdf.Fpdf, tr func(string) string, products []domain.ResolvedProduct) {
	pdf.SetFont("Helvetica", "B", 14)
	setText(pdf, crestronBlue)
	pdf.CellFormat(0, 18, "Recommended Products", "", 1, "L", false, 0, "")
	pdf.Ln(6)

	for i, p := range products {
		name := p.Name
		if name == "" {
			name = "Product"
		}
		pdf.SetFont("Helvetica", "B", 12)
		setText(pdf, crestronTeal)
		pdf.CellFormat(0, 16, tr(name), "", 1, "L", false, 0, "")

		price := p.Price
		if price == "" {
			price = "Request quote"
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 14, tr("Price: "+price), "", 1, "L", false, 0, "")
		pdf.Ln(4)

		r.placeImage(ctx, pdf, i, &p)

		summary := p.Summary
		if strings.TrimSpace(summary) == "" {
			summary = "—"
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 14, tr(summary), "", "L", false)

		why := p.WhyFit
		if len(why) > 6 {
			why = why[:6]
		}
		for _, w := range why {
			pdf.SetX(pageMargin + 10)
			pdf.MultiCell(0, 13, tr("• "+w), "", "L", false)
		}

		if p.ResolvedProductURL != "" {
			setText(pdf, crestronBlue)
			pdf.WriteLinkString(13, "View on Crestron", p.ResolvedProductURL)
			pdf.Ln(13)
		}
		pdf.Ln(10)
	}
}

// placeImage fetches the product image and places it when it decodes to a
// format the document can carry.
func (r *Renderer) placeImage(ctx context.Context, pdf *gofpdf.Fpdf, idx int, p *domain.ResolvedProduct) {
	src := p.ResolvedImageSource
	if src == "" {
		return
	}

	res := r.fetcher.DownloadImage(ctx, src, p.ResolvedProductURL)
	if !res.OK() || len(res.Body) == 0 {
		return
	}
	imgType := sniffImageType(res.Body)
	if imgType == "" {
		logrus.Debugf("[PDF] skipping image with unsupported format: %s", src)
		return
	}

	opts := gofpdf.ImageOptions{ImageType: imgType}
	name := fmt.Sprintf("product-%d", idx)
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(res.Body))
	if pdf.Err() {
		logrus.Warnf("[PDF] could not register image %s: %v", src, pdf.Error())
		pdf.ClearError()
		return
	}

	x, y := pdf.GetXY()
	if y+imageHeight > pageBottom {
		pdf.AddPage()
		x, y = pdf.GetXY()
	}
	pdf.ImageOptions(name, x, y, imageWidth, imageHeight, false, opts, 0, "")
	pdf.SetY(y + imageHeight + 6)
}

// sniffImageType identifies the image format from its magic bytes. Only
// formats the document engine accepts are reported.
func sniffImageType(body []byte) string {
	switch {
	case len(body) >= 4 && bytes.Equal(body[:4], []byte("\x89PNG")):
		return "PNG"
	case len(body) >= 2 && body[0] == 0xFF && body[1] == 0xD8:
		return "JPEG"
	case len(body) >= 4 && bytes.Equal(body[:4], []byte("GIF8")):
		return "GIF"
	}
	return ""
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func setText(pdf *gofpdf.Fpdf, c [3]int) { pdf.SetTextColor(c[0], c[1], c[2]) }
func setDraw(pdf *gofpdf.Fpdf, c [3]int) { pdf.SetDrawColor(c[0], c[1], c[2]) }
func setFill(pdf *gofpdf.Fpdf, c [3]int) { pdf.SetFillColor(c[0], c[1], c[2]) }
