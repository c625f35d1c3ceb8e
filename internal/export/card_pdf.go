package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/mansoorceksport/gymcard/internal/ethiopian"
	"github.com/mansoorceksport/gymcard/internal/service"
	"go.uber.org/zap"
)

// CR80 card size in millimetres
const (
	cardWidth  = 85.6
	cardHeight = 54.0

	maxImageBytes = 2 << 20
)

// Fetcher downloads remote images (QR code, profile photo)
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches images over HTTP with a bounded body size
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher with a short timeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// CardPDF renders member cards as printable CR80 PDFs
type CardPDF struct {
	fetcher Fetcher
	gymName string
	logger  *zap.Logger
}

func NewCardPDF(fetcher Fetcher, gymName string, logger *zap.Logger) *CardPDF {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CardPDF{fetcher: fetcher, gymName: gymName, logger: logger}
}

// Render draws one card. Images that cannot be fetched or decoded are left out: the
// photo slot shows the member's initials and the QR slot prints the scan URL.
func (e *CardPDF) Render(ctx context.Context, view *service.CardView) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: cardWidth, Ht: cardHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Member card "+view.ID, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header band
	pdf.SetFillColor(20, 33, 61)
	pdf.Rect(0, 0, cardWidth, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(4, 2)
	pdf.CellFormat(cardWidth-8, 6, tr(strings.ToUpper(e.gymName)), "", 0, "L", false, 0, "")

	// Badge
	r, g, b := badgeColor(string(view.Badge))
	pdf.SetFillColor(r, g, b)
	pdf.SetFont("Helvetica", "B", 6)
	pdf.SetXY(cardWidth-22, 3)
	pdf.CellFormat(18, 4, string(view.Badge), "", 0, "C", true, 0, "")

	// Photo
	if !e.placeImage(ctx, pdf, "photo", view.PhotoURL, 4, 13, 20, 24) {
		pdf.SetFillColor(225, 228, 235)
		pdf.Rect(4, 13, 20, 24, "F")
		pdf.SetTextColor(90, 90, 90)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetXY(4, 22)
		pdf.CellFormat(20, 6, initials(view.FirstName, view.LastName), "", 0, "C", false, 0, "")
	}

	// Details
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(27, 13)
	pdf.CellFormat(34, 5, tr(view.Name), "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	rows := [][2]string{
		{"Plan", view.Duration},
		{"Price", view.Price},
		{"Registered", latinDate(view.RegisterDate)},
		{"Expires", latinDate(view.ExpiryDate)},
		{"Status", view.Status},
	}
	for _, row := range rows {
		pdf.SetX(27)
		pdf.CellFormat(13, 3.6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(21, 3.6, tr(row[1]), "", 2, "L", false, 0, "")
	}

	// QR code
	if !e.placeImage(ctx, pdf, "qr", view.QRImageURL, cardWidth-24, 13, 20, 20) {
		pdf.SetFont("Helvetica", "", 4)
		pdf.SetXY(cardWidth-24, 13)
		pdf.MultiCell(20, 2, view.ScanURL, "1", "C", false)
	}

	// Footer
	pdf.SetFillColor(r, g, b)
	pdf.Rect(0, cardHeight-9, cardWidth, 9, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(0, cardHeight-7.5)
	pdf.CellFormat(cardWidth, 6, view.RemainingText, "", 0, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render card pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// placeImage fetches and draws an image; it reports false when nothing was drawn.
// Images are decoded before registration since a bad image leaves gofpdf in an
// error state for the rest of the document.
func (e *CardPDF) placeImage(ctx context.Context, pdf *gofpdf.Fpdf, name, url string, x, y, w, h float64) bool {
	if e.fetcher == nil || url == "" {
		return false
	}
	data, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.logger.Warn("card image fetch failed", zap.String("image", name), zap.Error(err))
		return false
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		e.logger.Warn("card image not decodable", zap.String("image", name), zap.Error(err))
		return false
	}

	opts := gofpdf.ImageOptions{ImageType: strings.ToUpper(format)}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if !pdf.Ok() {
		return false
	}
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return true
}

func badgeColor(badge string) (int, int, int) {
	switch badge {
	case "ACTIVE":
		return 30, 132, 73
	case "EXPIRED":
		return 192, 57, 43
	default:
		return 127, 140, 141
	}
}

func initials(first, last string) string {
	var out string
	for _, s := range []string{first, last} {
		if s = strings.TrimSpace(s); s != "" && s != "N/A" {
			out += strings.ToUpper(string([]rune(s)[0]))
		}
	}
	if out == "" || !isASCII(out) {
		return "?"
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

// latinDate renders "YYYY-MM-DD" as "DD Meskerem YYYY"; core PDF fonts have no Ethiopic glyphs.
func latinDate(s string) string {
	d, err := ethiopian.ParseDate(s)
	if err != nil {
		if s == "" {
			return "N/A"
		}
		return s
	}
	name, _ := ethiopian.MonthNameLatin(d.Month)
	return fmt.Sprintf("%02d %s %d", d.Day, name, d.Year)
}
