package ticket

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Data is what a booking ticket shows.
type Data struct {
	BookingID string
	TourName  string
	Customer  string
	Email     string
	Price     string
	Currency  string
	PaidAt    time.Time
}

// Generator renders booking tickets. The QR code carries the booking id and
// an HMAC so staff can verify a ticket offline.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	return &Generator{secret: []byte(secret)}
}

// Payload returns "<bookingID>|<signature>".
func (g *Generator) Payload(bookingID string) string {
	return bookingID + "|" + g.sign(bookingID)
}

// Verify checks a scanned payload and returns the booking id.
func (g *Generator) Verify(payload string) (string, bool) {
	id, sig, ok := strings.Cut(payload, "|")
	if !ok || id == "" {
		return "", false
	}
	return id, hmac.Equal([]byte(sig), []byte(g.sign(id)))
}

func (g *Generator) sign(bookingID string) string {
	h := hmac.New(sha256.New, g.secret)
	h.Write([]byte(bookingID))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Render produces the PDF.
func (g *Generator) Render(d Data) ([]byte, error) {
	qrPNG, err := qrcode.Encode(g.Payload(d.BookingID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("TropHarbour ticket "+d.BookingID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "TropHarbour Tour Ticket")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	rows := [][2]string{
		{"Tour", d.TourName},
		{"Name", d.Customer},
		{"Email", d.Email},
		{"Price", strings.TrimSpace(d.Price + " " + strings.ToUpper(d.Currency))},
		{"Booking", d.BookingID},
	}
	if !d.PaidAt.IsZero() {
		rows = append(rows, [2]string{"Paid", d.PaidAt.UTC().Format("02 Jan 2006 15:04 MST")})
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, row := range rows {
		pdf.CellFormat(30, 8, row[0]+":", "", 0, "", false, 0, "")
		pdf.CellFormat(0, 8, tr(row[1]), "", 1, "", false, 0, "")
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 45, 45, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
