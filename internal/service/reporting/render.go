package reporting

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jobh/imoveis/internal/domain/finance"
)

//go:embed templates/*.html
var templateFS embed.FS

var documents = template.Must(template.New("documents").Funcs(template.FuncMap{
	"brl":      finance.FormatBRL,
	"percent":  finance.FormatPercent,
	"negative": func(d decimal.Decimal) bool { return d.IsNegative() },
	"neg":      func(d decimal.Decimal) decimal.Decimal { return d.Neg() },
	"date":     func(t time.Time) string { return t.Format("02/01/2006") },
	"datetime": func(t time.Time) string { return t.Format("02/01/2006 15:04") },
	"qrSrc":    qrSrc,
	"tag":      periodTag,
}).ParseFS(templateFS, "templates/*.html"))

// RenderReceipt writes the receipt as a printable HTML page.
func RenderReceipt(w io.Writer, r Receipt) error {
	return render(w, "receipt.html", r)
}

// RenderStatement writes the owner statement as a printable HTML page.
func RenderStatement(w io.Writer, st Statement) error {
	return render(w, "statement.html", st)
}

// RenderRepasse writes the transfer list as a printable HTML page.
func RenderRepasse(w io.Writer, list RepasseList) error {
	return render(w, "repasse.html", list)
}

func render(w io.Writer, name string, data any) error {
	if err := documents.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// qrSrc turns a stored base64 PNG into an image source, or "" when it does not decode.
func qrSrc(encoded string) template.URL {
	encoded = strings.TrimPrefix(strings.TrimSpace(encoded), "data:image/png;base64,")
	if encoded == "" {
		return ""
	}
	if _, err := base64.StdEncoding.DecodeString(encoded); err != nil {
		return ""
	}
	return template.URL("data:image/png;base64," + encoded)
}

// periodTag renders a period as "MAR-25".
func periodTag(month string, year int) string {
	runes := []rune(strings.ToUpper(month))
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return fmt.Sprintf("%s-%02d", string(runes), year%100)
}
