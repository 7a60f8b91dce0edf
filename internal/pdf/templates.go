package pdf

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ReportPhotoView carries a fetchable URL for one photo on the rendered page.
type ReportPhotoView struct {
	URL     string
	Caption string
}

// ReportData is everything the report template needs.
type ReportData struct {
	Report      *domain.Report
	Customer    *domain.Customer
	Building    *domain.Building
	Branch      *domain.Branch
	Inspector   *domain.User
	Photos      []ReportPhotoView
	GeneratedAt time.Time
}

// OfferData is everything the offer template needs.
type OfferData struct {
	Offer       *domain.Offer
	Customer    *domain.Customer
	Branch      *domain.Branch
	GeneratedAt time.Time
}

var funcMap = template.FuncMap{
	"fmtDate": func(t time.Time) string {
		return t.Format("02.01.2006")
	},
	"fmtDatePtr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("02.01.2006")
	},
	"fmtMoney": func(d decimal.Decimal, currency string) string {
		return fmt.Sprintf("%s %s", d.StringFixed(2), currency)
	},
	"fmtQty": func(d decimal.Decimal) string {
		return d.String()
	},
	"severityLabel": func(s domain.FindingSeverity) string {
		switch s {
		case domain.SeverityLow:
			return "Low"
		case domain.SeverityMedium:
			return "Medium"
		case domain.SeverityHigh:
			return "High"
		case domain.SeverityCritical:
			return "Critical"
		default:
			return string(s)
		}
	},
	// nl2br escapes the text first, so only the inserted breaks are HTML.
	"nl2br": func(s string) template.HTML {
		escaped := template.HTMLEscapeString(s)
		return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
	},
}

// TemplateEngine holds the parsed document templates.
type TemplateEngine struct {
	tpl *template.Template
}

// NewTemplateEngine parses the embedded templates.
func NewTemplateEngine() (*TemplateEngine, error) {
	tpl, err := template.New("pdf").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing pdf templates: %w", err)
	}
	return &TemplateEngine{tpl: tpl}, nil
}

// ReportHTML renders the report document.
func (e *TemplateEngine) ReportHTML(data ReportData) (string, error) {
	var buf bytes.Buffer
	if err := e.tpl.ExecuteTemplate(&buf, "report.html.tmpl", data); err != nil {
		return "", fmt.Errorf("rendering report template: %w", err)
	}
	return buf.String(), nil
}

// OfferHTML renders the offer document.
func (e *TemplateEngine) OfferHTML(data OfferData) (string, error) {
	var buf bytes.Buffer
	if err := e.tpl.ExecuteTemplate(&buf, "offer.html.tmpl", data); err != nil {
		return "", fmt.Errorf("rendering offer template: %w", err)
	}
	return buf.String(), nil
}
