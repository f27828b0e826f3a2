// Package searchform emulates the portal's advanced-search form submission.
// The form's action, method, and hidden fields are discovered per call; the
// portal's markup is not contractually stable, so nothing about the form is
// hardcoded beyond the filter names it is known to accept.
package searchform

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jagriti-dev/casesearch/internal/portal"
)

// Config controls form discovery and submission.
type Config struct {
	BaseURL    string
	SearchURL  string
	CourtType  string
	OrderType  string
	DateFilter string
}

// Emulator discovers and submits the portal's case-search form.
type Emulator struct {
	client portal.Executor
	cfg    Config
	logger *zap.Logger
}

// New constructs an Emulator.
func New(client portal.Executor, cfg Config, logger *zap.Logger) *Emulator {
	if cfg.CourtType == "" {
		cfg.CourtType = "DCDRC"
	}
	if cfg.OrderType == "" {
		cfg.OrderType = "daily_order"
	}
	if cfg.DateFilter == "" {
		cfg.DateFilter = "filing_date"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emulator{client: client, cfg: cfg, logger: logger}
}

// Submit runs one search submission: fetch the entry page, discover the
// first form, overlay the required filters plus exactly one dynamic
// fieldName/fieldValue pair, and submit. The raw response text is returned
// unparsed.
func (e *Emulator) Submit(ctx context.Context, stateID, commissionID, fieldName, fieldValue string) (string, error) {
	_, pageHTML, err := e.client.Execute(ctx, http.MethodGet, e.cfg.SearchURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch search entry page: %w", err)
	}

	action, method, formData := e.discoverForm(pageHTML)

	formData["state"] = stateID
	formData["commission"] = commissionID
	formData["court_type"] = e.cfg.CourtType
	formData["order_type"] = e.cfg.OrderType
	formData["date_filter"] = e.cfg.DateFilter
	formData[fieldName] = fieldValue

	e.logger.Debug("submitting search form",
		zap.String("action", action),
		zap.String("method", method),
		zap.String("field", fieldName),
	)

	_, body, err := e.client.Execute(ctx, method, action, formData)
	if err != nil {
		return "", fmt.Errorf("submit search form: %w", err)
	}
	return body, nil
}

// discoverForm locates the first form on the entry page and collects its
// hidden and text inputs, first occurrence of a name winning. When no form
// is present the submission defaults to a POST against the entry URL.
func (e *Emulator) discoverForm(pageHTML string) (action, method string, formData map[string]string) {
	action = e.cfg.SearchURL
	method = http.MethodPost
	formData = make(map[string]string)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		e.logger.Warn("unparseable entry page, submitting against entry URL", zap.Error(err))
		return action, method, formData
	}
	form := doc.Find("form").First()
	if form.Length() == 0 {
		return action, method, formData
	}

	if attr, ok := form.Attr("action"); ok && strings.TrimSpace(attr) != "" {
		action = portal.ResolveReference(e.cfg.BaseURL, attr)
	}
	if attr, ok := form.Attr("method"); ok && strings.TrimSpace(attr) != "" {
		method = strings.ToUpper(strings.TrimSpace(attr))
	}

	form.Find("input").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		inputType, _ := input.Attr("type")
		switch strings.ToLower(inputType) {
		case "hidden", "text":
		default:
			return
		}
		if _, seen := formData[name]; seen {
			return
		}
		value, _ := input.Attr("value")
		formData[name] = value
	})

	return action, method, formData
}
