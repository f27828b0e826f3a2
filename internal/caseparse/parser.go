// Package caseparse turns heterogeneous portal payloads, HTML result tables
// or JSON bodies, into normalized case records.
package caseparse

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jagriti-dev/casesearch/internal/metrics"
	"github.com/jagriti-dev/casesearch/internal/portal"
)

// Default lookup strategies for the results table. Tried in order; the
// header-keyword scan is the fallback when no known selector matches.
var (
	DefaultTableSelectors = []string{
		"table.results",
		"table#case-results",
	}
	DefaultHeaderKeywords = []string{"case", "complainant", "respondent", "filing"}
)

// Date layouts tried in order when normalizing filing dates. Day-first with
// slash, dash, or dot separators, then ISO year-month-day.
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006-1-2",
}

// Config controls table location and link resolution.
type Config struct {
	BaseURL        string
	TableSelectors []string
	HeaderKeywords []string
}

// Parser extracts case records from portal responses. A malformed row or
// item is skipped, never fatal; an empty page yields an empty slice.
type Parser struct {
	cfg    Config
	logger *zap.Logger
}

// New constructs a Parser.
func New(cfg Config, logger *zap.Logger) *Parser {
	if len(cfg.TableSelectors) == 0 {
		cfg.TableSelectors = DefaultTableSelectors
	}
	if len(cfg.HeaderKeywords) == 0 {
		cfg.HeaderKeywords = DefaultHeaderKeywords
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{cfg: cfg, logger: logger}
}

// ParseHTML extracts case records from a portal result page. When no
// qualifying table exists the result is an empty slice, not an error.
func (p *Parser) ParseHTML(html string) []portal.CaseRecord {
	records := []portal.CaseRecord{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.logger.Warn("unparseable result page", zap.Error(err))
		return records
	}

	table := p.locateResultsTable(doc)
	if table == nil {
		return records
	}

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			// Header row.
			return
		}
		record, ok := p.parseRow(row)
		if !ok {
			metrics.ObserveRowSkipped()
			p.logger.Warn("skipping malformed result row", zap.Int("row", i))
			return
		}
		records = append(records, record)
	})

	return records
}

// ParseJSON reads a top-level "cases" array. Items that fail to decode are
// skipped, the rest of the batch survives.
func (p *Parser) ParseJSON(data []byte) ([]portal.CaseRecord, error) {
	var envelope struct {
		Cases []json.RawMessage `json:"cases"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode cases payload: %w", err)
	}

	records := make([]portal.CaseRecord, 0, len(envelope.Cases))
	for i, raw := range envelope.Cases {
		var record portal.CaseRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			metrics.ObserveRowSkipped()
			p.logger.Warn("skipping malformed case item", zap.Int("item", i), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// locateResultsTable walks the known selectors first, then falls back to
// scanning every table for a header row mentioning a case keyword.
func (p *Parser) locateResultsTable(doc *goquery.Document) *goquery.Selection {
	for _, selector := range p.cfg.TableSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}

	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if p.headerMentionsCases(table) {
			found = table
			return false
		}
		return true
	})
	return found
}

// headerMentionsCases reports whether the table's first row looks like a
// case-results header.
func (p *Parser) headerMentionsCases(table *goquery.Selection) bool {
	header := table.Find("tr").First()
	if header.Length() == 0 {
		return false
	}
	text := strings.ToLower(header.Text())
	for _, kw := range p.cfg.HeaderKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// parseRow maps a result row's cells positionally onto a CaseRecord. Rows
// with fewer than seven cells do not carry a full record and are rejected.
func (p *Parser) parseRow(row *goquery.Selection) (portal.CaseRecord, bool) {
	cells := row.Find("td, th")
	if cells.Length() < 7 {
		return portal.CaseRecord{}, false
	}

	record := portal.CaseRecord{
		CaseNumber:          cellText(cells.Eq(0)),
		CaseStage:           cellText(cells.Eq(1)),
		FilingDate:          NormalizeDate(cellText(cells.Eq(2))),
		Complainant:         cellText(cells.Eq(3)),
		ComplainantAdvocate: cellText(cells.Eq(4)),
		Respondent:          cellText(cells.Eq(5)),
		RespondentAdvocate:  cellText(cells.Eq(6)),
		DocumentLink:        p.documentLink(cells.Eq(0)),
	}
	return record, true
}

// documentLink pulls the first anchor out of a cell. Root-relative hrefs
// resolve against the portal base, absolute hrefs pass through, anything
// else (or no anchor at all) is an empty string.
func (p *Parser) documentLink(cell *goquery.Selection) string {
	href, ok := cell.Find("a").First().Attr("href")
	if !ok {
		return ""
	}
	switch {
	case strings.HasPrefix(href, "/"):
		return portal.ResolveReference(p.cfg.BaseURL, href)
	case strings.HasPrefix(href, "http"):
		return href
	default:
		return ""
	}
}

// cellText collapses a cell's text to single-space-separated words.
func cellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}

// NormalizeDate rewrites a filing date as ISO-8601 (YYYY-MM-DD) when one of
// the known layouts parses it. Unparseable text passes through trimmed, a
// placeholder is never substituted.
func NormalizeDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return trimmed
}
