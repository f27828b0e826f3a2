// Package jurisdiction resolves human-readable state and commission names
// into portal-internal identifiers, caching loads for the process lifetime.
package jurisdiction

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jagriti-dev/casesearch/internal/metrics"
	"github.com/jagriti-dev/casesearch/internal/portal"
)

// Default selector candidates for the jurisdiction dropdowns. The portal's
// markup is not contractually stable, so each lookup walks an ordered
// strategy chain until a selector matches.
var (
	DefaultStateSelectors = []string{
		`select[name="state"]`,
		`select#state`,
	}
	DefaultCommissionSelectors = []string{
		`select[name="commission"]`,
		`select#commission`,
		`select[name="dcdrc"]`,
	}
)

// Config controls directory behavior.
type Config struct {
	SearchURL           string
	CourtType           string
	StateSelectors      []string
	CommissionSelectors []string
}

// Directory loads and caches the portal's state and commission selectors.
// Both caches are append-only for the life of the process: entries are
// written whole, never mutated in place, and never evicted.
type Directory struct {
	client   portal.Executor
	sentinel *portal.Sentinel
	cfg      Config
	logger   *zap.Logger

	mu          sync.RWMutex
	states      map[string]portal.State
	commissions map[string][]portal.Commission
}

// New constructs a Directory with empty caches.
func New(client portal.Executor, sentinel *portal.Sentinel, cfg Config, logger *zap.Logger) *Directory {
	if cfg.CourtType == "" {
		cfg.CourtType = "DCDRC"
	}
	if len(cfg.StateSelectors) == 0 {
		cfg.StateSelectors = DefaultStateSelectors
	}
	if len(cfg.CommissionSelectors) == 0 {
		cfg.CommissionSelectors = DefaultCommissionSelectors
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		client:      client,
		sentinel:    sentinel,
		cfg:         cfg,
		logger:      logger,
		states:      make(map[string]portal.State),
		commissions: make(map[string][]portal.Commission),
	}
}

// ListStates returns the cached states, loading them from the portal on
// first use. States are ordered by name.
func (d *Directory) ListStates(ctx context.Context) ([]portal.State, error) {
	d.mu.RLock()
	cached := len(d.states) > 0
	d.mu.RUnlock()
	if !cached {
		if err := d.loadStates(ctx); err != nil {
			return nil, err
		}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]portal.State, 0, len(d.states))
	for _, s := range d.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListCommissions returns the commissions for stateID, fetching and caching
// them on first use.
func (d *Directory) ListCommissions(ctx context.Context, stateID string) ([]portal.Commission, error) {
	d.mu.RLock()
	cached, ok := d.commissions[stateID]
	d.mu.RUnlock()
	if ok {
		return cached, nil
	}

	params := map[string]string{
		"state": stateID,
		"court": d.cfg.CourtType,
	}
	_, html, err := d.client.Execute(ctx, http.MethodGet, d.cfg.SearchURL, params)
	if err != nil {
		return nil, fmt.Errorf("fetch commissions page: %w", err)
	}
	if d.sentinel.IsChallenged(html) {
		metrics.ObserveChallenge()
		return nil, fmt.Errorf("loading commissions for state %s: %w", stateID, portal.ErrChallenged)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse commissions page: %w", err)
	}

	var commissions []portal.Commission
	if sel := firstMatch(doc, d.cfg.CommissionSelectors); sel != nil {
		sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
			id, _ := opt.Attr("value")
			name := strings.TrimSpace(opt.Text())
			if id == "" || name == "" {
				return
			}
			commissions = append(commissions, portal.Commission{
				ID:      id,
				Name:    name,
				StateID: stateID,
			})
		})
	}
	if len(commissions) == 0 {
		return nil, fmt.Errorf("no commissions parsed for state %s: %w", stateID, portal.ErrEmptyResult)
	}

	// Whole-entry insert. A concurrent load of the same state simply
	// overwrites with equivalent upstream data.
	d.mu.Lock()
	d.commissions[stateID] = commissions
	d.mu.Unlock()

	d.logger.Info("loaded commissions",
		zap.String("state_id", stateID),
		zap.Int("count", len(commissions)),
	)
	return commissions, nil
}

// ResolveState maps a state name to its cached entry. Matching is
// case-insensitive and exact; there is no fuzzy fallback, a near miss is
// not found.
func (d *Directory) ResolveState(ctx context.Context, name string) (portal.State, error) {
	d.mu.RLock()
	empty := len(d.states) == 0
	d.mu.RUnlock()
	if empty {
		if err := d.loadStates(ctx); err != nil {
			return portal.State{}, err
		}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if s, ok := d.states[strings.ToUpper(name)]; ok {
		return s, nil
	}
	return portal.State{}, portal.NewInputError("state %q not found", name)
}

// ResolveCommission maps a commission name to its entry within a state.
// Matching is case-insensitive, trimmed, and exact, scoped to that state's
// commission list.
func (d *Directory) ResolveCommission(ctx context.Context, stateID, name string) (portal.Commission, error) {
	commissions, err := d.ListCommissions(ctx, stateID)
	if err != nil {
		return portal.Commission{}, err
	}

	target := strings.ToLower(strings.TrimSpace(name))
	for _, c := range commissions {
		if strings.ToLower(strings.TrimSpace(c.Name)) == target {
			return c, nil
		}
	}
	return portal.Commission{}, portal.NewInputError("commission %q not found for state %s", name, stateID)
}

// loadStates fetches the search entry page and caches its state selector.
func (d *Directory) loadStates(ctx context.Context) error {
	_, html, err := d.client.Execute(ctx, http.MethodGet, d.cfg.SearchURL, nil)
	if err != nil {
		return fmt.Errorf("fetch states page: %w", err)
	}
	if d.sentinel.IsChallenged(html) {
		metrics.ObserveChallenge()
		return fmt.Errorf("loading states: %w", portal.ErrChallenged)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse states page: %w", err)
	}

	states := make(map[string]portal.State)
	if sel := firstMatch(doc, d.cfg.StateSelectors); sel != nil {
		sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
			id, _ := opt.Attr("value")
			name := strings.ToUpper(strings.TrimSpace(opt.Text()))
			if id == "" || name == "" {
				return
			}
			states[name] = portal.State{ID: id, Name: name}
		})
	}
	if len(states) == 0 {
		return fmt.Errorf("no states parsed from entry page: %w", portal.ErrEmptyResult)
	}

	d.mu.Lock()
	d.states = states
	d.mu.Unlock()

	d.logger.Info("loaded states", zap.Int("count", len(states)))
	return nil
}

// firstMatch walks the selector candidates in order and returns the first
// non-empty match, or nil when none of them hit.
func firstMatch(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, s := range selectors {
		if s == "" {
			continue
		}
		if sel := doc.Find(s).First(); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}
