// Package pipeline orchestrates jurisdiction resolution, form submission,
// challenge checks, and parsing into one search cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jagriti-dev/casesearch/internal/caseparse"
	"github.com/jagriti-dev/casesearch/internal/jurisdiction"
	"github.com/jagriti-dev/casesearch/internal/metrics"
	"github.com/jagriti-dev/casesearch/internal/portal"
	"github.com/jagriti-dev/casesearch/internal/searchform"
)

// Pipeline is the downstream boundary handed to the routing layer. It does
// not retry across stages; retry lives inside the portal client's
// transport policy.
type Pipeline struct {
	directory *jurisdiction.Directory
	emulator  *searchform.Emulator
	parser    *caseparse.Parser
	sentinel  *portal.Sentinel
	logger    *zap.Logger
}

// New constructs a Pipeline.
func New(
	directory *jurisdiction.Directory,
	emulator *searchform.Emulator,
	parser *caseparse.Parser,
	sentinel *portal.Sentinel,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		directory: directory,
		emulator:  emulator,
		parser:    parser,
		sentinel:  sentinel,
		logger:    logger,
	}
}

// ListStates returns every state the portal knows, loading the cache on
// first use.
func (p *Pipeline) ListStates(ctx context.Context) ([]portal.State, error) {
	return p.directory.ListStates(ctx)
}

// ListCommissions returns the commissions registered under stateID.
func (p *Pipeline) ListCommissions(ctx context.Context, stateID string) ([]portal.Commission, error) {
	return p.directory.ListCommissions(ctx, stateID)
}

// SearchCases runs one full search cycle: resolve the state, resolve the
// commission within it, submit the search form, check the response for an
// anti-automation challenge, and parse the result table.
func (p *Pipeline) SearchCases(
	ctx context.Context,
	searchType portal.SearchType,
	stateName, commissionName, searchValue string,
) (result portal.SearchResult, err error) {
	defer func() { metrics.ObserveSearch(outcome(err)) }()

	fieldName, err := searchType.FieldName()
	if err != nil {
		return portal.SearchResult{}, portal.NewInputError("unsupported search type %q", string(searchType))
	}

	state, err := p.directory.ResolveState(ctx, stateName)
	if err != nil {
		return portal.SearchResult{}, err
	}

	commission, err := p.directory.ResolveCommission(ctx, state.ID, commissionName)
	if err != nil {
		return portal.SearchResult{}, err
	}

	html, err := p.emulator.Submit(ctx, state.ID, commission.ID, fieldName, searchValue)
	if err != nil {
		return portal.SearchResult{}, err
	}

	if p.sentinel.IsChallenged(html) {
		metrics.ObserveChallenge()
		return portal.SearchResult{}, fmt.Errorf("search for %q: %w", searchValue, portal.ErrChallenged)
	}

	cases := p.parser.ParseHTML(html)
	p.logger.Info("search completed",
		zap.String("search_type", string(searchType)),
		zap.String("state", state.Name),
		zap.String("commission", commission.Name),
		zap.Int("cases", len(cases)),
	)

	return portal.SearchResult{
		Cases:      cases,
		TotalCount: len(cases),
		Query: portal.SearchQuery{
			SearchType:  searchType,
			State:       stateName,
			Commission:  commissionName,
			SearchValue: searchValue,
		},
	}, nil
}

// outcome buckets a terminal error into the metric label set.
func outcome(err error) string {
	var inputErr *portal.InputError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, portal.ErrChallenged):
		return "blocked"
	case errors.As(err, &inputErr):
		return "not_found"
	default:
		return "internal"
	}
}
