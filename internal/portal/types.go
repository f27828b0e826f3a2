// Package portal defines the shared types, error kinds, and HTTP transport
// used to talk to the e-Jagriti case-search portal.
package portal

import "fmt"

// State is one entry of the portal's state selector. Name is the unique
// lookup key, stored uppercased.
type State struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Commission is a consumer commission within a state.
type Commission struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	StateID string `json:"state_id"`
}

// CaseRecord is one normalized case row returned by a search. FilingDate is
// ISO-8601 when the upstream text was parseable, otherwise the original
// trimmed text.
type CaseRecord struct {
	CaseNumber          string `json:"case_number"`
	CaseStage           string `json:"case_stage"`
	FilingDate          string `json:"filing_date"`
	Complainant         string `json:"complainant"`
	ComplainantAdvocate string `json:"complainant_advocate"`
	Respondent          string `json:"respondent"`
	RespondentAdvocate  string `json:"respondent_advocate"`
	DocumentLink        string `json:"document_link"`
}

// SearchType identifies which upstream form field a search value binds to.
type SearchType string

// The closed set of supported search kinds.
const (
	SearchCaseNumber          SearchType = "case_number"
	SearchComplainant         SearchType = "complainant"
	SearchRespondent          SearchType = "respondent"
	SearchComplainantAdvocate SearchType = "complainant_advocate"
	SearchRespondentAdvocate  SearchType = "respondent_advocate"
	SearchIndustryType        SearchType = "industry_type"
	SearchJudge               SearchType = "judge"
)

// searchFieldNames maps each search kind to the portal's form field name.
// Exactly one of these fields is active per submission.
var searchFieldNames = map[SearchType]string{
	SearchCaseNumber:          "case_no",
	SearchComplainant:         "complainant_name",
	SearchRespondent:          "respondent_name",
	SearchComplainantAdvocate: "complainant_advocate",
	SearchRespondentAdvocate:  "respondent_advocate",
	SearchIndustryType:        "industry_type",
	SearchJudge:               "judge_name",
}

// FieldName returns the portal form field bound to this search kind.
func (t SearchType) FieldName() (string, error) {
	name, ok := searchFieldNames[t]
	if !ok {
		return "", fmt.Errorf("unknown search type %q", string(t))
	}
	return name, nil
}

// Valid reports whether t is one of the supported search kinds.
func (t SearchType) Valid() bool {
	_, ok := searchFieldNames[t]
	return ok
}

// SearchQuery echoes the parameters a search ran with.
type SearchQuery struct {
	SearchType  SearchType `json:"search_type"`
	State       string     `json:"state"`
	Commission  string     `json:"commission"`
	SearchValue string     `json:"search_value"`
}

// SearchResult is the ordered outcome of one search request.
type SearchResult struct {
	Cases      []CaseRecord `json:"cases"`
	TotalCount int          `json:"total_count"`
	Query      SearchQuery  `json:"search_parameters"`
}
