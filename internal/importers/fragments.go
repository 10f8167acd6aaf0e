package importers

import "fmt"

// SectionFragment is one unit of narrative content extracted from an upload
// and not yet persisted.
type SectionFragment struct {
	Title   *string
	Content string
	Order   *int

	// SourceFile is the archive entry the fragment came from. Empty for
	// single-document uploads.
	SourceFile string
}

// CampaignFragment is a whole campaign taken from a JSON object or inferred
// from a top-level archive folder.
type CampaignFragment struct {
	Title    string
	Concept  *string
	TOC      *string
	Sections []SectionFragment

	// SourceFile is the .json entry name or the folder ("Intro/") the
	// campaign was inferred from.
	SourceFile string
}

// ParseResult is what a parser hands to the planner. Campaigns and loose
// Sections are decided once here and never re-inspected downstream.
type ParseResult struct {
	Campaigns []CampaignFragment
	Sections  []SectionFragment

	// Errors holds non-fatal per-entry failures, in entry order.
	Errors []ImportErrorDetail
}

// IsEmpty reports whether the parse produced nothing to persist.
func (r ParseResult) IsEmpty() bool {
	return len(r.Campaigns) == 0 && len(r.Sections) == 0
}

// merge appends everything from other, keeping encounter order.
func (r *ParseResult) merge(other ParseResult) {
	r.Campaigns = append(r.Campaigns, other.Campaigns...)
	r.Sections = append(r.Sections, other.Sections...)
	r.Errors = append(r.Errors, other.Errors...)
}

// flatten turns campaign fragments into loose sections, dropping their
// title, concept and TOC. Campaign sections come first, in fragment order.
func (r ParseResult) flatten() ParseResult {
	if len(r.Campaigns) == 0 {
		return r
	}
	var sections []SectionFragment
	for _, campaign := range r.Campaigns {
		sections = append(sections, campaign.Sections...)
	}
	return ParseResult{
		Sections: append(sections, r.Sections...),
		Errors:   r.Errors,
	}
}

// ImportErrorDetail describes one item that could not be imported.
type ImportErrorDetail struct {
	FileName       *string `json:"file_name"`
	ItemIdentifier *string `json:"item_identifier"`
	Error          string  `json:"error"`
}

func newErrorDetail(fileName, identifier, msg string) ImportErrorDetail {
	return ImportErrorDetail{
		FileName:       optionalString(fileName),
		ItemIdentifier: optionalString(identifier),
		Error:          msg,
	}
}

// ImportSummary is the response value of one import invocation.
type ImportSummary struct {
	Message                string              `json:"message"`
	ImportedCampaignsCount int                 `json:"imported_campaigns_count"`
	ImportedSectionsCount  int                 `json:"imported_sections_count"`
	CreatedCampaignIDs     []uint              `json:"created_campaign_ids"`
	UpdatedCampaignIDs     []uint              `json:"updated_campaign_ids"`
	Errors                 []ImportErrorDetail `json:"errors"`
}

// Summary messages.
const (
	MessageSuccess = "Import completed successfully"
	MessageFailed  = "Import failed"
)

func newSummary() ImportSummary {
	return ImportSummary{
		CreatedCampaignIDs: []uint{},
		UpdatedCampaignIDs: []uint{},
		Errors:             []ImportErrorDetail{},
	}
}

// FailedSummary builds the summary of an import that could not start or whose
// single document was unusable: nothing persisted, one error.
func FailedSummary(fileName string, err error) ImportSummary {
	summary := newSummary()
	summary.Errors = append(summary.Errors, newErrorDetail(fileName, "", err.Error()))
	summary.finalize()
	return summary
}

func (s *ImportSummary) addError(detail ImportErrorDetail) {
	s.Errors = append(s.Errors, detail)
}

func (s *ImportSummary) markCreated(id uint) {
	s.CreatedCampaignIDs = appendUnique(s.CreatedCampaignIDs, id)
	s.ImportedCampaignsCount++
}

func (s *ImportSummary) markUpdated(id uint) {
	s.UpdatedCampaignIDs = appendUnique(s.UpdatedCampaignIDs, id)
}

// HasErrors reports whether any item failed.
func (s ImportSummary) HasErrors() bool {
	return len(s.Errors) > 0
}

func (s *ImportSummary) finalize() {
	switch {
	case len(s.Errors) == 0:
		s.Message = MessageSuccess
	case s.ImportedCampaignsCount == 0 && s.ImportedSectionsCount == 0:
		s.Message = MessageFailed
	default:
		s.Message = fmt.Sprintf("Import completed with %d error(s)", len(s.Errors))
	}
}

func appendUnique(ids []uint, id uint) []uint {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
