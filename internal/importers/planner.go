package importers

import "sort"

// DefaultCampaignTitle names the campaign created for loose sections when no
// target campaign is given.
const DefaultCampaignTitle = "Imported campaign"

// StepKind is the persistence action a plan step performs.
type StepKind string

const (
	StepCreateCampaign StepKind = "create_campaign"
	StepAppendSections StepKind = "append_sections"
)

// PlannedSection is a section with its final persisted order.
type PlannedSection struct {
	Title      *string
	Content    string
	Order      int
	SourceFile string
}

// Step is one unit of work for the executor. CampaignID is set only for
// append steps; Title, Concept and TOC only for create steps.
type Step struct {
	Kind       StepKind
	CampaignID uint
	Title      string
	Concept    *string
	TOC        *string
	SourceFile string
	Sections   []PlannedSection
}

// Plan is an ordered list of steps. An empty plan imports nothing.
type Plan struct {
	Steps []Step
}

// IsEmpty reports whether the plan has no steps.
func (p Plan) IsEmpty() bool {
	return len(p.Steps) == 0
}

// SectionCount returns the number of sections across all steps.
func (p Plan) SectionCount() int {
	n := 0
	for _, step := range p.Steps {
		n += len(step.Sections)
	}
	return n
}

// BuildPlan decides which campaigns to create and where each section goes.
//
// With a target every section (campaign sections first, in fragment order,
// then loose sections) is appended to it and campaign metadata is dropped.
// Without a target each campaign fragment gets its own create step and loose
// sections go to one extra campaign titled defaultTitle, planned last.
func BuildPlan(result ParseResult, target *uint, defaultTitle string) Plan {
	if defaultTitle == "" {
		defaultTitle = DefaultCampaignTitle
	}

	if target != nil {
		var fragments []SectionFragment
		for _, campaign := range result.Campaigns {
			fragments = append(fragments, campaign.Sections...)
		}
		fragments = append(fragments, result.Sections...)
		if len(fragments) == 0 {
			return Plan{}
		}
		return Plan{Steps: []Step{{
			Kind:       StepAppendSections,
			CampaignID: *target,
			Sections:   orderSections(fragments),
		}}}
	}

	var plan Plan
	for _, campaign := range result.Campaigns {
		plan.Steps = append(plan.Steps, Step{
			Kind:       StepCreateCampaign,
			Title:      campaign.Title,
			Concept:    campaign.Concept,
			TOC:        campaign.TOC,
			SourceFile: campaign.SourceFile,
			Sections:   orderSections(campaign.Sections),
		})
	}
	if len(result.Sections) > 0 {
		plan.Steps = append(plan.Steps, Step{
			Kind:     StepCreateCampaign,
			Title:    defaultTitle,
			Sections: orderSections(result.Sections),
		})
	}
	return plan
}

// orderSections assigns each fragment its explicit order, or its encounter
// index when none was given, and sorts stably by that value.
func orderSections(fragments []SectionFragment) []PlannedSection {
	planned := make([]PlannedSection, len(fragments))
	for i, f := range fragments {
		order := i
		if f.Order != nil {
			order = *f.Order
		}
		planned[i] = PlannedSection{
			Title:      f.Title,
			Content:    f.Content,
			Order:      order,
			SourceFile: f.SourceFile,
		}
	}
	sort.SliceStable(planned, func(a, b int) bool {
		return planned[a].Order < planned[b].Order
	})
	return planned
}
