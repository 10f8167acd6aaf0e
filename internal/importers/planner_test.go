package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func plannedContents(sections []PlannedSection) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Content)
	}
	return out
}

func plannedOrders(sections []PlannedSection) []int {
	out := make([]int, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Order)
	}
	return out
}

func TestBuildPlan_ImplicitAndExplicitOrdersMayCollide(t *testing.T) {
	plan := BuildPlan(ParseResult{Sections: []SectionFragment{
		{Content: "a"},
		{Content: "b", Order: intPtr(0)},
	}}, nil, "")

	require.Len(t, plan.Steps, 1)
	assert.Equal(t, []string{"a", "b"}, plannedContents(plan.Steps[0].Sections))
	assert.Equal(t, []int{0, 0}, plannedOrders(plan.Steps[0].Sections))
}

func TestBuildPlan_TargetAppendsEverything(t *testing.T) {
	target := uint(42)
	result := ParseResult{
		Campaigns: []CampaignFragment{
			{Title: "Ignored", Concept: strPtr("ignored"), Sections: []SectionFragment{{Content: "c1"}, {Content: "c2"}}},
		},
		Sections: []SectionFragment{{Content: "loose"}},
	}

	plan := BuildPlan(result, &target, "")

	require.Len(t, plan.Steps, 1)
	step := plan.Steps[0]
	assert.Equal(t, StepAppendSections, step.Kind)
	assert.Equal(t, uint(42), step.CampaignID)
	assert.Empty(t, step.Title)
	assert.Nil(t, step.Concept)
	assert.Equal(t, []string{"c1", "c2", "loose"}, plannedContents(step.Sections))
	assert.Equal(t, []int{0, 1, 2}, plannedOrders(step.Sections))
}

func TestBuildPlan_SingleCampaign(t *testing.T) {
	result := ParseResult{Campaigns: []CampaignFragment{{
		Title:      "Keep",
		TOC:        strPtr("toc"),
		SourceFile: "keep.json",
		Sections:   []SectionFragment{{Content: "a"}, {Content: "b"}},
	}}}

	plan := BuildPlan(result, nil, "")

	require.Len(t, plan.Steps, 1)
	step := plan.Steps[0]
	assert.Equal(t, StepCreateCampaign, step.Kind)
	assert.Equal(t, "Keep", step.Title)
	assert.Equal(t, "toc", *step.TOC)
	assert.Equal(t, "keep.json", step.SourceFile)
	assert.Equal(t, 2, plan.SectionCount())
}

func TestBuildPlan_CampaignsThenGenericCampaign(t *testing.T) {
	result := ParseResult{
		Campaigns: []CampaignFragment{
			{Title: "Intro", Sections: []SectionFragment{{Content: "a"}}},
			{Title: "Outro", Sections: []SectionFragment{{Content: "b"}}},
		},
		Sections: []SectionFragment{{Content: "root"}},
	}

	plan := BuildPlan(result, nil, "Uploads")

	require.Len(t, plan.Steps, 3)
	assert.Equal(t, "Intro", plan.Steps[0].Title)
	assert.Equal(t, "Outro", plan.Steps[1].Title)
	assert.Equal(t, "Uploads", plan.Steps[2].Title)
	assert.Equal(t, []string{"root"}, plannedContents(plan.Steps[2].Sections))
}

func TestBuildPlan_LooseSectionsUseDefaultTitle(t *testing.T) {
	result := ParseResult{Sections: []SectionFragment{{Content: "a"}}}

	plan := BuildPlan(result, nil, "")

	require.Len(t, plan.Steps, 1)
	assert.Equal(t, DefaultCampaignTitle, plan.Steps[0].Title)
}

func TestBuildPlan_NothingToImport(t *testing.T) {
	target := uint(7)

	assert.True(t, BuildPlan(ParseResult{}, nil, "").IsEmpty())
	assert.True(t, BuildPlan(ParseResult{}, &target, "").IsEmpty())
	assert.True(t, BuildPlan(ParseResult{Campaigns: []CampaignFragment{{Title: "x"}}}, &target, "").IsEmpty())
}

func TestBuildPlan_Ordering(t *testing.T) {
	tests := []struct {
		name         string
		sections     []SectionFragment
		wantContents []string
		wantOrders   []int
	}{
		{
			name:         "encounter order without explicit orders",
			sections:     []SectionFragment{{Content: "a"}, {Content: "b"}, {Content: "c"}},
			wantContents: []string{"a", "b", "c"},
			wantOrders:   []int{0, 1, 2},
		},
		{
			name: "explicit orders sort",
			sections: []SectionFragment{
				{Content: "third", Order: intPtr(9)},
				{Content: "first", Order: intPtr(1)},
				{Content: "second", Order: intPtr(5)},
			},
			wantContents: []string{"first", "second", "third"},
			wantOrders:   []int{1, 5, 9},
		},
		{
			name: "ties keep encounter order",
			sections: []SectionFragment{
				{Content: "a"},
				{Content: "b", Order: intPtr(0)},
				{Content: "c"},
				{Content: "d", Order: intPtr(1)},
			},
			wantContents: []string{"a", "b", "d", "c"},
			wantOrders:   []int{0, 0, 1, 2},
		},
		{
			name:         "explicit order persisted verbatim",
			sections:     []SectionFragment{{Content: "only", Order: intPtr(5)}},
			wantContents: []string{"only"},
			wantOrders:   []int{5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := BuildPlan(ParseResult{Sections: tt.sections}, nil, "")

			require.Len(t, plan.Steps, 1)
			assert.Equal(t, tt.wantContents, plannedContents(plan.Steps[0].Sections))
			assert.Equal(t, tt.wantOrders, plannedOrders(plan.Steps[0].Sections))
		})
	}
}
