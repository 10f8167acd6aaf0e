package importers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedCampaign struct {
	id      uint
	ownerID uint
	title   string
	concept *string
}

type storedSection struct {
	id         uint
	campaignID uint
	title      *string
	content    string
	order      int
}

type stubStore struct {
	nextID    uint
	campaigns []storedCampaign
	sections  []storedSection

	failCampaigns map[string]bool
	failSections  map[string]bool
}

func newStubStore() *stubStore {
	return &stubStore{
		failCampaigns: map[string]bool{},
		failSections:  map[string]bool{},
	}
}

func (s *stubStore) CreateCampaign(_ context.Context, ownerID uint, title string, concept, _ *string) (uint, error) {
	if s.failCampaigns[title] {
		return 0, errors.New("disk full")
	}
	s.nextID++
	s.campaigns = append(s.campaigns, storedCampaign{id: s.nextID, ownerID: ownerID, title: title, concept: concept})
	return s.nextID, nil
}

func (s *stubStore) CreateSection(_ context.Context, campaignID uint, title *string, content string, order int) (uint, error) {
	if s.failSections[content] {
		return 0, errors.New("constraint violation")
	}
	s.nextID++
	s.sections = append(s.sections, storedSection{id: s.nextID, campaignID: campaignID, title: title, content: content, order: order})
	return s.nextID, nil
}

func (s *stubStore) sectionsOf(campaignID uint) []storedSection {
	var out []storedSection
	for _, sec := range s.sections {
		if sec.campaignID == campaignID {
			out = append(out, sec)
		}
	}
	return out
}

var _ CampaignStore = (*stubStore)(nil)

func TestPipeline_ImportJSON_Campaign(t *testing.T) {
	store := newStubStore()
	pipeline := NewPipeline(store, Options{})

	summary, err := pipeline.ImportJSON(context.Background(), Request{
		OwnerID: 3,
		Content: []byte(`{"title": "Keep", "concept": "c", "sections": [{"content": "a"}, {"content": "b"}, {"content": "c"}]}`),
	})

	require.NoError(t, err)
	assert.Equal(t, MessageSuccess, summary.Message)
	assert.Equal(t, 1, summary.ImportedCampaignsCount)
	assert.Equal(t, 3, summary.ImportedSectionsCount)
	assert.Empty(t, summary.Errors)
	require.Len(t, store.campaigns, 1)
	assert.Equal(t, uint(3), store.campaigns[0].ownerID)
	assert.Equal(t, "c", *store.campaigns[0].concept)
	assert.Equal(t, []uint{store.campaigns[0].id}, summary.CreatedCampaignIDs)
	assert.Empty(t, summary.UpdatedCampaignIDs)
}

func TestPipeline_ImportJSON_SectionArrayWithoutTarget(t *testing.T) {
	store := newStubStore()
	pipeline := NewPipeline(store, Options{DefaultCampaignTitle: "Uploads"})

	summary, err := pipeline.ImportJSON(context.Background(), Request{
		Content: []byte(`[{"content": "a"}, {"content": "b"}, {"content": "c"}, {"content": "d"}]`),
	})

	require.NoError(t, err)
	require.Len(t, store.campaigns, 1)
	assert.Equal(t, "Uploads", store.campaigns[0].title)
	assert.Len(t, summary.CreatedCampaignIDs, 1)
	assert.Equal(t, 4, summary.ImportedSectionsCount)

	sections := store.sectionsOf(store.campaigns[0].id)
	require.Len(t, sections, 4)
	for i, sec := range sections {
		assert.Equal(t, i, sec.order)
	}
	assert.Equal(t, "a", sections[0].content)
	assert.Equal(t, "d", sections[3].content)
}

func TestPipeline_ImportJSON_ExplicitOrderPersisted(t *testing.T) {
	store := newStubStore()
	pipeline := NewPipeline(store, Options{})

	_, err := pipeline.ImportJSON(context.Background(), Request{
		Content: []byte(`[{"content": "late", "order": 5}]`),
	})

	require.NoError(t, err)
	require.Len(t, store.sections, 1)
	assert.Equal(t, 5, store.sections[0].order)
}

func TestPipeline_ImportJSON_NotIdempotent(t *testing.T) {
	store := newStubStore()
	pipeline := NewPipeline(store, Options{})
	req := Request{Content: []byte(`{"title": "Twice", "sections": [{"content": "a"}]}`)}

	first, err := pipeline.ImportJSON(context.Background(), req)
	require.NoError(t, err)
	second, err := pipeline.ImportJSON(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, store.campaigns, 2)
	assert.NotEqual(t, first.CreatedCampaignIDs, second.CreatedCampaignIDs)
}

func TestPipeline_ImportJSON_MalformedDocument(t *testing.T) {
	store := newStubStore()
	pipeline := NewPipeline(store, Options{})

	summary, err := pipeline.ImportJSON(context.Background(), Request{Content: []byte(`{"title": }`)})

	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, 0, summary.ImportedCampaignsCount)
	assert.Equal(t, 0, summary.ImportedSectionsCount)
	assert.Len(t, summary.Errors, 1)
	assert.NotEmpty(t, summary.Message)
	assert.Equal(t, MessageFailed, summary.Message)
	assert.Empty(t, store.campaigns)
}

func TestPipeline_ImportJSON_EmptyArray(t *testing.T) {
	store := newStubStore()
	pipeline := NewPipeline(store, Options{})

	summary, err := pipeline.ImportJSON(context.Background(), Request{Content: []byte(`[]`)})

	require.NoError(t, err)
	assert.Equal(t, MessageSuccess, summary.Message)
	assert.Equal(t, 0, summary.ImportedCampaignsCount)
	assert.Empty(t, store.campaigns)
}

func TestPipeline_ImportZIP_MixedValidAndBrokenEntries(t *testing.T) {
	store := newStubStore()
	pipeline := NewPipeline(store, Options{})

	raw := buildZIP(t,
		zipEntry{name: "a.txt", data: "a"},
		zipEntry{name: "broken1.txt", data: invalidUTF8},
		zipEntry{name: "b.txt", data: "b"},
		zipEntry{name: "broken2.txt", data: invalidUTF8},
		zipEntry{name: "c.txt", data: "c"},
	)

	summary, err := pipeline.ImportZIP(context.Background(), Request{Content: raw})

	require.NoError(t, err)
	assert.Equal(t, 3, summary.ImportedSectionsCount)
	assert.Len(t, summary.Errors, 2)
	assert.Equal(t, "Import completed with 2 error(s)", summary.Message)
}

func TestPipeline_ImportZIP_FlatArchiveIsOneCampaign(t *testing.T) {
	store := newStubStore()
	pipeline := NewPipeline(store, Options{})

	raw := buildZIP(t,
		zipEntry{name: "campaign.json", data: `{"title": "Keep", "sections": [{"content": "a"}]}`},
		zipEntry{name: "notes.txt", data: "b"},
	)

	summary, err := pipeline.ImportZIP(context.Background(), Request{Content: raw})

	require.NoError(t, err)
	require.Len(t, store.campaigns, 1)
	assert.Equal(t, DefaultCampaignTitle, store.campaigns[0].title)
	assert.Nil(t, store.campaigns[0].concept)
	assert.Equal(t, 1, summary.ImportedCampaignsCount)
	assert.Equal(t, 2, summary.ImportedSectionsCount)

	sections := store.sectionsOf(store.campaigns[0].id)
	require.Len(t, sections, 2)
	assert.Equal(t, "a", sections[0].content)
	assert.Equal(t, "b", sections[1].content)
}

func TestPipeline_ImportZIP_Folders(t *testing.T) {
	store := newStubStore()
	pipeline := NewPipeline(store, Options{})

	raw := buildZIP(t,
		zipEntry{name: "Intro/a.txt", data: "a"},
		zipEntry{name: "Intro/b.txt", data: "b"},
		zipEntry{name: "Outro/c.txt", data: "c"},
	)

	summary, err := pipeline.ImportZIP(context.Background(), Request{Content: raw, ProcessFoldersAsStructure: true})

	require.NoError(t, err)
	require.Len(t, store.campaigns, 2)
	assert.Equal(t, "Intro", store.campaigns[0].title)
	assert.Equal(t, "Outro", store.campaigns[1].title)
	assert.Len(t, store.sectionsOf(store.campaigns[0].id), 2)
	assert.Len(t, store.sectionsOf(store.campaigns[1].id), 1)
	assert.Len(t, summary.CreatedCampaignIDs, 2)
	assert.Equal(t, 2, summary.ImportedCampaignsCount)
	assert.Equal(t, 3, summary.ImportedSectionsCount)
}

func TestPipeline_ImportZIP_IntoTarget(t *testing.T) {
	store := newStubStore()
	pipeline := NewPipeline(store, Options{})
	target := uint(99)

	raw := buildZIP(t,
		zipEntry{name: "one.txt", data: "1"},
		zipEntry{name: "broken.txt", data: invalidUTF8},
		zipEntry{name: "two.txt", data: "2"},
	)

	summary, err := pipeline.ImportZIP(context.Background(), Request{Content: raw, TargetCampaignID: &target})

	require.NoError(t, err)
	assert.Equal(t, []uint{99}, summary.UpdatedCampaignIDs)
	assert.Empty(t, summary.CreatedCampaignIDs)
	assert.Equal(t, 2, summary.ImportedSectionsCount)
	assert.Len(t, summary.Errors, 1)
	assert.Empty(t, store.campaigns)
	assert.Len(t, store.sectionsOf(99), 2)
}

func TestPipeline_ImportZIP_UnreadableArchive(t *testing.T) {
	pipeline := NewPipeline(newStubStore(), Options{})

	summary, err := pipeline.ImportZIP(context.Background(), Request{Content: []byte("nope")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUploadRejected))
	assert.Equal(t, MessageFailed, summary.Message)
	assert.Len(t, summary.Errors, 1)
}

func TestPipeline_Execute_CampaignFailureSkipsItsSections(t *testing.T) {
	store := newStubStore()
	store.failCampaigns["Broken"] = true
	pipeline := NewPipeline(store, Options{})

	plan := Plan{Steps: []Step{
		{Kind: StepCreateCampaign, Title: "Broken", SourceFile: "Broken/", Sections: []PlannedSection{{Content: "x"}}},
		{Kind: StepCreateCampaign, Title: "Fine", Sections: []PlannedSection{{Content: "y"}}},
	}}

	summary := pipeline.Execute(context.Background(), 1, plan)

	require.Len(t, summary.Errors, 1)
	detail := summary.Errors[0]
	require.NotNil(t, detail.FileName)
	assert.Equal(t, "Broken/", *detail.FileName)
	require.NotNil(t, detail.ItemIdentifier)
	assert.Equal(t, "Broken", *detail.ItemIdentifier)
	assert.Contains(t, detail.Error, "disk full")

	require.Len(t, store.sections, 1)
	assert.Equal(t, "y", store.sections[0].content)
	assert.Equal(t, 1, summary.ImportedCampaignsCount)
	assert.Equal(t, 1, summary.ImportedSectionsCount)
}

func TestPipeline_Execute_SectionFailuresAreRecorded(t *testing.T) {
	store := newStubStore()
	store.failSections["boom"] = true
	pipeline := NewPipeline(store, Options{})

	plan := Plan{Steps: []Step{{
		Kind:  StepCreateCampaign,
		Title: "Keep",
		Sections: []PlannedSection{
			{Content: "ok"},
			{Title: strPtr("Bad one"), Content: "boom", SourceFile: "bad.txt"},
		},
	}}}

	summary := pipeline.Execute(context.Background(), 1, plan)

	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "bad.txt", *summary.Errors[0].FileName)
	assert.Equal(t, "Bad one", *summary.Errors[0].ItemIdentifier)
	assert.Equal(t, 1, summary.ImportedSectionsCount)
	assert.Equal(t, "Import completed with 1 error(s)", summary.Message)
}

func TestPipeline_Execute_AppendWithNothingStored(t *testing.T) {
	store := newStubStore()
	store.failSections["boom"] = true
	pipeline := NewPipeline(store, Options{})

	plan := Plan{Steps: []Step{{
		Kind:       StepAppendSections,
		CampaignID: 5,
		Sections:   []PlannedSection{{Content: "boom"}},
	}}}

	summary := pipeline.Execute(context.Background(), 1, plan)

	assert.Empty(t, summary.UpdatedCampaignIDs)
	assert.Equal(t, MessageFailed, summary.Message)
}

func TestPipeline_ParseErrorsComeFirst(t *testing.T) {
	store := newStubStore()
	store.failSections["boom"] = true
	pipeline := NewPipeline(store, Options{})

	raw := buildZIP(t,
		zipEntry{name: "boom.txt", data: "boom"},
		zipEntry{name: "bad.txt", data: invalidUTF8},
	)

	summary, err := pipeline.ImportZIP(context.Background(), Request{Content: raw})

	require.NoError(t, err)
	require.Len(t, summary.Errors, 2)
	assert.Equal(t, "bad.txt", *summary.Errors[0].FileName)
	assert.Equal(t, "boom.txt", *summary.Errors[1].FileName)
}

func TestPipeline_Import_UnsupportedKind(t *testing.T) {
	pipeline := NewPipeline(newStubStore(), Options{})

	summary, err := pipeline.Import(context.Background(), ContentKind("csv"), Request{})

	assert.True(t, errors.Is(err, ErrUploadRejected))
	assert.Len(t, summary.Errors, 1)
}

func TestPipeline_Prepare_DoesNotPersist(t *testing.T) {
	store := newStubStore()
	pipeline := NewPipeline(store, Options{})

	plan, parseErrors, err := pipeline.Prepare(ContentKindJSON, Request{Content: []byte(`[{"content": "a"}]`)})

	require.NoError(t, err)
	assert.Empty(t, parseErrors)
	assert.Equal(t, 1, plan.SectionCount())
	assert.Empty(t, store.campaigns)
}

func TestImportSummary_JSONShape(t *testing.T) {
	data, err := json.Marshal(FailedSummary("", errors.New("bad")))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"message": "Import failed",
		"imported_campaigns_count": 0,
		"imported_sections_count": 0,
		"created_campaign_ids": [],
		"updated_campaign_ids": [],
		"errors": [{"file_name": null, "item_identifier": null, "error": "bad"}]
	}`, string(data))
}

func TestContentKindFromFileName(t *testing.T) {
	kind, ok := ContentKindFromFileName("Campaign.JSON")
	assert.True(t, ok)
	assert.Equal(t, ContentKindJSON, kind)

	kind, ok = ContentKindFromFileName("bundle.zip")
	assert.True(t, ok)
	assert.Equal(t, ContentKindZIP, kind)

	_, ok = ContentKindFromFileName("notes.txt")
	assert.False(t, ok)
}
