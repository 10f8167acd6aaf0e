package importers

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// CampaignStore persists campaigns and sections. Each call is its own unit
// of work; the pipeline never rolls back earlier calls.
type CampaignStore interface {
	CreateCampaign(ctx context.Context, ownerID uint, title string, concept, toc *string) (uint, error)
	CreateSection(ctx context.Context, campaignID uint, title *string, content string, order int) (uint, error)
}

// ContentKind identifies the upload format.
type ContentKind string

const (
	ContentKindJSON ContentKind = "json"
	ContentKindZIP  ContentKind = "zip"
)

// ContentKindFromFileName maps a file extension to a content kind.
func ContentKindFromFileName(name string) (ContentKind, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case extJSON:
		return ContentKindJSON, true
	case ".zip":
		return ContentKindZIP, true
	default:
		return "", false
	}
}

// Request is one import invocation.
type Request struct {
	Content          []byte
	OwnerID          uint
	TargetCampaignID *uint

	// ProcessFoldersAsStructure applies to ZIP uploads only.
	ProcessFoldersAsStructure bool
}

// Options configures a Pipeline.
type Options struct {
	DefaultCampaignTitle string
	MaxEntrySize         int64
}

// Pipeline runs parse, plan and execute for one upload at a time. It holds no
// per-import state and can be shared between goroutines as long as the store
// can.
type Pipeline struct {
	store        CampaignStore
	defaultTitle string
	maxEntrySize int64
}

// NewPipeline creates a new import pipeline persisting through store.
func NewPipeline(store CampaignStore, opts Options) *Pipeline {
	title := opts.DefaultCampaignTitle
	if title == "" {
		title = DefaultCampaignTitle
	}
	return &Pipeline{
		store:        store,
		defaultTitle: title,
		maxEntrySize: opts.MaxEntrySize,
	}
}

// Import dispatches on kind. The returned error is non-nil only when the
// whole upload was unusable; the summary is always populated.
func (p *Pipeline) Import(ctx context.Context, kind ContentKind, req Request) (ImportSummary, error) {
	switch kind {
	case ContentKindJSON:
		return p.ImportJSON(ctx, req)
	case ContentKindZIP:
		return p.ImportZIP(ctx, req)
	default:
		err := fmt.Errorf("%w: unsupported content kind %q", ErrUploadRejected, kind)
		return FailedSummary("", err), err
	}
}

// ImportJSON imports a single JSON document.
func (p *Pipeline) ImportJSON(ctx context.Context, req Request) (ImportSummary, error) {
	return p.run(ctx, ContentKindJSON, req)
}

// ImportZIP imports a ZIP archive of .txt and .json entries.
func (p *Pipeline) ImportZIP(ctx context.Context, req Request) (ImportSummary, error) {
	return p.run(ctx, ContentKindZIP, req)
}

// Prepare parses and plans without persisting anything. Parse-level entry
// errors are returned alongside the plan.
func (p *Pipeline) Prepare(kind ContentKind, req Request) (Plan, []ImportErrorDetail, error) {
	result, err := p.parse(kind, req)
	if err != nil {
		return Plan{}, nil, err
	}
	return BuildPlan(result, req.TargetCampaignID, p.defaultTitle), result.Errors, nil
}

func (p *Pipeline) run(ctx context.Context, kind ContentKind, req Request) (ImportSummary, error) {
	plan, parseErrors, err := p.Prepare(kind, req)
	if err != nil {
		return FailedSummary("", err), err
	}
	return p.execute(ctx, req.OwnerID, plan, parseErrors), nil
}

func (p *Pipeline) parse(kind ContentKind, req Request) (ParseResult, error) {
	switch kind {
	case ContentKindJSON:
		return ParseJSON(req.Content)
	case ContentKindZIP:
		return ParseZIP(req.Content, ZIPOptions{
			ProcessFoldersAsStructure: req.ProcessFoldersAsStructure,
			HasTarget:                 req.TargetCampaignID != nil,
			MaxEntrySize:              p.maxEntrySize,
		})
	default:
		return ParseResult{}, fmt.Errorf("%w: unsupported content kind %q", ErrUploadRejected, kind)
	}
}

// Execute applies plan through the store and aggregates every outcome into
// a summary. Failures are recorded and never stop the remaining steps.
func (p *Pipeline) Execute(ctx context.Context, ownerID uint, plan Plan) ImportSummary {
	return p.execute(ctx, ownerID, plan, nil)
}

func (p *Pipeline) execute(ctx context.Context, ownerID uint, plan Plan, parseErrors []ImportErrorDetail) ImportSummary {
	summary := newSummary()
	for _, detail := range parseErrors {
		summary.addError(detail)
	}

	for _, step := range plan.Steps {
		switch step.Kind {
		case StepCreateCampaign:
			id, err := p.store.CreateCampaign(ctx, ownerID, step.Title, step.Concept, step.TOC)
			if err != nil {
				summary.addError(newErrorDetail(step.SourceFile, step.Title,
					fmt.Sprintf("failed to create campaign: %v", err)))
				continue
			}
			summary.markCreated(id)
			p.attachSections(ctx, id, step.Sections, &summary)

		case StepAppendSections:
			if p.attachSections(ctx, step.CampaignID, step.Sections, &summary) > 0 {
				summary.markUpdated(step.CampaignID)
			}
		}
	}

	summary.finalize()
	return summary
}

// attachSections persists sections one by one and returns how many were
// stored.
func (p *Pipeline) attachSections(ctx context.Context, campaignID uint, sections []PlannedSection, summary *ImportSummary) int {
	stored := 0
	for _, section := range sections {
		if _, err := p.store.CreateSection(ctx, campaignID, section.Title, section.Content, section.Order); err != nil {
			identifier := ""
			if section.Title != nil {
				identifier = *section.Title
			}
			summary.addError(newErrorDetail(section.SourceFile, identifier,
				fmt.Sprintf("failed to create section: %v", err)))
			continue
		}
		stored++
		summary.ImportedSectionsCount++
	}
	return stored
}
