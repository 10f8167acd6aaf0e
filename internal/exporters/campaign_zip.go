// Package exporters turns stored campaigns into downloadable archives.
package exporters

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/mrlokans/campaigner/internal/entities"
)

// DocumentFileName is the archive entry holding the re-importable campaign.
const DocumentFileName = "campaign.json"

const sectionsDir = "sections/"

// CampaignDocument is the import document shape: a campaign object with
// "title", optional "concept" and "toc", and ordered "sections".
type CampaignDocument struct {
	Title    string            `json:"title"`
	Concept  *string           `json:"concept,omitempty"`
	TOC      *string           `json:"toc,omitempty"`
	Sections []SectionDocument `json:"sections"`
}

type SectionDocument struct {
	Title   *string `json:"title,omitempty"`
	Content string  `json:"content"`
	Order   int     `json:"order"`
}

// NewCampaignDocument converts a campaign with loaded sections. Sections are
// expected in reading order.
func NewCampaignDocument(campaign entities.Campaign) CampaignDocument {
	doc := CampaignDocument{
		Title:    campaign.Title,
		Concept:  nonEmpty(campaign.Concept),
		TOC:      nonEmpty(campaign.TOC),
		Sections: make([]SectionDocument, 0, len(campaign.Sections)),
	}
	for _, section := range campaign.Sections {
		doc.Sections = append(doc.Sections, SectionDocument{
			Title:   nonEmpty(section.Title),
			Content: section.Content,
			Order:   section.Position,
		})
	}
	return doc
}

// WriteCampaignZIP writes campaign.json plus one markdown copy per section.
// Importing the archive recreates the campaign; the markdown copies are
// ignored by the importer.
func WriteCampaignZIP(w io.Writer, campaign entities.Campaign, exportedAt time.Time) error {
	zw := zip.NewWriter(w)

	doc, err := json.MarshalIndent(NewCampaignDocument(campaign), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode campaign: %w", err)
	}
	if err := writeEntry(zw, DocumentFileName, doc, exportedAt); err != nil {
		return err
	}

	for i, section := range campaign.Sections {
		name := SectionFileName(i+1, section.Title)
		if err := writeEntry(zw, name, []byte(sectionMarkdown(campaign, section)), exportedAt); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// SectionFileName builds "sections/NNN-slug.md" for the n-th section.
func SectionFileName(n int, title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "section"
	}
	return fmt.Sprintf("%s%03d-%s.md", sectionsDir, n, slug)
}

// Slugify keeps letters and digits, lowercased, and joins runs of anything
// else with a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// ArchiveName is the download name offered for a campaign export.
func ArchiveName(campaign entities.Campaign) string {
	slug := Slugify(campaign.Title)
	if slug == "" {
		slug = fmt.Sprintf("campaign-%d", campaign.ID)
	}
	return slug + ".zip"
}

func sectionMarkdown(campaign entities.Campaign, section entities.Section) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "---\n")
	fmt.Fprintf(&sb, "campaign: %q\n", campaign.Title)
	if section.Title != "" {
		fmt.Fprintf(&sb, "title: %q\n", section.Title)
	}
	fmt.Fprintf(&sb, "order: %d\n", section.Position)
	fmt.Fprintf(&sb, "---\n\n")
	if section.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", section.Title)
	}
	sb.WriteString(section.Content)
	if !strings.HasSuffix(section.Content, "\n") {
		sb.WriteByte('\n')
	}
	return sb.String()
}

func writeEntry(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	}
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
