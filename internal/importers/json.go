package importers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type jsonSection struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Order   *int    `json:"order"`
}

type jsonCampaign struct {
	Title    *string         `json:"title"`
	Concept  *string         `json:"concept"`
	TOC      *string         `json:"toc"`
	Sections json.RawMessage `json:"sections"`
}

// ParseJSON parses a single JSON upload. The top-level value decides the
// result once: an object with "title" and "sections" yields one campaign, an
// array of objects with "content" yields loose sections. Any failure is fatal
// for the whole document and is one of *EncodingError, *SyntaxError or
// *ShapeError.
func ParseJSON(raw []byte) (ParseResult, error) {
	return parseJSONDocument(raw, "")
}

func parseJSONDocument(raw []byte, sourceFile string) (ParseResult, error) {
	text, err := decodeText(raw)
	if err != nil {
		return ParseResult{}, err
	}

	var top json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return ParseResult{}, toSyntaxError(err)
	}

	top = bytes.TrimSpace(top)
	switch top[0] {
	case '{':
		campaign, err := parseCampaignObject(top)
		if err != nil {
			return ParseResult{}, err
		}
		campaign.SourceFile = sourceFile
		for i := range campaign.Sections {
			campaign.Sections[i].SourceFile = sourceFile
		}
		return ParseResult{Campaigns: []CampaignFragment{campaign}}, nil
	case '[':
		sections, err := parseSectionArray(top)
		if err != nil {
			return ParseResult{}, err
		}
		for i := range sections {
			sections[i].SourceFile = sourceFile
		}
		return ParseResult{Sections: sections}, nil
	default:
		return ParseResult{}, &ShapeError{Reason: "top-level value must be a campaign object or an array of sections"}
	}
}

func parseCampaignObject(raw json.RawMessage) (CampaignFragment, error) {
	var doc jsonCampaign
	if err := json.Unmarshal(raw, &doc); err != nil {
		return CampaignFragment{}, toShapeError("campaign", err)
	}

	if doc.Title == nil || strings.TrimSpace(*doc.Title) == "" {
		return CampaignFragment{}, &ShapeError{Reason: `campaign object requires a non-empty "title" string`}
	}

	sectionsRaw := bytes.TrimSpace(doc.Sections)
	if len(sectionsRaw) == 0 || sectionsRaw[0] != '[' {
		return CampaignFragment{}, &ShapeError{Reason: `campaign object requires a "sections" array`}
	}

	sections, err := parseSectionArray(sectionsRaw)
	if err != nil {
		return CampaignFragment{}, err
	}

	return CampaignFragment{
		Title:    strings.TrimSpace(*doc.Title),
		Concept:  doc.Concept,
		TOC:      doc.TOC,
		Sections: sections,
	}, nil
}

func parseSectionArray(raw json.RawMessage) ([]SectionFragment, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, toShapeError("sections", err)
	}

	sections := make([]SectionFragment, 0, len(items))
	for i, item := range items {
		section, err := parseSection(item, i)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func parseSection(raw json.RawMessage, index int) (SectionFragment, error) {
	item := bytes.TrimSpace(raw)
	if len(item) == 0 || item[0] != '{' {
		return SectionFragment{}, &ShapeError{Reason: fmt.Sprintf("section %d is not an object", index)}
	}

	var doc jsonSection
	if err := json.Unmarshal(item, &doc); err != nil {
		return SectionFragment{}, toShapeError(fmt.Sprintf("section %d", index), err)
	}
	if doc.Content == nil {
		return SectionFragment{}, &ShapeError{Reason: fmt.Sprintf(`section %d has no "content"`, index)}
	}
	if doc.Order != nil && *doc.Order < 0 {
		return SectionFragment{}, &ShapeError{Reason: fmt.Sprintf(`section %d has a negative "order"`, index)}
	}

	var title *string
	if doc.Title != nil {
		title = optionalString(strings.TrimSpace(*doc.Title))
	}

	return SectionFragment{
		Title:   title,
		Content: *doc.Content,
		Order:   doc.Order,
	}, nil
}

func toSyntaxError(err error) error {
	var jsonErr *json.SyntaxError
	if errors.As(err, &jsonErr) {
		return &SyntaxError{Offset: jsonErr.Offset, Err: err}
	}
	return &SyntaxError{Err: err}
}

func toShapeError(what string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "value"
		}
		return &ShapeError{Reason: fmt.Sprintf("%s: field %q must not be a JSON %s", what, field, typeErr.Value)}
	}
	return &ShapeError{Reason: fmt.Sprintf("%s: %v", what, err)}
}
