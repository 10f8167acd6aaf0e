package importers

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// ZIPOptions controls how archive entries are mapped to fragments.
type ZIPOptions struct {
	// ProcessFoldersAsStructure turns each top-level folder into a campaign.
	// Ignored when HasTarget is set.
	ProcessFoldersAsStructure bool
	HasTarget                 bool

	// MaxEntrySize caps the uncompressed size of a single entry. Zero means
	// no limit.
	MaxEntrySize int64
}

func (o ZIPOptions) foldersAsCampaigns() bool {
	return o.ProcessFoldersAsStructure && !o.HasTarget
}

const (
	extText = ".txt"
	extJSON = ".json"

	macOSMetadataDir  = "__MACOSX/"
	appleDoublePrefix = "._"
)

// ParseZIP parses an archive of .txt and .json entries. Only an unreadable
// archive is fatal (*ArchiveError); every entry-level failure is collected
// in the result's Errors and processing continues with the next entry.
func ParseZIP(raw []byte, opts ZIPOptions) (ParseResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return ParseResult{}, &ArchiveError{Err: err}
	}

	p := &zipParser{
		opts:    opts,
		folders: make(map[string]int),
	}
	for _, file := range reader.File {
		p.parseEntry(file)
	}
	return p.result, nil
}

type zipParser struct {
	opts   ZIPOptions
	result ParseResult

	// folders maps a top-level folder name to its index in result.Campaigns.
	folders map[string]int
}

func (p *zipParser) parseEntry(file *zip.File) {
	name := strings.ReplaceAll(file.Name, "\\", "/")
	if file.FileInfo().IsDir() || strings.HasSuffix(name, "/") || isArchiveMetadata(name) {
		return
	}

	ext := strings.ToLower(path.Ext(name))
	if ext != extText && ext != extJSON {
		return
	}

	data, err := p.readEntry(file)
	if err != nil {
		p.fail(name, err)
		return
	}

	folder := p.folderOf(name)

	switch ext {
	case extText:
		text, err := decodeText(data)
		if err != nil {
			p.fail(name, err)
			return
		}
		base := path.Base(name)
		section := SectionFragment{
			Title:      optionalString(strings.TrimSpace(strings.TrimSuffix(base, path.Ext(base)))),
			Content:    text,
			SourceFile: name,
		}
		if folder != "" {
			campaign := p.folderCampaign(folder)
			campaign.Sections = append(campaign.Sections, section)
			return
		}
		p.result.Sections = append(p.result.Sections, section)

	case extJSON:
		parsed, err := parseJSONDocument(data, name)
		if err != nil {
			p.fail(name, err)
			return
		}
		if folder != "" {
			p.mergeIntoFolder(folder, parsed)
			return
		}
		p.result.merge(parsed.flatten())
	}
}

func (p *zipParser) readEntry(file *zip.File) ([]byte, error) {
	limit := p.opts.MaxEntrySize
	if limit > 0 && file.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("entry exceeds the maximum size of %d bytes", limit)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry: %w", err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("entry exceeds the maximum size of %d bytes", limit)
	}
	return data, nil
}

// folderOf returns the top-level folder an entry belongs to when folder
// inference is active, or "" for root-level entries.
func (p *zipParser) folderOf(name string) string {
	if !p.opts.foldersAsCampaigns() {
		return ""
	}
	i := strings.Index(name, "/")
	if i <= 0 {
		return ""
	}
	return name[:i]
}

func (p *zipParser) folderCampaign(folder string) *CampaignFragment {
	if idx, ok := p.folders[folder]; ok {
		return &p.result.Campaigns[idx]
	}
	p.result.Campaigns = append(p.result.Campaigns, CampaignFragment{
		Title:      folder,
		SourceFile: folder + "/",
	})
	idx := len(p.result.Campaigns) - 1
	p.folders[folder] = idx
	return &p.result.Campaigns[idx]
}

func (p *zipParser) mergeIntoFolder(folder string, parsed ParseResult) {
	campaign := p.folderCampaign(folder)
	for _, c := range parsed.Campaigns {
		campaign.Sections = append(campaign.Sections, c.Sections...)
		if campaign.Concept == nil {
			campaign.Concept = c.Concept
		}
		if campaign.TOC == nil {
			campaign.TOC = c.TOC
		}
	}
	campaign.Sections = append(campaign.Sections, parsed.Sections...)
}

func (p *zipParser) fail(name string, err error) {
	p.result.Errors = append(p.result.Errors, newErrorDetail(name, "", err.Error()))
}

func isArchiveMetadata(name string) bool {
	return strings.HasPrefix(name, macOSMetadataDir) ||
		strings.HasPrefix(path.Base(name), appleDoublePrefix)
}
