// Package importers turns uploaded documents into campaigns and sections.
//
// # Architecture
//
// An import flows through three stages:
//
//	raw bytes → Parser → ParseResult → BuildPlan → Plan → Pipeline.Execute → CampaignStore
//
// Parsers (ParseJSON, ParseZIP) decide once whether the content describes
// whole campaigns or loose sections. The planner never re-inspects the
// content; it only decides which campaigns to create and in which order the
// sections land. The executor persists the plan step by step and records
// every failure in the ImportSummary instead of aborting.
//
// # Accepted Shapes
//
// A JSON upload is either a campaign object:
//
//	{"title": "...", "concept": "...", "toc": "...", "sections": [{"title": "...", "content": "...", "order": 0}]}
//
// or an array of section objects, each with at least "content".
//
// A ZIP upload holds .txt entries (one section each, titled after the file
// name) and .json entries in either of the shapes above. Other entries are
// ignored. With folder structure enabled and no target campaign, each
// top-level folder becomes a campaign named after it.
//
// # Errors
//
// A malformed JSON document fails the whole import with *EncodingError,
// *SyntaxError or *ShapeError (all match ErrDocumentMalformed). An
// unreadable archive fails with *ArchiveError (matches ErrUploadRejected).
// Problems with individual archive entries or individual store calls are
// reported as ImportErrorDetail values in the summary.
//
// # Example Usage
//
//	pipeline := importers.NewPipeline(campaignRepo, importers.Options{MaxEntrySize: 10 << 20})
//	summary, err := pipeline.ImportZIP(ctx, importers.Request{
//		Content:                   data,
//		OwnerID:                   userID,
//		ProcessFoldersAsStructure: true,
//	})
package importers
