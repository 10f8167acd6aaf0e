package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/campaigner/internal/audit"
	"github.com/mrlokans/campaigner/internal/config"
	"github.com/mrlokans/campaigner/internal/database"
	auditRepo "github.com/mrlokans/campaigner/internal/database/audit"
	"github.com/mrlokans/campaigner/internal/database/campaigns"
	"github.com/mrlokans/campaigner/internal/importers"
)

// CampaignImportCommand imports a .json or .zip file straight into the
// database, bypassing the HTTP server.
type CampaignImportCommand struct {
	FilePath     string
	DatabasePath string
	UserID       uint
	CampaignID   uint
	Folders      bool
	DryRun       bool
	Verbose      bool

	DefaultCampaignTitle string
	MaxEntryBytes        int64

	Out io.Writer
}

func NewCampaignImportCommand() *CampaignImportCommand {
	return &CampaignImportCommand{Out: os.Stdout}
}

func (cmd *CampaignImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)

	dbPath := cmd.DatabasePath
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}

	var userID, campaignID uint64
	fs.StringVar(&cmd.FilePath, "file", "", "Path to a .json document or .zip archive (required)")
	fs.StringVar(&cmd.DatabasePath, "db", dbPath, "Path to the database file")
	fs.Uint64Var(&userID, "user", 0, "Owner user ID (0 when authentication is disabled)")
	fs.Uint64Var(&campaignID, "campaign", 0, "Append every section to this existing campaign")
	fs.BoolVar(&cmd.Folders, "folders", false, "Treat top-level ZIP folders as campaigns")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every planned campaign and section")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import campaigns from a JSON document or a ZIP archive of .txt and .json files.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import an archive, one campaign per top-level folder:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file world.zip -folders\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview appending sections to campaign 3:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file notes.json -campaign 3 -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	if _, ok := importers.ContentKindFromFileName(cmd.FilePath); !ok {
		return fmt.Errorf("unsupported file type %q: expected .json or .zip", filepath.Ext(cmd.FilePath))
	}

	cmd.UserID = uint(userID)
	cmd.CampaignID = uint(campaignID)
	return nil
}

func (cmd *CampaignImportCommand) Run() error {
	out := cmd.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintln(out, "Campaign Import")
	fmt.Fprintln(out, "===============")
	if cmd.DryRun {
		fmt.Fprintln(out, "DRY RUN MODE - No changes will be made")
	}

	kind, _ := importers.ContentKindFromFileName(cmd.FilePath)
	content, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.FilePath, err)
	}
	fmt.Fprintf(out, "File: %s (%d bytes)\n", cmd.FilePath, len(content))

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	fmt.Fprintf(out, "Database: %s\n", absDBPath)

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repo := campaigns.NewRepository(db.DB)
	ctx := context.Background()

	req := importers.Request{
		Content:                   content,
		OwnerID:                   cmd.UserID,
		ProcessFoldersAsStructure: cmd.Folders,
	}
	if cmd.CampaignID != 0 {
		campaign, err := repo.FindCampaign(ctx, cmd.UserID, cmd.CampaignID)
		if err != nil {
			if errors.Is(err, campaigns.ErrCampaignNotFound) {
				return fmt.Errorf("campaign %d not found for user %d", cmd.CampaignID, cmd.UserID)
			}
			return err
		}
		fmt.Fprintf(out, "Target: %q (#%d)\n", campaign.Title, campaign.ID)
		req.TargetCampaignID = &campaign.ID
	}

	pipeline := importers.NewPipeline(repo, importers.Options{
		DefaultCampaignTitle: cmd.DefaultCampaignTitle,
		MaxEntrySize:         cmd.MaxEntryBytes,
	})

	if cmd.DryRun {
		plan, parseErrors, err := pipeline.Prepare(kind, req)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		cmd.printPlan(out, plan)
		printErrors(out, parseErrors)
		fmt.Fprintln(out, "\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	summary, importErr := pipeline.Import(ctx, kind, req)

	auditLog := audit.NewService(auditRepo.NewRepository(db.DB))
	auditLog.LogImport(audit.ImportRecord{
		UserID:    cmd.UserID,
		Kind:      kind,
		FileName:  filepath.Base(cmd.FilePath),
		TargetID:  req.TargetCampaignID,
		UserAgent: "cli",
		Summary:   summary,
		Err:       importErr,
	})
	auditLog.Wait()

	fmt.Fprintln(out, "\n=== Import Summary ===")
	fmt.Fprintln(out, summary.Message)
	fmt.Fprintf(out, "Campaigns created: %d %v\n", summary.ImportedCampaignsCount, summary.CreatedCampaignIDs)
	fmt.Fprintf(out, "Campaigns updated: %v\n", summary.UpdatedCampaignIDs)
	fmt.Fprintf(out, "Sections imported: %d\n", summary.ImportedSectionsCount)
	printErrors(out, summary.Errors)

	if importErr != nil {
		return fmt.Errorf("import failed: %w", importErr)
	}
	return nil
}

func (cmd *CampaignImportCommand) printPlan(out io.Writer, plan importers.Plan) {
	if plan.IsEmpty() {
		fmt.Fprintln(out, "\nNothing to import")
		return
	}

	fmt.Fprintf(out, "\nPlan: %d step(s), %d section(s)\n", len(plan.Steps), plan.SectionCount())
	for i, step := range plan.Steps {
		switch step.Kind {
		case importers.StepCreateCampaign:
			fmt.Fprintf(out, "%d. create campaign %q (%d sections)\n", i+1, step.Title, len(step.Sections))
		case importers.StepAppendSections:
			fmt.Fprintf(out, "%d. append %d sections to campaign #%d\n", i+1, len(step.Sections), step.CampaignID)
		}
		if !cmd.Verbose {
			continue
		}
		for _, section := range step.Sections {
			title := "(untitled)"
			if section.Title != nil {
				title = *section.Title
			}
			fmt.Fprintf(out, "     [%d] %s (%d bytes)\n", section.Order, title, len(section.Content))
		}
	}
}

func printErrors(out io.Writer, details []importers.ImportErrorDetail) {
	if len(details) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%d errors occurred:\n", len(details))
	for _, detail := range details {
		location := ""
		if detail.FileName != nil {
			location = *detail.FileName + ": "
		}
		if detail.ItemIdentifier != nil {
			location += *detail.ItemIdentifier + ": "
		}
		fmt.Fprintf(out, "  [ERROR] %s%s\n", location, detail.Error)
	}
}
