// Package campaigns provides database operations for campaigns and their
// sections. The Repository is the persistence backend of the import engine.
//
// # Usage
//
//	repo := campaigns.NewRepository(db)
//	id, err := repo.CreateCampaign(ctx, ownerID, "The Sunken Keep", nil, nil)
//	campaign, err := repo.GetCampaign(ctx, ownerID, id)
package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/campaigner/internal/entities"
	"github.com/mrlokans/campaigner/internal/importers"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrSectionNotFound  = errors.New("section not found")
	ErrTitleRequired    = errors.New("campaign title is required")
)

const sectionOrder = "position ASC, id ASC"

// Repository handles all campaign and section database operations.
// Every read and write is scoped to an owner; a campaign owned by someone
// else is reported as ErrCampaignNotFound.
type Repository struct {
	db *gorm.DB
}

var _ importers.CampaignStore = (*Repository)(nil)

// NewRepository creates a new campaigns repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CampaignUpdate holds the fields a PATCH may change. Nil means unchanged.
type CampaignUpdate struct {
	Title   *string
	Concept *string
	TOC     *string
}

// CreateCampaign inserts an empty campaign and returns its id.
func (r *Repository) CreateCampaign(ctx context.Context, ownerID uint, title string, concept, toc *string) (uint, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, ErrTitleRequired
	}

	campaign := &entities.Campaign{
		OwnerID: ownerID,
		Title:   title,
		Concept: deref(concept),
		TOC:     deref(toc),
	}
	if err := r.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return 0, fmt.Errorf("failed to create campaign: %w", err)
	}
	return campaign.ID, nil
}

// CreateSection inserts a section at the given position. The caller is
// responsible for having checked campaign ownership.
func (r *Repository) CreateSection(ctx context.Context, campaignID uint, title *string, content string, order int) (uint, error) {
	section := &entities.Section{
		CampaignID: campaignID,
		Title:      deref(title),
		Content:    content,
		Position:   order,
	}
	if err := r.db.WithContext(ctx).Create(section).Error; err != nil {
		return 0, fmt.Errorf("failed to create section: %w", err)
	}
	return section.ID, nil
}

// ListCampaigns returns the owner's campaigns, newest first, without sections.
func (r *Repository) ListCampaigns(ctx context.Context, ownerID uint) ([]entities.Campaign, error) {
	var campaigns []entities.Campaign
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&campaigns).Error
	return campaigns, err
}

// FindCampaign returns the campaign without loading its sections.
func (r *Repository) FindCampaign(ctx context.Context, ownerID, id uint) (*entities.Campaign, error) {
	var campaign entities.Campaign
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// GetCampaign returns the campaign with its sections in reading order.
func (r *Repository) GetCampaign(ctx context.Context, ownerID, id uint) (*entities.Campaign, error) {
	var campaign entities.Campaign
	err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order(sectionOrder)
		}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// UpdateCampaign applies the non-nil fields of update.
func (r *Repository) UpdateCampaign(ctx context.Context, ownerID, id uint, update CampaignUpdate) (*entities.Campaign, error) {
	campaign, err := r.FindCampaign(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		updates["title"] = title
	}
	if update.Concept != nil {
		updates["concept"] = *update.Concept
	}
	if update.TOC != nil {
		updates["toc"] = *update.TOC
	}
	if len(updates) == 0 {
		return campaign, nil
	}

	if err := r.db.WithContext(ctx).Model(campaign).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}
	return r.FindCampaign(ctx, ownerID, id)
}

// DeleteCampaign soft-deletes the campaign together with its sections.
func (r *Repository) DeleteCampaign(ctx context.Context, ownerID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&entities.Campaign{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCampaignNotFound
		}
		return tx.Where("campaign_id = ?", id).Delete(&entities.Section{}).Error
	})
}

// ListSections returns the campaign's sections in reading order.
func (r *Repository) ListSections(ctx context.Context, ownerID, campaignID uint) ([]entities.Section, error) {
	if _, err := r.FindCampaign(ctx, ownerID, campaignID); err != nil {
		return nil, err
	}

	var sections []entities.Section
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order(sectionOrder).
		Find(&sections).Error
	return sections, err
}

// AddSection creates a section in an owned campaign. A nil order places the
// section after the current last one.
func (r *Repository) AddSection(ctx context.Context, ownerID, campaignID uint, title *string, content string, order *int) (*entities.Section, error) {
	if _, err := r.FindCampaign(ctx, ownerID, campaignID); err != nil {
		return nil, err
	}

	position := 0
	if order != nil {
		position = *order
	} else {
		next, err := r.nextPosition(ctx, campaignID)
		if err != nil {
			return nil, err
		}
		position = next
	}

	id, err := r.CreateSection(ctx, campaignID, title, content, position)
	if err != nil {
		return nil, err
	}

	var section entities.Section
	if err := r.db.WithContext(ctx).First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// DeleteSection soft-deletes a section of an owned campaign.
func (r *Repository) DeleteSection(ctx context.Context, ownerID, sectionID uint) error {
	var section entities.Section
	err := r.db.WithContext(ctx).
		Joins("JOIN campaigns ON campaigns.id = sections.campaign_id AND campaigns.deleted_at IS NULL").
		Where("sections.id = ? AND campaigns.owner_id = ?", sectionID, ownerID).
		First(&section).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		return err
	}
	return r.db.WithContext(ctx).Delete(&section).Error
}

func (r *Repository) nextPosition(ctx context.Context, campaignID uint) (int, error) {
	var maxPosition sql.NullInt64
	row := r.db.WithContext(ctx).
		Model(&entities.Section{}).
		Where("campaign_id = ?", campaignID).
		Select("MAX(position)").
		Row()
	if err := row.Scan(&maxPosition); err != nil {
		return 0, fmt.Errorf("failed to compute next position: %w", err)
	}
	if !maxPosition.Valid {
		return 0, nil
	}
	return int(maxPosition.Int64) + 1, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
