package entities

import (
	"time"

	"gorm.io/gorm"
)

type Campaign struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OwnerID   uint           `gorm:"index" json:"owner_id"`
	Title     string         `gorm:"index;size:512" json:"title"`
	Concept   string         `gorm:"type:text" json:"concept,omitempty"`
	TOC       string         `gorm:"column:toc;type:text" json:"toc,omitempty"`
	Sections  []Section      `gorm:"foreignKey:CampaignID" json:"sections,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Section struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CampaignID uint   `gorm:"index" json:"campaign_id"`
	Title      string `gorm:"size:512" json:"title,omitempty"`
	Content    string `gorm:"type:text" json:"content"`

	// Position is the section order inside its campaign. Imports may leave
	// gaps or duplicates; readers sort by (position, id).
	Position int `gorm:"index" json:"order"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

func (Section) TableName() string {
	return "sections"
}
