package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./campaigner.db"

	// DefaultCampaignTitle names the campaign created for imports that carry
	// only loose sections
	DefaultCampaignTitle = "Imported campaign"
)
