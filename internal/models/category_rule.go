package models

// CategoryRule maps a description substring to a category for automatic
// classification of imported and manual transactions. Lower priority wins
// first; matching is case-insensitive unless flagged.
type CategoryRule struct {
	Base
	Category      string `gorm:"not null;index" json:"category"`
	Pattern       string `gorm:"not null" json:"pattern"`
	Priority      int    `gorm:"default:100" json:"priority"`
	CaseSensitive bool   `gorm:"default:false" json:"case_sensitive"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`
}
