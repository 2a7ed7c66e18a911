package models

// AuditLog records a mutating operation for traceability.
type AuditLog struct {
	Base
	Action       string `gorm:"not null;index" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `gorm:"type:text" json:"changes"`
}
