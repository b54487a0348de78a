package models

type Action struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:128;not null" json:"name"`
	ProjectID uint   `gorm:"not null;index" json:"project_id"` // Foreign key to the Project
	Notes     string `gorm:"size:128;not null;default:''" json:"notes"`
	Complete  bool   `gorm:"not null;default:false" json:"complete"`
}
