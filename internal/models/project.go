package models

type Project struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:128;not null" json:"name"`
	Description string `gorm:"size:128;not null" json:"description"`
	Complete    bool   `gorm:"not null;default:false" json:"complete"`

	// Relationships
	Actions []Action `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ProjectWithActions is a project flattened together with its actions.
type ProjectWithActions struct {
	Project
	Actions []Action `json:"actions"`
}
