package models

type Skill struct {
	BaseModel
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

type JobCategory struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}
