package models

import (
	"time"

	"gorm.io/datatypes"
)

type Job struct {
	BaseModel
	CompanyID    string         `gorm:"type:varchar(36);index" json:"companyId"`
	CategoryID   *string        `gorm:"type:varchar(36);index" json:"categoryId,omitempty"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description,omitempty"`
	Location     string         `json:"location,omitempty"`
	Tags         datatypes.JSON `json:"tags,omitempty"`
	Status       JobStatus      `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	StatusReason string         `gorm:"type:text" json:"statusReason,omitempty"`
	ExpiresAt    *time.Time     `gorm:"index" json:"expiresAt,omitempty"`
}

func (j Job) GetStatus() string { return string(j.Status) }
