package models

type Company struct {
	BaseModel
	Name         string        `gorm:"not null" json:"name"`
	ContactEmail string        `json:"contactEmail,omitempty"`
	Website      string        `json:"website,omitempty"`
	OwnerID      *string       `gorm:"type:varchar(36);index" json:"ownerId,omitempty"`
	Status       CompanyStatus `gorm:"type:varchar(30);default:'pending_verification';index" json:"status"`
	StatusReason string        `gorm:"type:text" json:"statusReason,omitempty"`
}

func (c Company) GetStatus() string { return string(c.Status) }
