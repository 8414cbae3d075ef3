package models

type Application struct {
	BaseModelWithDeleted
	JobID          string            `gorm:"type:varchar(36);not null;index" json:"jobId"`
	UserID         string            `gorm:"type:varchar(36);not null;index" json:"userId"`
	ApplicantEmail string            `json:"applicantEmail"`
	CoverLetter    string            `gorm:"type:text" json:"coverLetter,omitempty"`
	Status         ApplicationStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	StatusReason   string            `gorm:"type:text" json:"statusReason,omitempty"`
}

func (a Application) GetStatus() string { return string(a.Status) }
