package models

type User struct {
	BaseModelWithDeleted
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(100)" json:"firstName"`
	LastName     string     `gorm:"type:varchar(100)" json:"lastName"`
	Role         UserRole   `gorm:"type:varchar(20);not null;index" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`
	StatusReason string     `gorm:"type:text" json:"statusReason,omitempty"`
	IsVerified   bool       `gorm:"default:false" json:"isVerified"`
}

func (u User) GetStatus() string { return string(u.Status) }

func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
