package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BeforeCreate проставляет UUID, если ID не задан
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m BaseModel) GetID() string           { return m.ID }
func (m BaseModel) GetCreatedAt() time.Time { return m.CreatedAt }

type BaseModelWithDeleted struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Entity - любая запись, которой управляет админка
type Entity interface {
	GetID() string
	GetCreatedAt() time.Time
}

// Moderable - сущность со статусом из закрытого набора
type Moderable interface {
	Entity
	GetStatus() string
}
