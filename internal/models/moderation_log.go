package models

import "gorm.io/datatypes"

// SystemActor - автор изменений, сделанных фоновыми задачами
const SystemActor = "system"

// ModerationLog - запись журнала изменений статусов
type ModerationLog struct {
	BaseModel
	EntityKind EntityKind     `gorm:"type:varchar(30);not null;index:idx_moderation_entity" json:"entityKind"`
	EntityID   string         `gorm:"type:varchar(36);not null;index:idx_moderation_entity" json:"entityId"`
	FromStatus string         `gorm:"type:varchar(30)" json:"fromStatus"`
	ToStatus   string         `gorm:"type:varchar(30);not null" json:"toStatus"`
	Reason     string         `gorm:"type:text" json:"reason,omitempty"`
	ActorID    string         `gorm:"type:varchar(36);index" json:"actorId"`
	Details    datatypes.JSON `json:"details,omitempty"`
}
