package models

type BlogComment struct {
	BaseModelWithDeleted
	BlogID       string        `gorm:"type:varchar(36);not null;index" json:"blogId"`
	AuthorName   string        `json:"authorName"`
	AuthorEmail  string        `json:"authorEmail"`
	Content      string        `gorm:"type:text;not null" json:"content"`
	Status       CommentStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	StatusReason string        `gorm:"type:text" json:"statusReason,omitempty"`
}

func (c BlogComment) GetStatus() string { return string(c.Status) }
