package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Agent struct {
	ID        uuid.UUID  `gorm:"column:agent_id;type:uuid;primaryKey" json:"agent_id"`
	Name      string     `gorm:"column:name;not null" json:"name"`
	Phone     string     `gorm:"column:phone;not null" json:"phone"`
	Email     string     `gorm:"column:email;not null" json:"email"`
	URL       string     `gorm:"column:url" json:"url"`
	Brokerage string     `gorm:"column:brokerage" json:"brokerage"`
	FileID    *uuid.UUID `gorm:"column:file_id;type:uuid" json:"fileId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (Agent) TableName() string {
	return "agents"
}

func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
