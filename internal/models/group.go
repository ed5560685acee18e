package models

import "github.com/google/uuid"

type Group struct {
	BaseModel
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedByID uuid.UUID `json:"createdBy" gorm:"type:uuid;not null;index"`

	Creator     User              `json:"creator,omitempty" gorm:"foreignKey:CreatedByID"`
	Memberships []GroupMembership `json:"members,omitempty" gorm:"foreignKey:GroupID"`
	Messages    []Message         `json:"-" gorm:"foreignKey:GroupID"`
	Notes       []Note            `json:"-" gorm:"foreignKey:GroupID"`
}
