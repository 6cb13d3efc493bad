// internal/models/gig.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GigStatus string

const (
	GigStatusOpen     GigStatus = "open"     // menerima bid
	GigStatusAssigned GigStatus = "assigned" // freelancer sudah di-hire
)

type Gig struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Budget      float64         `gorm:"not null" json:"budget"`
	Deadline    *datatypes.Date `json:"deadline,omitempty"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"ownerId"`
	Status      GigStatus       `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (g *Gig) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Status == "" {
		g.Status = GigStatusOpen
	}
	return
}
