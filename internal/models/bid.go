// internal/models/bid.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusHired    BidStatus = "hired"
	BidStatusRejected BidStatus = "rejected"
)

// Bid is a freelancer's proposal on a gig. (gig_id, freelancer_id) is unique.
type Bid struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GigID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bid_gig_freelancer;index" json:"gigId"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bid_gig_freelancer;index" json:"freelancerId"`
	Price        float64   `gorm:"not null" json:"price"`
	Message      string    `gorm:"type:text;not null" json:"message"`
	Status       BidStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Gig        *Gig  `gorm:"foreignKey:GigID" json:"gig,omitempty"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

func (b *Bid) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = BidStatusPending
	}
	return
}

// IsTerminal reports whether no further transition is allowed.
func (s BidStatus) IsTerminal() bool {
	return s == BidStatusHired || s == BidStatusRejected
}
