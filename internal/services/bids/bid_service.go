package bids

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/db"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/models"
)

const defaultNotifyTimeout = 3 * time.Second

// Notifier pushes a payload to whatever live connection userID has.
// Delivery is best effort: an offline user is not an error.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, payload any) error
}

// HiredEvent is sent to the freelancer after a hire commits.
type HiredEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	GigID   string `json:"gigId"`
	BidID   string `json:"bidId"`
}

type BidService struct {
	DB            *gorm.DB
	Notifier      Notifier
	NotifyTimeout time.Duration
}

func NewBidService(db *gorm.DB, notifier Notifier) *BidService {
	return &BidService{DB: db, Notifier: notifier, NotifyTimeout: defaultNotifyTimeout}
}

type SubmitBidInput struct {
	GigID   string  `json:"gigId"`
	Price   float64 `json:"price"`
	Message string  `json:"message"`
}

func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Submit places a pending bid. Checks run in a fixed order and the first
// failure wins: gig exists, gig open, not the owner, no earlier bid, price > 0.
func (s *BidService) Submit(ctx context.Context, freelancerID uuid.UUID, in SubmitBidInput) (*models.Bid, error) {
	rawID := strings.TrimSpace(in.GigID)
	if rawID == "" {
		fields := apperr.FieldErrors{}
		fields.Add("gigId", "this field is required")
		return nil, apperr.InvalidFields(fields)
	}
	gigID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperr.NotFound("Gig not found")
	}

	var bid models.Bid
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the gig row so a concurrent hire cannot assign it between
		// the status check and the insert.
		var gig models.Gig
		if err := lockForUpdate(tx).First(&gig, "id = ?", gigID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Gig not found")
			}
			return err
		}

		if gig.Status != models.GigStatusOpen {
			return apperr.State("This gig is no longer accepting bids")
		}

		if gig.OwnerID == freelancerID {
			return apperr.Policy("You cannot bid on your own gig")
		}

		var count int64
		if err := tx.Model(&models.Bid{}).
			Where("gig_id = ? AND freelancer_id = ?", gig.ID, freelancerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("You have already placed a bid on this gig")
		}

		if in.Price <= 0 {
			return apperr.Validation("Price must be greater than 0")
		}
		msg := strings.TrimSpace(in.Message)
		if msg == "" {
			return apperr.Validation("Message is required")
		}

		bid = models.Bid{
			GigID:        gig.ID,
			FreelancerID: freelancerID,
			Price:        in.Price,
			Message:      msg,
			Status:       models.BidStatusPending,
		}
		if err := tx.Create(&bid).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("You have already placed a bid on this gig")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, bid.ID)
}

// ListForGig returns the gig's bids newest first. Only the gig owner may see them.
func (s *BidService) ListForGig(ctx context.Context, requesterID, gigID uuid.UUID) ([]models.Bid, error) {
	var gig models.Gig
	err := s.DB.WithContext(ctx).First(&gig, "id = ?", gigID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Gig not found")
	}
	if err != nil {
		return nil, err
	}

	if gig.OwnerID != requesterID {
		return nil, apperr.Forbidden("Access denied. Only the gig owner can view bids.")
	}

	bids := []models.Bid{}
	if err := s.DB.WithContext(ctx).
		Preload("Freelancer").
		Where("gig_id = ?", gig.ID).
		Order("created_at DESC").
		Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

// Hire marks the bid hired, the gig assigned and every sibling bid rejected
// in one transaction. The hired freelancer is notified after commit.
func (s *BidService) Hire(ctx context.Context, requesterID, bidID uuid.UUID) (*models.Bid, error) {
	var (
		bid models.Bid
		gig models.Gig
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&bid, "id = ?", bidID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Bid not found")
			}
			return err
		}

		if err := lockForUpdate(tx).First(&gig, "id = ?", bid.GigID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Gig not found")
			}
			return err
		}

		if gig.OwnerID != requesterID {
			return apperr.Forbidden("Only the gig owner can hire")
		}

		if gig.Status != models.GigStatusOpen {
			return apperr.State("Gig already assigned")
		}

		if bid.Status.IsTerminal() {
			return apperr.State("Bid is no longer pending")
		}

		// open -> assigned is a compare-and-swap; it is what serializes two
		// hires on the same gig when the store has no row locks.
		res := tx.Model(&models.Gig{}).
			Where("id = ? AND status = ?", gig.ID, models.GigStatusOpen).
			Update("status", models.GigStatusAssigned)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.State("Gig already assigned")
		}

		res = tx.Model(&models.Bid{}).
			Where("id = ? AND status = ?", bid.ID, models.BidStatusPending).
			Update("status", models.BidStatusHired)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.State("Bid is no longer pending")
		}

		if err := tx.Model(&models.Bid{}).
			Where("gig_id = ? AND id <> ?", gig.ID, bid.ID).
			Update("status", models.BidStatusRejected).Error; err != nil {
			return err
		}

		gig.Status = models.GigStatusAssigned
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterHire(bid, gig)

	hired, err := s.load(ctx, bid.ID)
	if err != nil {
		// committed already; fall back to what we know
		log.Printf("[Hire] reload bid %s: %v", bid.ID, err)
		bid.Status = models.BidStatusHired
		bid.Gig = &gig
		return &bid, nil
	}
	return hired, nil
}

// afterHire runs after commit. Nothing it does can affect the hire result.
func (s *BidService) afterHire(bid models.Bid, gig models.Gig) {
	if s.Notifier == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hire] notifier panic for bid %s: %v", bid.ID, r)
		}
	}()

	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	// detached from the request: a disconnecting client must not cancel it
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ev := HiredEvent{
		Type:    "hired",
		Message: fmt.Sprintf("Congratulations! You have been hired for \"%s\"", gig.Title),
		GigID:   gig.ID.String(),
		BidID:   bid.ID.String(),
	}
	if err := s.Notifier.Notify(ctx, bid.FreelancerID, ev); err != nil {
		log.Printf("[Hire] notify freelancer %s: %v", bid.FreelancerID, err)
	}
}

func (s *BidService) load(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	if err := s.DB.WithContext(ctx).
		Preload("Freelancer").
		Preload("Gig").
		First(&bid, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bid, nil
}
