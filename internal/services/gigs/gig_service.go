package gigs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/validation"
)

type GigService struct {
	DB *gorm.DB
}

func NewGigService(db *gorm.DB) *GigService {
	return &GigService{DB: db}
}

type CreateGigInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Budget      float64 `json:"budget" validate:"gt=0"`
	Deadline    string  `json:"deadline"` // ISO: 2026-01-05 atau RFC3339
}

// ListFilter selects the public feed (OwnerID nil: open gigs only) or an
// owner's dashboard (every gig of that owner).
type ListFilter struct {
	Search  string
	OwnerID *uuid.UUID
}

func parseDeadline(s string) (*datatypes.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d := datatypes.Date(t)
			return &d, nil
		}
	}
	return nil, errors.New("invalid deadline")
}

func (s *GigService) Create(ctx context.Context, ownerID uuid.UUID, in CreateGigInput) (*models.Gig, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	deadline, err := parseDeadline(in.Deadline)
	if err != nil {
		fields := apperr.FieldErrors{}
		fields.Add("deadline", "use YYYY-MM-DD")
		return nil, apperr.InvalidFields(fields)
	}

	gig := models.Gig{
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		Deadline:    deadline,
		OwnerID:     ownerID,
		Status:      models.GigStatusOpen,
	}
	if err := s.DB.WithContext(ctx).Create(&gig).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, gig.ID)
}

// List returns gigs newest first with the owner preloaded.
func (s *GigService) List(ctx context.Context, f ListFilter) ([]models.Gig, error) {
	q := s.DB.WithContext(ctx).Model(&models.Gig{}).Preload("Owner")

	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	} else {
		q = q.Where("status = ?", models.GigStatusOpen)
	}

	if term := strings.TrimSpace(f.Search); term != "" {
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(term))+"%")
	}

	gigs := []models.Gig{}
	if err := q.Order("created_at DESC").Find(&gigs).Error; err != nil {
		return nil, err
	}
	return gigs, nil
}

func (s *GigService) Get(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	err := s.DB.WithContext(ctx).Preload("Owner").First(&gig, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Gig not found")
	}
	if err != nil {
		return nil, err
	}
	return &gig, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
