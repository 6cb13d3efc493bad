package gigs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/models"
)

type GigServiceSuite struct {
	suite.Suite
	ctx   context.Context
	db    *gorm.DB
	svc   *GigService
	alice models.User
	bob   models.User
}

func (s *GigServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = dbtest.Open(s.T())
	s.svc = NewGigService(s.db)

	s.alice = models.User{Name: "Alice", Email: "alice@example.com", Password: "x"}
	s.bob = models.User{Name: "Bob", Email: "bob@example.com", Password: "x"}
	s.Require().NoError(s.db.Create(&s.alice).Error)
	s.Require().NoError(s.db.Create(&s.bob).Error)
}

func TestGigServiceSuite(t *testing.T) {
	suite.Run(t, new(GigServiceSuite))
}

func (s *GigServiceSuite) create(owner uuid.UUID, title string) *models.Gig {
	g, err := s.svc.Create(s.ctx, owner, CreateGigInput{Title: title, Description: "desc", Budget: 500})
	s.Require().NoError(err)
	// keep created_at strictly increasing
	time.Sleep(2 * time.Millisecond)
	return g
}

func (s *GigServiceSuite) TestCreate() {
	g, err := s.svc.Create(s.ctx, s.alice.ID, CreateGigInput{
		Title:       "  Build site ",
		Description: "Landing page",
		Budget:      500,
		Deadline:    "2026-12-31",
	})
	s.Require().NoError(err)

	s.Equal("Build site", g.Title)
	s.Equal(models.GigStatusOpen, g.Status)
	s.Equal(s.alice.ID, g.OwnerID)
	s.NotNil(g.Deadline)
	s.Require().NotNil(g.Owner)
	s.Equal("Alice", g.Owner.Name)
}

func (s *GigServiceSuite) TestCreateValidation() {
	cases := []CreateGigInput{
		{Description: "d", Budget: 10},
		{Title: "t", Budget: 10},
		{Title: "t", Description: "d", Budget: 0},
		{Title: "t", Description: "d", Budget: -5},
		{Title: "t", Description: "d", Budget: 5, Deadline: "next tuesday"},
		{Title: "   ", Description: "d", Budget: 5},
	}
	for _, in := range cases {
		_, err := s.svc.Create(s.ctx, s.alice.ID, in)
		s.True(errors.Is(err, apperr.ErrValidation), "%+v -> %v", in, err)
	}
}

func (s *GigServiceSuite) TestListByOwnerNewestFirst() {
	first := s.create(s.alice.ID, "First")
	second := s.create(s.alice.ID, "Second")
	s.create(s.bob.ID, "Bob's gig")

	gigs, err := s.svc.List(s.ctx, ListFilter{OwnerID: &s.alice.ID})
	s.Require().NoError(err)
	s.Require().Len(gigs, 2)
	s.Equal(second.ID, gigs[0].ID)
	s.Equal(first.ID, gigs[1].ID)
}

func (s *GigServiceSuite) TestPublicFeedOnlyOpen() {
	open := s.create(s.alice.ID, "Open one")
	assigned := s.create(s.alice.ID, "Taken one")
	s.Require().NoError(s.db.Model(&models.Gig{}).Where("id = ?", assigned.ID).
		Update("status", models.GigStatusAssigned).Error)

	feed, err := s.svc.List(s.ctx, ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(feed, 1)
	s.Equal(open.ID, feed[0].ID)

	// the dashboard still shows both
	mine, err := s.svc.List(s.ctx, ListFilter{OwnerID: &s.alice.ID})
	s.Require().NoError(err)
	s.Len(mine, 2)
}

func (s *GigServiceSuite) TestSearchIsCaseInsensitiveSubstring() {
	s.create(s.alice.ID, "Build a React Website")
	s.create(s.alice.ID, "Logo design")
	s.create(s.bob.ID, "100% discount_banner")

	gigs, err := s.svc.List(s.ctx, ListFilter{Search: "react"})
	s.Require().NoError(err)
	s.Require().Len(gigs, 1)
	s.Equal("Build a React Website", gigs[0].Title)

	gigs, err = s.svc.List(s.ctx, ListFilter{Search: "%"})
	s.Require().NoError(err)
	s.Require().Len(gigs, 1)
	s.Equal("100% discount_banner", gigs[0].Title)

	gigs, err = s.svc.List(s.ctx, ListFilter{Search: "nothing"})
	s.Require().NoError(err)
	s.Empty(gigs)
}

func (s *GigServiceSuite) TestGet() {
	g := s.create(s.alice.ID, "Build site")

	got, err := s.svc.Get(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal("Build site", got.Title)
	s.Equal("alice@example.com", got.Owner.Email)

	_, err = s.svc.Get(s.ctx, uuid.New())
	s.True(errors.Is(err, apperr.ErrNotFound))
}
