package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/services/bids"
)

type BidHandler struct {
	Bids *bids.BidService
}

func NewBidHandler(svc *bids.BidService) *BidHandler {
	return &BidHandler{Bids: svc}
}

func (h *BidHandler) Routes(r fiber.Router, authMiddleware fiber.Handler) {
	g := r.Group("/bids", authMiddleware)
	g.Post("/", h.Create)
	g.Get("/:gigId", h.ListByGig)
	g.Patch("/:bidId/hire", h.Hire)
}

type BidGigResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type BidResponse struct {
	ID           string          `json:"id"`
	GigID        string          `json:"gigId"`
	FreelancerID string          `json:"freelancerId"`
	Price        float64         `json:"price"`
	Message      string          `json:"message"`
	Status       string          `json:"status"`
	Freelancer   *UserResponse   `json:"freelancer,omitempty"`
	Gig          *BidGigResponse `json:"gig,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func toBidResponse(b *models.Bid) BidResponse {
	res := BidResponse{
		ID:           b.ID.String(),
		GigID:        b.GigID.String(),
		FreelancerID: b.FreelancerID.String(),
		Price:        b.Price,
		Message:      b.Message,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
	}
	if b.Freelancer != nil {
		u := toUserResponse(b.Freelancer)
		res.Freelancer = &u
	}
	if b.Gig != nil {
		res.Gig = &BidGigResponse{ID: b.Gig.ID.String(), Title: b.Gig.Title, Status: string(b.Gig.Status)}
	}
	return res
}

func (h *BidHandler) Create(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return err
	}

	var req bids.SubmitBidInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	b, err := h.Bids.Submit(c.UserContext(), uid, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Bid placed successfully", toBidResponse(b))
}

func (h *BidHandler) ListByGig(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return err
	}
	gigID, err := pathUUID(c, "gigId", "Gig not found")
	if err != nil {
		return err
	}

	list, err := h.Bids.ListForGig(c.UserContext(), uid, gigID)
	if err != nil {
		return err
	}

	out := make([]BidResponse, 0, len(list))
	for i := range list {
		out = append(out, toBidResponse(&list[i]))
	}
	return respond(c, fiber.StatusOK, "OK", out)
}

func (h *BidHandler) Hire(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return err
	}
	bidID, err := pathUUID(c, "bidId", "Bid not found")
	if err != nil {
		return err
	}

	b, err := h.Bids.Hire(c.UserContext(), uid, bidID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Freelancer hired successfully", fiber.Map{
		"bid": toBidResponse(b),
	})
}
