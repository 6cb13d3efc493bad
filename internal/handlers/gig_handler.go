package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/services/gigs"
)

type GigHandler struct {
	Gigs *gigs.GigService
}

func NewGigHandler(svc *gigs.GigService) *GigHandler {
	return &GigHandler{Gigs: svc}
}

func (h *GigHandler) Routes(r fiber.Router, authMiddleware fiber.Handler) {
	g := r.Group("/gigs")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Post("/", authMiddleware, h.Create)
}

type GigResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Budget      float64       `json:"budget"`
	Deadline    *string       `json:"deadline"`
	Status      string        `json:"status"`
	OwnerID     string        `json:"ownerId"`
	Owner       *UserResponse `json:"owner,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

func toGigResponse(g *models.Gig) GigResponse {
	res := GigResponse{
		ID:          g.ID.String(),
		Title:       g.Title,
		Description: g.Description,
		Budget:      g.Budget,
		Status:      string(g.Status),
		OwnerID:     g.OwnerID.String(),
		CreatedAt:   g.CreatedAt,
	}
	if g.Deadline != nil {
		d := time.Time(*g.Deadline).Format("2006-01-02")
		res.Deadline = &d
	}
	if g.Owner != nil {
		// email pemilik tidak ditampilkan di feed publik
		res.Owner = &UserResponse{ID: g.Owner.ID.String(), Name: g.Owner.Name}
	}
	return res
}

func (h *GigHandler) Create(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return err
	}

	var req gigs.CreateGigInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	g, err := h.Gigs.Create(c.UserContext(), uid, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Gig created successfully", toGigResponse(g))
}

// List serves the public feed, or with ?ownerId= one owner's gigs in any status.
func (h *GigHandler) List(c *fiber.Ctx) error {
	filter := gigs.ListFilter{Search: c.Query("search")}

	if raw := strings.TrimSpace(c.Query("ownerId")); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			fields := apperr.FieldErrors{}
			fields.Add("ownerId", "invalid id")
			return apperr.InvalidFields(fields)
		}
		filter.OwnerID = &ownerID
	}

	list, err := h.Gigs.List(c.UserContext(), filter)
	if err != nil {
		return err
	}

	out := make([]GigResponse, 0, len(list))
	for i := range list {
		out = append(out, toGigResponse(&list[i]))
	}
	return respond(c, fiber.StatusOK, "OK", out)
}

func (h *GigHandler) Get(c *fiber.Ctx) error {
	id, err := pathUUID(c, "id", "Gig not found")
	if err != nil {
		return err
	}

	g, err := h.Gigs.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "OK", toGigResponse(g))
}
