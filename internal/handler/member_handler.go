package handler

import (
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/gymcard/internal/domain"
	"github.com/mansoorceksport/gymcard/internal/middleware"
	"github.com/mansoorceksport/gymcard/internal/service"
	"go.uber.org/zap"
)

// MemberHandler handles the admin member endpoints
type MemberHandler struct {
	members   *service.MemberService
	refresher *service.RemainingRefresher
	repo      domain.MemberRepository
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewMemberHandler(
	members *service.MemberService,
	refresher *service.RemainingRefresher,
	repo domain.MemberRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *MemberHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberHandler{
		members:   members,
		refresher: refresher,
		repo:      repo,
		validate:  validate,
		logger:    logger,
	}
}

// CreateMemberRequest is the body of POST /v1/admin/members
type CreateMemberRequest struct {
	FirstName    string `json:"firstName" validate:"required,max=80"`
	LastName     string `json:"lastName" validate:"max=80"`
	Status       string `json:"status" validate:"omitempty,max=20"`
	Duration     string `json:"duration" validate:"required,duration"`
	Price        string `json:"price" validate:"max=40"`
	RegisterDate string `json:"registerDate" validate:"omitempty,ethdate"`
}

// UpdateMemberRequest is the body of PUT /v1/admin/members/:id. Empty fields are left alone.
type UpdateMemberRequest struct {
	FirstName    string `json:"firstName" validate:"max=80"`
	LastName     string `json:"lastName" validate:"max=80"`
	Status       string `json:"status" validate:"omitempty,max=20"`
	Duration     string `json:"duration" validate:"omitempty,duration"`
	Price        string `json:"price" validate:"max=40"`
	RegisterDate string `json:"registerDate" validate:"omitempty,ethdate"`
}

// RenewMemberRequest is the optional body of POST /v1/admin/members/:id/renew
type RenewMemberRequest struct {
	Duration string `json:"duration" validate:"omitempty,duration"`
}

// parse decodes and validates the body, returning a client-facing message on failure
func (h *MemberHandler) parse(c *fiber.Ctx, req interface{}) string {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return "Invalid request body"
		}
	}
	if err := h.validate.Struct(req); err != nil {
		return validationMessage(err)
	}
	return ""
}

// List handles GET /v1/admin/members
func (h *MemberHandler) List(c *fiber.Ctx) error {
	members, err := h.repo.List(c.UserContext())
	if err != nil {
		return err
	}
	if members == nil {
		members = []*domain.MemberRecord{}
	}
	return c.JSON(fiber.Map{"success": true, "data": members})
}

// Create handles POST /v1/admin/members
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var req CreateMemberRequest
	if msg := h.parse(c, &req); msg != "" {
		return badRequest(c, msg)
	}

	member, err := h.members.Create(c.UserContext(), service.MemberInput(req))
	if err != nil {
		return respondError(c, err)
	}

	h.logger.Info("admin created member",
		zap.String("admin", middleware.GetAdminSubject(c)),
		zap.String("member_id", member.ID),
	)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": member})
}

// Update handles PUT /v1/admin/members/:id
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	var req UpdateMemberRequest
	if msg := h.parse(c, &req); msg != "" {
		return badRequest(c, msg)
	}

	member, err := h.members.Update(c.UserContext(), c.Params("id"), service.MemberInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": member})
}

// Renew handles POST /v1/admin/members/:id/renew
func (h *MemberHandler) Renew(c *fiber.Ctx) error {
	var req RenewMemberRequest
	if msg := h.parse(c, &req); msg != "" {
		return badRequest(c, msg)
	}

	member, err := h.members.Renew(c.UserContext(), c.Params("id"), req.Duration)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": member})
}

// UploadPhoto handles POST /v1/admin/members/:id/photo (multipart field "photo")
func (h *MemberHandler) UploadPhoto(c *fiber.Ctx) error {
	fh, err := c.FormFile("photo")
	if err != nil {
		return badRequest(c, "photo file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "photo file is unreadable")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return badRequest(c, "photo file is unreadable")
	}

	member, err := h.members.UploadPhoto(c.UserContext(), c.Params("id"), data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": member})
}

// RefreshRemaining handles POST /v1/admin/remaining/refresh
func (h *MemberHandler) RefreshRemaining(c *fiber.Ctx) error {
	res, err := h.refresher.RefreshAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": res})
}
