package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loan-service/internal/api/dto"
	"github.com/spec-kit/loan-service/internal/auth"
	"github.com/spec-kit/loan-service/internal/domain"
	"github.com/spec-kit/loan-service/internal/service"
	apperrors "github.com/spec-kit/loan-service/pkg/util"
)

// LoanApplicationsHandler exposes the loan application lifecycle.
type LoanApplicationsHandler struct {
	loans *service.LoanApplicationService
}

// NewLoanApplicationsHandler constructs handler.
func NewLoanApplicationsHandler(loans *service.LoanApplicationService) *LoanApplicationsHandler {
	return &LoanApplicationsHandler{loans: loans}
}

// List handles GET /loan-applications.
func (h *LoanApplicationsHandler) List(c *fiber.Ctx) error {
	access, err := requireAccess(c)
	if err != nil {
		return err
	}
	apps, err := h.loans.List(c.UserContext(), access)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLoanApplicationResponses(apps)})
}

// Get handles GET /loan-applications/:id.
func (h *LoanApplicationsHandler) Get(c *fiber.Ctx) error {
	return h.withApplication(c, fiber.StatusOK, h.loans.Get)
}

// Create handles POST /loan-applications.
func (h *LoanApplicationsHandler) Create(c *fiber.Ctx) error {
	access, err := requireAccess(c)
	if err != nil {
		return err
	}
	var req dto.LoanApplicationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	app, err := h.loans.Create(c.UserContext(), access, toInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewLoanApplicationResponse(*app)})
}

// Update handles PUT /loan-applications/:id.
func (h *LoanApplicationsHandler) Update(c *fiber.Ctx) error {
	var req dto.LoanApplicationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.withApplication(c, fiber.StatusOK, func(ctx context.Context, access auth.AccessContext, id int64) (*domain.LoanApplication, error) {
		return h.loans.Update(ctx, access, id, toInput(req))
	})
}

// Submit handles PUT /loan-applications/:id/submit.
func (h *LoanApplicationsHandler) Submit(c *fiber.Ctx) error {
	return h.withApplication(c, fiber.StatusOK, h.loans.Submit)
}

// Approve handles PUT /loan-applications/:id/approve.
func (h *LoanApplicationsHandler) Approve(c *fiber.Ctx) error {
	return h.withApplication(c, fiber.StatusOK, h.loans.Approve)
}

// Reject handles PUT /loan-applications/:id/reject.
func (h *LoanApplicationsHandler) Reject(c *fiber.Ctx) error {
	return h.withApplication(c, fiber.StatusOK, h.loans.Reject)
}

// AddNote handles POST /loan-applications/:id/notes.
func (h *LoanApplicationsHandler) AddNote(c *fiber.Ctx) error {
	access, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.NoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	note, err := h.loans.AddNote(c.UserContext(), access, id, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewNoteResponse(*note)})
}

type applicationAction func(ctx context.Context, access auth.AccessContext, id int64) (*domain.LoanApplication, error)

func (h *LoanApplicationsHandler) withApplication(c *fiber.Ctx, status int, action applicationAction) error {
	access, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	app, err := action(c.UserContext(), access, id)
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.NewLoanApplicationResponse(*app)})
}

func requireAccess(c *fiber.Ctx) (auth.AccessContext, error) {
	access, ok := auth.AccessFromContext(c)
	if !ok {
		return auth.AccessContext{}, apperrors.NewUnauthorized("authentication required")
	}
	return access, nil
}

func toInput(req dto.LoanApplicationRequest) service.LoanApplicationInput {
	return service.LoanApplicationInput{Amount: req.Amount, TermMonths: req.TermMonths, Purpose: req.Purpose}
}
