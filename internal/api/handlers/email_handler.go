package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-catchmail/internal/api/response"
	"github.com/welldanyogia/webrana-catchmail/internal/models"
	"github.com/welldanyogia/webrana-catchmail/internal/repository"
	"github.com/welldanyogia/webrana-catchmail/internal/services"
	"github.com/welldanyogia/webrana-catchmail/internal/validator"
	"github.com/welldanyogia/webrana-catchmail/internal/web"
)

// EmailHandler serves the inbox pages and their JSON mirrors
type EmailHandler struct {
	inbox  *services.InboxService
	logger *slog.Logger
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(inbox *services.InboxService, logger *slog.Logger) *EmailHandler {
	return &EmailHandler{inbox: inbox, logger: logger}
}

// EmailDetailResponse is the JSON form of one email with its neighbours
type EmailDetailResponse struct {
	Email      *models.Email `json:"email"`
	PreviousID *uint         `json:"previous_id"`
	NextID     *uint         `json:"next_id"`
}

// List handles GET /emails
func (h *EmailHandler) List(c echo.Context) error {
	items, err := h.inbox.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "failed to list emails", err)
	}

	return c.Render(http.StatusOK, web.PageList, web.ListPage{Emails: items})
}

// Get handles GET /emails/:id
func (h *EmailHandler) Get(c echo.Context) error {
	id, err := validator.ParseID(c.Param("id"))
	if err != nil {
		return c.Render(http.StatusNotFound, web.PageNotFound, "That email does not exist.")
	}

	detail, err := h.inbox.Detail(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.Render(http.StatusNotFound, web.PageNotFound, fmt.Sprintf("Email %d does not exist or has expired.", id))
	}
	if err != nil {
		return h.fail(c, "failed to load email", err)
	}

	return c.Render(http.StatusOK, web.PageDetail, web.DetailPage{
		Email:    detail.Email,
		Previous: detail.Previous,
		Next:     detail.Next,
	})
}

// Latest handles GET / by redirecting to the newest email
func (h *EmailHandler) Latest(c echo.Context) error {
	email, err := h.inbox.Latest(c.Request().Context())
	if errors.Is(err, repository.ErrNotFound) {
		return c.Render(http.StatusNotFound, web.PageEmpty, nil)
	}
	if err != nil {
		return h.fail(c, "failed to load latest email", err)
	}

	return c.Redirect(http.StatusFound, fmt.Sprintf("/emails/%d", email.ID))
}

// APIList handles GET /api/emails
func (h *EmailHandler) APIList(c echo.Context) error {
	items, err := h.inbox.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "failed to list emails", err)
	}

	return response.Success(c, items)
}

// APIGet handles GET /api/emails/:id
func (h *EmailHandler) APIGet(c echo.Context) error {
	id, err := validator.ParseID(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid email id")
	}

	detail, err := h.inbox.Detail(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return response.NotFound(c, "email not found")
	}
	if err != nil {
		return h.fail(c, "failed to load email", err)
	}

	resp := EmailDetailResponse{Email: detail.Email}
	if detail.Previous != nil {
		resp.PreviousID = &detail.Previous.ID
	}
	if detail.Next != nil {
		resp.NextID = &detail.Next.ID
	}
	return response.Success(c, resp)
}

func (h *EmailHandler) fail(c echo.Context, msg string, err error) error {
	if h.logger != nil {
		h.logger.Error(msg, slog.Any("error", err), slog.String("path", c.Request().URL.Path))
	}
	return response.InternalError(c, msg)
}
