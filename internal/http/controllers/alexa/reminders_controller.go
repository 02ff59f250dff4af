// Package alexa contiene los controllers que consume la skill autenticada.
package alexa

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dropDatabas3/tomora/internal/http/helpers"
	"github.com/dropDatabas3/tomora/internal/http/middlewares"
	svc "github.com/dropDatabas3/tomora/internal/http/services/alexa"
	"github.com/dropDatabas3/tomora/internal/observability/logger"
)

const maxBodySize = 32 * 1024 // 32KB

// RemindersController maneja /alexa/reminders. Asume que RequireAuth ya
// corrió: la identidad sale del contexto, nunca del request.
type RemindersController struct {
	service svc.RemindersService
}

// NewRemindersController crea el controller de recordatorios.
func NewRemindersController(s svc.RemindersService) *RemindersController {
	return &RemindersController{service: s}
}

// List maneja GET /alexa/reminders.
func (c *RemindersController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("alexa.reminders.list"))

	user, ok := middlewares.GetAuthUser(ctx)
	if !ok {
		helpers.WriteError(w, helpers.ErrMissingToken)
		return
	}

	result, err := c.service.List(ctx, user.ID, user.Name)
	if err != nil {
		log.Error("list reminders failed", logger.Err(err))
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, result)
}

// Create maneja POST /alexa/reminders.
func (c *RemindersController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("alexa.reminders.create"))

	user, ok := middlewares.GetAuthUser(ctx)
	if !ok {
		helpers.WriteError(w, helpers.ErrMissingToken)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req svc.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteError(w, helpers.ErrInvalidJSON)
		return
	}

	result, err := c.service.Create(ctx, user.ID, req)
	if err != nil {
		log.Debug("create reminder failed", logger.Err(err))
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, result)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidRequest):
		helpers.WriteError(w, helpers.ErrInvalidRequest)
	case errors.Is(err, svc.ErrStoreUnavailable):
		helpers.WriteError(w, helpers.ErrStoreUnavailable)
	default:
		helpers.WriteError(w, helpers.ErrInternal)
	}
}
