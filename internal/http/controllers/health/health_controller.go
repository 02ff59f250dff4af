// Package health expone el endpoint de liveness/readiness.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/tomora/internal/http/helpers"
	"github.com/dropDatabas3/tomora/internal/store/core"
)

// Controller maneja GET /healthz.
type Controller struct {
	repo core.Repository
}

func NewController(repo core.Repository) *Controller {
	return &Controller{repo: repo}
}

// Health responde el estado del proceso y del data store. Un store caído no
// tumba el health: el core OAuth de refresh sigue funcionando sin él.
func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	store := "ok"
	if err := c.repo.Ping(ctx); err != nil {
		store = "unavailable"
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"store":  store,
	})
}
