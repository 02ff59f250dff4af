package oauth

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/tomora/internal/http/helpers"
)

// InfoController expone la configuración pública del flujo OAuth para
// cargarla en la Alexa Developer Console.
type InfoController struct {
	baseURL  string
	clientID string
}

// NewInfoController crea el controller de /oauth/info.
func NewInfoController(baseURL, clientID string) *InfoController {
	return &InfoController{baseURL: strings.TrimRight(baseURL, "/"), clientID: clientID}
}

// Info maneja GET /oauth/info.
func (c *InfoController) Info(w http.ResponseWriter, r *http.Request) {
	base := c.baseURL
	if base == "" {
		scheme := "https"
		if r.TLS == nil {
			scheme = "http"
		}
		base = scheme + "://" + r.Host
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "OAuth 2.0 configurado para Alexa",
		"endpoints": map[string]string{
			"authorization": base + "/auth",
			"token":         base + "/token",
		},
		"client_id": c.clientID,
		"note":      "Configure estes endpoints na Alexa Developer Console",
	})
}
