package handler

import (
	"net/http"

	"github.com/mcoot/gameaccounts/internal/api/response"
)

// ProviderLister reports the enabled OAuth providers
type ProviderLister interface {
	Providers() []string
}

// ProviderHandler handles GET /api/v1/providers
type ProviderHandler struct {
	providers ProviderLister
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(providers ProviderLister) *ProviderHandler {
	return &ProviderHandler{providers: providers}
}

// List handles GET /api/v1/providers
func (h *ProviderHandler) List(w http.ResponseWriter, _ *http.Request) {
	names := []string{}
	if h.providers != nil {
		names = append(names, h.providers.Providers()...)
	}
	response.JSON(w, http.StatusOK, response.ProvidersResponse{Providers: names})
}
