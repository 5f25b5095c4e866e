package handlers

import (
	"errors"
	"net/http"
	"strings"

	"configurator-backend/internal/assets"
	"configurator-backend/internal/configurator"
)

type arResponse struct {
	ProductID  string             `json:"productId"`
	Capability string             `json:"capability"`
	Available  bool               `json:"available"`
	Model      *assets.Descriptor `json:"model,omitempty"`
	// Fallback — статичное изображение для 2D-просмотра.
	Fallback string `json:"fallbackImage,omitempty"`
}

// GET /api/ar/{productId}?capability=webxr (или заголовок X-AR-Capability)
func (e *Env) HandleAR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		e.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	productID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/ar/"), "/")
	if productID == "" {
		e.writeError(w, r, badRequest("product id is required"))
		return
	}
	raw := r.URL.Query().Get("capability")
	if raw == "" {
		raw = r.Header.Get("X-AR-Capability")
	}
	capability := configurator.ParseCapability(raw)

	resp := arResponse{ProductID: productID, Capability: string(capability)}
	if p, ok := e.Catalog.Product(productID); ok {
		resp.Fallback = p.Image
	}

	if e.AR.IsARAvailable(productID, capability) && e.Models != nil {
		d, err := e.Models.Descriptor(r.Context(), productID)
		switch {
		case err == nil:
			resp.Available = true
			resp.Model = &d
		case errors.Is(err, assets.ErrNoModel):
			// продукт помечен как AR, но модель ещё не загружена
			e.Log.Warn("ar model missing", "product_id", productID)
		default:
			e.Log.Error("ar model resolve failed", "product_id", productID, "error", err.Error())
		}
	}
	e.Metrics.ARCheck(resp.Available)
	e.writeJSON(w, resp)
}
