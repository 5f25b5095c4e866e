package handlers

import (
	"net/http"
	"strings"

	"configurator-backend/internal/configurator"
	"configurator-backend/internal/domain"
)

type saveConfigurationRequest struct {
	// Без selections сохраняется состояние текущей сессии.
	Selections            *domain.Selection `json:"selections"`
	InstallationRequested *bool             `json:"installationRequested"`
	TotalPrice            *domain.Money     `json:"totalPrice"`
	Location              string            `json:"location"`
	RequestID             string            `json:"requestId"`
}

type saveConfigurationResponse struct {
	ConfigID    string           `json:"configId"`
	ShareToken  string           `json:"shareToken"`
	ShareURL    string           `json:"shareUrl"`
	CheckoutURL string           `json:"checkoutUrl"`
	Total       domain.Money     `json:"total"`
	Created     bool             `json:"created"`
	Warnings    []domain.Warning `json:"warnings,omitempty"`
}

// POST /api/configurations
func (e *Env) HandleConfigurations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		e.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req saveConfigurationRequest
	if err := decodeJSON(r, &req); err != nil {
		e.writeError(w, r, err)
		return
	}

	m, _, err := e.loadMachine(w, r)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	save := configurator.SaveRequest{
		Selections:            m.Selections(),
		InstallationRequested: m.InstallationRequested(),
		Location:              m.Location(),
		ClientTotal:           req.TotalPrice,
		IdempotencyKey:        strings.TrimSpace(r.Header.Get("Idempotency-Key")),
		ClientIP:              clientIP(r),
	}
	if req.Selections != nil {
		save.Selections = *req.Selections
	}
	if req.InstallationRequested != nil {
		save.InstallationRequested = *req.InstallationRequested
	}
	if req.Location != "" {
		save.Location = req.Location
	}
	if save.IdempotencyKey == "" {
		save.IdempotencyKey = strings.TrimSpace(req.RequestID)
	}
	if len(save.Selections) == 0 {
		e.writeError(w, r, badRequest("nothing to save: no selections"))
		return
	}

	res, err := e.Gateway.Save(r.Context(), save)
	if err != nil {
		e.writeError(w, r, err)
		return
	}

	cfg := res.Configuration
	resp := saveConfigurationResponse{
		ConfigID:    cfg.ID,
		ShareToken:  cfg.ShareToken,
		ShareURL:    e.shareURL(cfg.ShareToken),
		CheckoutURL: e.checkoutURL(cfg.ID),
		Total:       cfg.ComputedTotal,
		Created:     res.Created,
	}
	for _, wrn := range res.Warnings {
		resp.Warnings = append(resp.Warnings, domain.WarningFrom(wrn))
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	e.writeJSONStatus(w, status, resp)
}

type sharedConfigurationResponse struct {
	ID                    string                   `json:"id"`
	Selections            domain.Selection         `json:"selections"`
	InstallationRequested bool                     `json:"installationRequested"`
	Location              string                   `json:"location"`
	Total                 domain.Money             `json:"total"`
	CreatedAt             string                   `json:"createdAt"`
	Summary               configurator.SummaryView `json:"summary"`
	CheckoutURL           string                   `json:"checkoutUrl"`
}

// GET /api/configurations/{token}
func (e *Env) HandleConfigurationByToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		e.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	token := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/configurations/"), "/")

	cfg, err := e.Gateway.GetByShareToken(r.Context(), token)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	e.writeJSON(w, sharedConfigurationResponse{
		ID:                    cfg.ID,
		Selections:            cfg.Selections,
		InstallationRequested: cfg.InstallationRequested,
		Location:              cfg.Location,
		Total:                 cfg.ComputedTotal,
		CreatedAt:             cfg.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Summary:               configurator.Project(e.Catalog, cfg.Selections, cfg.InstallationRequested, cfg.Location),
		CheckoutURL:           e.checkoutURL(cfg.ID),
	})
}
