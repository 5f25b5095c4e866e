package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"configurator-backend/internal/domain"
	"configurator-backend/internal/platform/apierr"
)

const adminUser = "admin"

// requireAdmin проверяет Basic-авторизацию администратора.
// false — ответ уже записан.
func (e *Env) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if e.AdminPasswordHash == "" {
		e.writeError(w, r, apierr.New(http.StatusForbidden, "forbidden", errors.New("admin access is disabled")))
		return false
	}
	user, pass, ok := r.BasicAuth()
	if !ok || user != adminUser ||
		bcrypt.CompareHashAndPassword([]byte(e.AdminPasswordHash), []byte(pass)) != nil {
		w.Header().Set("WWW-Authenticate", `Basic realm="configurator admin"`)
		e.writeError(w, r, apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("invalid credentials")))
		return false
	}
	return true
}

// HashAdminPassword — для генерации ADMIN_PASSWORD_HASH.
func HashAdminPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type adminConfiguration struct {
	ID                    string           `json:"id"`
	Selections            domain.Selection `json:"selections"`
	InstallationRequested bool             `json:"installationRequested"`
	Location              string           `json:"location"`
	Total                 domain.Money     `json:"total"`
	CreatedAt             time.Time        `json:"createdAt"`
	ShareURL              string           `json:"shareUrl"`
	ClientIP              string           `json:"clientIp"`
}

// GET /api/admin/configurations?limit=50&offset=0
func (e *Env) HandleAdminConfigurations(w http.ResponseWriter, r *http.Request) {
	if !e.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		e.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := e.Gateway.List(r.Context(), limit, offset)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	out := make([]adminConfiguration, 0, len(items))
	for _, cfg := range items {
		out = append(out, adminConfiguration{
			ID:                    cfg.ID,
			Selections:            cfg.Selections,
			InstallationRequested: cfg.InstallationRequested,
			Location:              cfg.Location,
			Total:                 cfg.ComputedTotal,
			CreatedAt:             cfg.CreatedAt,
			ShareURL:              e.shareURL(cfg.ShareToken),
			ClientIP:              cfg.ClientIP,
		})
	}
	e.writeJSON(w, out)
}
