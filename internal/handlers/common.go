package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"configurator-backend/internal/assets"
	"configurator-backend/internal/configurator"
	"configurator-backend/internal/domain"
	"configurator-backend/internal/platform/apierr"
	"configurator-backend/internal/platform/logger"
	"configurator-backend/internal/platform/metrics"
	"configurator-backend/internal/session"
	"configurator-backend/internal/store"
)

// SettingsStore — таблица settings (id = 1).
type SettingsStore interface {
	LoadSettings(ctx context.Context) (*store.Settings, error)
	SaveSettings(ctx context.Context, st *store.Settings) error
}

// Env хранит зависимости для хендлеров. Собирается в app.New.
type Env struct {
	Catalog  *domain.Catalog
	Sessions session.Store
	Cookies  *session.Cookies
	Gateway  *configurator.Gateway
	AR       *configurator.ARGate
	Models   *assets.Library
	// Uploads — куда админка загружает файлы моделей; nil — загрузка выключена
	Uploads  assets.Uploader
	Settings SettingsStore

	// bcrypt-хеш пароля администратора; пусто — админка выключена
	AdminPasswordHash string
	// например, "https://shoriprofen.com.ua"
	PublicBaseURL string

	Log     *logger.Logger
	Metrics *metrics.Recorder
}

// writeJSON — простой helper для JSON-ответов
func (e *Env) writeJSON(w http.ResponseWriter, v interface{}) {
	e.writeJSONStatus(w, http.StatusOK, v)
}

func (e *Env) writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		e.Log.Warn("write json failed", "error", err.Error())
	}
}

type errorBody struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// classify переводит ошибку домена в HTTP-статус и код.
func classify(err error) *apierr.Error {
	var api *apierr.Error
	if errors.As(err, &api) {
		return api
	}
	var invalid *domain.InvalidStepError
	if errors.As(err, &invalid) {
		return apierr.New(http.StatusBadRequest, "invalid_step", err)
	}
	var notFound *domain.ShareTokenNotFoundError
	if errors.As(err, &notFound) {
		return apierr.New(http.StatusNotFound, "share_token_not_found", err)
	}
	var persistence *domain.PersistenceError
	if errors.As(err, &persistence) {
		return apierr.Retry(http.StatusServiceUnavailable, "persistence_failed", errors.New("configuration could not be saved, please retry"))
	}
	return apierr.New(http.StatusInternalServerError, "internal", errors.New("internal error"))
}

func (e *Env) writeError(w http.ResponseWriter, r *http.Request, err error) {
	api := classify(err)
	if api.Status >= 500 {
		e.Log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	}
	e.writeJSONStatus(w, api.Status, errorEnvelope{Error: errorBody{
		Message:   api.Error(),
		Code:      api.Code,
		Retryable: api.Retryable,
	}})
}

func badRequest(format string, args ...interface{}) error {
	return apierr.New(http.StatusBadRequest, "bad_request", fmt.Errorf(format, args...))
}

func (e *Env) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	e.writeError(w, r, apierr.New(http.StatusMethodNotAllowed, "method_not_allowed", fmt.Errorf("method %s not allowed", r.Method)))
}

const maxBodyBytes = 64 << 10

// decodeJSON читает тело запроса; пустое тело допустимо.
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return badRequest("bad json: %v", err)
	}
	return nil
}

// clientIP — первый адрес из X-Forwarded-For, иначе RemoteAddr.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (e *Env) shareURL(token string) string {
	return strings.TrimRight(e.PublicBaseURL, "/") + "/c/" + token
}

func (e *Env) checkoutURL(configID string) string {
	return strings.TrimRight(e.PublicBaseURL, "/") + "/checkout/?config=" + configID
}

// ShareURL — для уведомлений.
func (e *Env) ShareURL(token string) string { return e.shareURL(token) }
