// Package notify — уведомления менеджеру о сохранённых конфигурациях.
package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"configurator-backend/internal/configurator"
	"configurator-backend/internal/domain"
	"configurator-backend/internal/platform/logger"
	"configurator-backend/internal/store"
)

const defaultTelegramAPI = "https://api.telegram.org"

// SettingsSource — откуда брать актуальный токен и чат (таблица settings).
type SettingsSource interface {
	LoadSettings(ctx context.Context) (*store.Settings, error)
}

type TelegramConfig struct {
	// Значения из окружения; настройки из БД имеют приоритет.
	BotToken string
	ChatID   string

	Settings SettingsSource
	Catalog  *domain.Catalog
	// ShareURL строит публичную ссылку по токену.
	ShareURL func(token string) string

	APIBaseURL string
	HTTPClient *http.Client
	Log        *logger.Logger
}

// Telegram отправляет сообщение в чат менеджеров через Bot API.
type Telegram struct {
	cfg TelegramConfig
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultTelegramAPI
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	return &Telegram{cfg: cfg}
}

// credentials: токен и чат из settings, при пустых значениях из окружения.
// enabled=false, если в настройках уведомления выключены.
func (t *Telegram) credentials(ctx context.Context) (token, chatID string, enabled bool) {
	token = strings.TrimSpace(t.cfg.BotToken)
	chatID = strings.TrimSpace(t.cfg.ChatID)
	enabled = true
	if t.cfg.Settings == nil {
		return token, chatID, enabled
	}
	st, err := t.cfg.Settings.LoadSettings(ctx)
	if err != nil {
		t.cfg.Log.Warn("telegram: load settings failed", "error", err.Error())
		return token, chatID, enabled
	}
	if v := strings.TrimSpace(st.TelegramBotToken); v != "" {
		token = v
	}
	if v := strings.TrimSpace(st.TelegramChatID); v != "" {
		chatID = v
	}
	if st.TelegramBotToken != "" || st.TelegramChatID != "" {
		enabled = st.NotifyOnSave
	}
	return token, chatID, enabled
}

// ConfigurationSaved — уведомление о новой конфигурации.
func (t *Telegram) ConfigurationSaved(ctx context.Context, cfg *domain.Configuration) error {
	token, chatID, enabled := t.credentials(ctx)
	if !enabled || token == "" || chatID == "" {
		t.cfg.Log.Debug("telegram: skip send, notifications disabled or not configured")
		return nil
	}
	return t.send(ctx, token, chatID, t.message(cfg))
}

func (t *Telegram) message(cfg *domain.Configuration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🪟 <b>Новая конфигурация</b> %s\n\n", html.EscapeString(cfg.ID))
	if t.cfg.Catalog != nil {
		view := configurator.Project(t.cfg.Catalog, cfg.Selections, cfg.InstallationRequested, cfg.Location)
		for _, item := range view.Items {
			fmt.Fprintf(&b, "• %s: %d ₴\n", html.EscapeString(item.Label), int64(item.Price))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Город: %s\n", html.EscapeString(cfg.Location))
	fmt.Fprintf(&b, "Итого: <b>%d ₴</b>\n", int64(cfg.ComputedTotal))
	if t.cfg.ShareURL != nil && cfg.ShareToken != "" {
		fmt.Fprintf(&b, "Ссылка: %s", html.EscapeString(t.cfg.ShareURL(cfg.ShareToken)))
	}
	return b.String()
}

func (t *Telegram) send(ctx context.Context, token, chatID, text string) error {
	apiURL := strings.TrimRight(t.cfg.APIBaseURL, "/") + "/bot" + token + "/sendMessage"

	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.cfg.HTTPClient.Do(req)
	if err != nil {
		// текст ошибки содержит URL с токеном
		return fmt.Errorf("telegram: send failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram: non-OK status %s", resp.Status)
	}
	return nil
}
