package handlers

import (
	"net/http"
	"strings"

	"configurator-backend/internal/store"
)

// AdminSettings — настройки уведомлений, доступные администратору.
// Токен бота наружу не отдаём, только признак, что он задан.
type AdminSettings struct {
	TelegramBotToken    string `json:"telegramBotToken,omitempty"`
	TelegramBotTokenSet bool   `json:"telegramBotTokenSet"`
	TelegramChatID      string `json:"telegramChatId"`
	NotifyOnSave        *bool  `json:"notifyOnSave,omitempty"`
}

func toAdminSettings(st *store.Settings) AdminSettings {
	notify := st.NotifyOnSave
	return AdminSettings{
		TelegramBotTokenSet: st.TelegramBotToken != "",
		TelegramChatID:      st.TelegramChatID,
		NotifyOnSave:        &notify,
	}
}

// GET/POST /api/admin/settings
func (e *Env) HandleAdminSettings(w http.ResponseWriter, r *http.Request) {
	if !e.requireAdmin(w, r) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		st, err := e.Settings.LoadSettings(r.Context())
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSON(w, toAdminSettings(st))

	case http.MethodPost:
		var req AdminSettings
		if err := decodeJSON(r, &req); err != nil {
			e.writeError(w, r, err)
			return
		}
		st, err := e.Settings.LoadSettings(r.Context())
		if err != nil {
			e.writeError(w, r, err)
			return
		}

		// Обновляем только если что-то прислали
		if v := strings.TrimSpace(req.TelegramBotToken); v != "" {
			st.TelegramBotToken = v
		}
		if v := strings.TrimSpace(req.TelegramChatID); v != "" {
			st.TelegramChatID = v
		}
		if req.NotifyOnSave != nil {
			st.NotifyOnSave = *req.NotifyOnSave
		}

		if err := e.Settings.SaveSettings(r.Context(), st); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.Log.Info("admin settings updated", "chat_id", st.TelegramChatID, "notify_on_save", st.NotifyOnSave)
		e.writeJSON(w, toAdminSettings(st))

	default:
		e.methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}
