package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"configurator-backend/internal/configurator"
	"configurator-backend/internal/domain"
)

// loadMachine восстанавливает конфигуратор текущей сессии.
// Пустой или испорченный снимок — чистый старт с шага 1.
func (e *Env) loadMachine(w http.ResponseWriter, r *http.Request) (*configurator.Machine, string, error) {
	sid, err := e.Cookies.Ensure(w, r)
	if err != nil {
		return nil, "", err
	}
	m := configurator.NewMachine(e.Catalog)
	raw, err := e.Sessions.Load(r.Context(), sid, configurator.SnapshotKey)
	if err != nil {
		// потерянный снимок не мешает работе
		e.Log.Warn("load session snapshot failed", "error", err.Error())
		return m, sid, nil
	}
	m.Resume(configurator.DecodeSnapshot(raw))
	return m, sid, nil
}

func (e *Env) saveMachine(r *http.Request, sid string, m *configurator.Machine) error {
	raw, err := json.Marshal(m.Snapshot())
	if err != nil {
		return err
	}
	if err := e.Sessions.Save(r.Context(), sid, configurator.SnapshotKey, raw); err != nil {
		return fmt.Errorf("save session snapshot: %w", err)
	}
	return nil
}

// mutate — общий каркас мутаций: загрузить, применить, сохранить, вернуть состояние.
func (e *Env) mutate(w http.ResponseWriter, r *http.Request, apply func(m *configurator.Machine) ([]error, error)) {
	m, sid, err := e.loadMachine(w, r)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	warnings, err := apply(m)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	if err := e.saveMachine(r, sid, m); err != nil {
		e.writeError(w, r, err)
		return
	}
	for _, wrn := range warnings {
		e.Metrics.Warning(domain.WarningFrom(wrn).Code)
	}
	e.writeJSON(w, m.View(warnings...))
}

// GET /api/configurator
func (e *Env) HandleConfiguratorState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		e.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	m, _, err := e.loadMachine(w, r)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	e.writeJSON(w, m.View())
}

type selectRequest struct {
	Step     int    `json:"step"`
	OptionID string `json:"optionId"`
	// Advance — перейти на следующий шаг после выбора
	Advance bool `json:"advance"`
}

// POST /api/configurator/select
func (e *Env) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		e.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		e.writeError(w, r, err)
		return
	}
	if req.OptionID == "" {
		e.writeError(w, r, badRequest("optionId is required"))
		return
	}
	step := domain.Step(req.Step)

	e.mutate(w, r, func(m *configurator.Machine) ([]error, error) {
		res, err := m.Select(step, req.OptionID)
		if err != nil {
			return nil, err
		}
		e.Metrics.Selection(step.String())
		if req.Advance {
			if err := m.Advance(step); err != nil {
				return nil, err
			}
		}
		return res.Warnings, nil
	})
}

type stepRequest struct {
	Step int `json:"step"`
}

// POST /api/configurator/step
func (e *Env) HandleGoToStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		e.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req stepRequest
	if err := decodeJSON(r, &req); err != nil {
		e.writeError(w, r, err)
		return
	}
	e.mutate(w, r, func(m *configurator.Machine) ([]error, error) {
		return nil, m.GoToStep(domain.Step(req.Step))
	})
}

// DELETE /api/configurator/selection?step=N
func (e *Env) HandleRemoveSelection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		e.methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	n, err := strconv.Atoi(r.URL.Query().Get("step"))
	if err != nil {
		e.writeError(w, r, badRequest("step must be a number"))
		return
	}
	e.mutate(w, r, func(m *configurator.Machine) ([]error, error) {
		return nil, m.RemoveSelection(domain.Step(n))
	})
}

type installationRequest struct {
	Requested bool `json:"requested"`
}

// POST /api/configurator/installation
func (e *Env) HandleInstallation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		e.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req installationRequest
	if err := decodeJSON(r, &req); err != nil {
		e.writeError(w, r, err)
		return
	}
	e.mutate(w, r, func(m *configurator.Machine) ([]error, error) {
		m.ToggleInstallation(req.Requested)
		return nil, nil
	})
}

type locationRequest struct {
	Location string `json:"location"`
}

// POST /api/configurator/location
func (e *Env) HandleLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		e.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		e.writeError(w, r, err)
		return
	}
	e.mutate(w, r, func(m *configurator.Machine) ([]error, error) {
		m.SetLocation(req.Location)
		return nil, nil
	})
}

// POST /api/configurator/restore — тело: снимок из localStorage клиента.
func (e *Env) HandleRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		e.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var snap configurator.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		e.writeError(w, r, err)
		return
	}
	e.mutate(w, r, func(m *configurator.Machine) ([]error, error) {
		m.Restore(snap)
		return nil, nil
	})
}

// POST /api/configurator/reset
func (e *Env) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		e.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	// сброс завершает сессию: снимок удаляется, кука гасится,
	// новая сессия начнётся со следующего запроса
	if sid, ok := e.Cookies.SessionID(r); ok {
		if err := e.Sessions.Delete(r.Context(), sid, configurator.SnapshotKey); err != nil {
			e.writeError(w, r, err)
			return
		}
	}
	e.Cookies.Clear(w)
	e.writeJSON(w, configurator.NewMachine(e.Catalog).View())
}
