package configurator

import (
	"encoding/json"
	"strings"

	"configurator-backend/internal/domain"
)

// SnapshotKey — ключ снимка в хранилище сессий.
const SnapshotKey = "configurator_selections"

const (
	keyInstallation       = "installation_requested"
	keyLocation           = "location"
	keyCurrentStep        = "current_step"
	legacyKeyInstallation = "installation_service"
	legacyStepPrefix      = "step_"
)

// Snapshot — плоская JSON-карта выбора в сессии:
// {"1":"bedroom", ..., "installation_requested":true, "location":"kiev"}.
type Snapshot struct {
	Selections            domain.Selection
	InstallationRequested bool
	Location              string
	// CurrentStep пишется только в серверную сессию; 0 — не задан.
	CurrentStep domain.Step
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Selections)+2)
	for k, v := range s.Selections.StringMap() {
		out[k] = v
	}
	if s.InstallationRequested {
		out[keyInstallation] = true
	}
	if s.Location != "" {
		out[keyLocation] = s.Location
	}
	if s.CurrentStep.Valid() {
		out[keyCurrentStep] = int(s.CurrentStep)
	}
	return json.Marshal(out)
}

// UnmarshalJSON принимает и старые ключи "step_N"/"installation_service".
// Всё неизвестное молча пропускается.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	snap := Snapshot{Selections: domain.Selection{}}
	for k, v := range raw {
		switch k {
		case keyInstallation, legacyKeyInstallation:
			var b bool
			if json.Unmarshal(v, &b) == nil && b {
				snap.InstallationRequested = true
			}
			continue
		case keyLocation:
			var loc string
			if json.Unmarshal(v, &loc) == nil {
				snap.Location = loc
			}
			continue
		case keyCurrentStep:
			var n int
			if json.Unmarshal(v, &n) == nil && domain.Step(n).Valid() {
				snap.CurrentStep = domain.Step(n)
			}
			continue
		}
		step, ok := domain.ParseStepKey(strings.TrimPrefix(k, legacyStepPrefix))
		if !ok {
			continue
		}
		var id string
		if json.Unmarshal(v, &id) != nil || id == "" {
			continue
		}
		snap.Selections[step] = id
	}
	*s = snap
	return nil
}

// DecodeSnapshot — испорченный снимок трактуется как пустой.
func DecodeSnapshot(data []byte) Snapshot {
	var s Snapshot
	if len(data) == 0 || json.Unmarshal(data, &s) != nil {
		return Snapshot{Selections: domain.Selection{}}
	}
	return s
}
