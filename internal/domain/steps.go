package domain

import (
	"encoding/json"
	"strconv"
)

// Step — позиция шага в конфигураторе. Порядок важен: опции поздних шагов
// зависят от выбора на ранних.
type Step int

const (
	StepRoomType          Step = 1
	StepWindowType        Step = 2
	StepProduct           Step = 3
	StepMaterial          Step = 4
	StepAdditionalOptions Step = 5
)

// StepCount — число шагов, фиксировано.
const StepCount = 5

// AllSteps возвращает шаги в порядке прохождения.
func AllSteps() []Step {
	return []Step{
		StepRoomType,
		StepWindowType,
		StepProduct,
		StepMaterial,
		StepAdditionalOptions,
	}
}

func (s Step) Valid() bool {
	return s >= StepRoomType && s <= StepAdditionalOptions
}

func (s Step) String() string {
	switch s {
	case StepRoomType:
		return "room_type"
	case StepWindowType:
		return "window_type"
	case StepProduct:
		return "product"
	case StepMaterial:
		return "material"
	case StepAdditionalOptions:
		return "additional_options"
	}
	return "step_" + strconv.Itoa(int(s))
}

// Key — ключ шага в снимке сессии ("1".."5").
func (s Step) Key() string {
	return strconv.Itoa(int(s))
}

// ParseStepKey разбирает ключ снимка обратно в шаг.
func ParseStepKey(key string) (Step, bool) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	s := Step(n)
	return s, s.Valid()
}

// Selection — выбор по шагам, не более одной опции на шаг.
type Selection map[Step]string

// Clone возвращает независимую копию.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Get возвращает выбранную опцию шага или "".
func (s Selection) Get(step Step) string {
	if s == nil {
		return ""
	}
	return s[step]
}

// StringMap — представление для JSON и хранилища: "3" -> "plisse_premium".
func (s Selection) StringMap() map[string]string {
	out := make(map[string]string, len(s))
	for k, v := range s {
		if v == "" {
			continue
		}
		out[k.Key()] = v
	}
	return out
}

// SelectionFromStringMap — обратное преобразование; невалидные ключи и пустые
// значения пропускаются.
func SelectionFromStringMap(m map[string]string) Selection {
	out := make(Selection, len(m))
	for k, v := range m {
		step, ok := ParseStepKey(k)
		if !ok || v == "" {
			continue
		}
		out[step] = v
	}
	return out
}

func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.StringMap())
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = SelectionFromStringMap(m)
	return nil
}
