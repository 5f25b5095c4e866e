package domain

import (
	"errors"
	"fmt"
)

// InvalidStepError — номер шага вне [1, StepCount].
type InvalidStepError struct {
	Step Step
}

func (e *InvalidStepError) Error() string {
	return fmt.Sprintf("invalid step %d: must be between 1 and %d", int(e.Step), StepCount)
}

// PriceLookupError — опция не найдена в справочнике. Не фатальна: строка
// сводки получает цену 0, выбор сохраняется.
type PriceLookupError struct {
	Step     Step
	OptionID string
}

func (e *PriceLookupError) Error() string {
	return fmt.Sprintf("no price for option %q at step %s", e.OptionID, e.Step)
}

// IncompatibleMaterialWarning — материал не входит в список совместимых
// с выбранным продуктом. Выбор не блокируется.
type IncompatibleMaterialWarning struct {
	MaterialID string
	ProductID  string
}

func (e *IncompatibleMaterialWarning) Error() string {
	return fmt.Sprintf("material %q is not compatible with product %q", e.MaterialID, e.ProductID)
}

// PersistenceError — не удалось надёжно сохранить конфигурацию. Повтор безопасен.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return "persistence: " + e.Op
	}
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ShareTokenNotFoundError — неизвестный или просроченный токен ссылки.
type ShareTokenNotFoundError struct {
	Token string
}

func (e *ShareTokenNotFoundError) Error() string {
	return "configuration not found for share token"
}

// ErrNotFound — общий признак "нет записи" у хранилищ.
var ErrNotFound = errors.New("not found")

// ErrDuplicateShareToken — токен уже занят, нужно сгенерировать новый.
var ErrDuplicateShareToken = errors.New("share token already exists")

// Warning — нефатальное предупреждение в ответе API.
type Warning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Step     int    `json:"step,omitempty"`
	OptionID string `json:"optionId,omitempty"`
}

// WarningFrom переводит нефатальную ошибку домена в Warning.
func WarningFrom(err error) Warning {
	var lookup *PriceLookupError
	if errors.As(err, &lookup) {
		return Warning{Code: "price_lookup", Message: err.Error(), Step: int(lookup.Step), OptionID: lookup.OptionID}
	}
	var incompatible *IncompatibleMaterialWarning
	if errors.As(err, &incompatible) {
		return Warning{Code: "incompatible_material", Message: err.Error(), Step: int(StepMaterial), OptionID: incompatible.MaterialID}
	}
	return Warning{Code: "warning", Message: err.Error()}
}
