// Package configurator — пошаговый выбор конфигурации, сводка, AR и сохранение.
package configurator

import (
	"configurator-backend/internal/domain"
)

// Machine — состояние одной незавершённой конфигурации.
// Не потокобезопасна: каждый HTTP-запрос восстанавливает свою копию из снимка.
type Machine struct {
	catalog *domain.Catalog

	currentStep           domain.Step
	selections            domain.Selection
	installationRequested bool
	location              string
}

// NewMachine — пустая конфигурация на шаге 1.
func NewMachine(cat *domain.Catalog) *Machine {
	return &Machine{
		catalog:     cat,
		currentStep: domain.StepRoomType,
		selections:  domain.Selection{},
		location:    domain.DefaultLocation,
	}
}

// SelectResult — нефатальные предупреждения выбора.
type SelectResult struct {
	Warnings []error
}

// Select записывает выбор шага. Шаг не переключается.
func (m *Machine) Select(step domain.Step, optionID string) (SelectResult, error) {
	if !step.Valid() {
		return SelectResult{}, &domain.InvalidStepError{Step: step}
	}
	m.selections[step] = optionID

	var res SelectResult
	if _, err := m.catalog.LineItemPrice(step, optionID); err != nil {
		res.Warnings = append(res.Warnings, err)
	}
	if step == domain.StepProduct || step == domain.StepMaterial {
		if w := m.materialWarning(); w != nil {
			res.Warnings = append(res.Warnings, w)
		}
	}
	return res, nil
}

// Advance — автопереход после выбора: на следующий шаг, если он есть.
func (m *Machine) Advance(from domain.Step) error {
	if !from.Valid() {
		return &domain.InvalidStepError{Step: from}
	}
	if from < domain.StepAdditionalOptions {
		return m.GoToStep(from + 1)
	}
	return nil
}

// GoToStep — свободная навигация по шагам 1..5.
func (m *Machine) GoToStep(step domain.Step) error {
	if !step.Valid() {
		return &domain.InvalidStepError{Step: step}
	}
	m.currentStep = step
	return nil
}

// RemoveSelection очищает шаг и возвращает пользователя на него.
func (m *Machine) RemoveSelection(step domain.Step) error {
	if !step.Valid() {
		return &domain.InvalidStepError{Step: step}
	}
	delete(m.selections, step)
	m.currentStep = step
	return nil
}

func (m *Machine) ToggleInstallation(requested bool) {
	m.installationRequested = requested
}

// SetLocation — город для коэффициента монтажа; пустой сбрасывает на умолчание.
func (m *Machine) SetLocation(location string) {
	if location == "" {
		location = domain.DefaultLocation
	}
	m.location = location
}

// Restore заменяет состояние целиком и возвращает на шаг 1.
func (m *Machine) Restore(s Snapshot) {
	m.selections = s.Selections.Clone()
	m.installationRequested = s.InstallationRequested
	m.currentStep = domain.StepRoomType
	m.SetLocation(s.Location)
}

// Resume — как Restore, но продолжает с сохранённого шага, если он есть.
// Используется для серверной сессии между запросами.
func (m *Machine) Resume(s Snapshot) {
	m.Restore(s)
	if s.CurrentStep.Valid() {
		m.currentStep = s.CurrentStep
	}
}

func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Selections:            m.selections.Clone(),
		InstallationRequested: m.installationRequested,
		Location:              m.location,
		CurrentStep:           m.currentStep,
	}
}

func (m *Machine) CurrentStep() domain.Step { return m.currentStep }

func (m *Machine) Selections() domain.Selection { return m.selections.Clone() }

func (m *Machine) InstallationRequested() bool { return m.installationRequested }

func (m *Machine) Location() string { return m.location }

func (m *Machine) Catalog() *domain.Catalog { return m.catalog }

// Completed: выбраны все пять шагов.
func (m *Machine) Completed() bool {
	for _, step := range domain.AllSteps() {
		if m.selections.Get(step) == "" {
			return false
		}
	}
	return true
}

func (m *Machine) Complexity() domain.InstallationComplexity {
	return m.catalog.Complexity(m.selections)
}

// InstallationAvailable — показывать ли переключатель монтажа.
func (m *Machine) InstallationAvailable() bool {
	return m.Complexity().RequiresInstallation
}

// RecommendedProducts — подсказка по паре помещение/окно. Только
// продукты, которые есть в каталоге.
func (m *Machine) RecommendedProducts() []string {
	ids := m.catalog.Recommended(m.selections.Get(domain.StepRoomType), m.selections.Get(domain.StepWindowType))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if m.catalog.Has(domain.StepProduct, id) {
			out = append(out, id)
		}
	}
	return out
}

// SuitableProducts — продукты каталога, у которых выбранное помещение
// есть в списке совместимых. Без помещения список пуст.
func (m *Machine) SuitableProducts() []string {
	room := m.selections.Get(domain.StepRoomType)
	if room == "" {
		return nil
	}
	var out []string
	for _, p := range m.catalog.Products {
		if p.SuitsRoom(room) {
			out = append(out, p.ID)
		}
	}
	return out
}

// MaterialCompatibility делит материалы по выбранному продукту.
// Без продукта (или с неизвестным) оба списка пусты.
func (m *Machine) MaterialCompatibility() (compatible, incompatible []string) {
	p, ok := m.catalog.Product(m.selections.Get(domain.StepProduct))
	if !ok {
		return nil, nil
	}
	for _, mat := range m.catalog.Materials {
		if p.SupportsMaterial(mat.ID) {
			compatible = append(compatible, mat.ID)
		} else {
			incompatible = append(incompatible, mat.ID)
		}
	}
	return compatible, incompatible
}

func (m *Machine) Summary() SummaryView {
	return Project(m.catalog, m.selections, m.installationRequested, m.location)
}

func (m *Machine) materialWarning() error {
	productID := m.selections.Get(domain.StepProduct)
	materialID := m.selections.Get(domain.StepMaterial)
	if productID == "" || materialID == "" {
		return nil
	}
	p, ok := m.catalog.Product(productID)
	if !ok || p.SupportsMaterial(materialID) {
		return nil
	}
	return &domain.IncompatibleMaterialWarning{MaterialID: materialID, ProductID: productID}
}

// Hints — подсказки для клиента. Ничего не блокируют.
type Hints struct {
	RecommendedProducts   []string `json:"recommendedProducts"`
	SuitableProducts      []string `json:"suitableProducts"`
	CompatibleMaterials   []string `json:"compatibleMaterials"`
	IncompatibleMaterials []string `json:"incompatibleMaterials"`
	InstallationAvailable bool     `json:"installationAvailable"`
}

func (m *Machine) Hints() Hints {
	compatible, incompatible := m.MaterialCompatibility()
	return Hints{
		RecommendedProducts:   m.RecommendedProducts(),
		SuitableProducts:      nonNil(m.SuitableProducts()),
		CompatibleMaterials:   nonNil(compatible),
		IncompatibleMaterials: nonNil(incompatible),
		InstallationAvailable: m.InstallationAvailable(),
	}
}

// State — полное представление состояния для API.
type State struct {
	CurrentStep           int                           `json:"currentStep"`
	Selections            domain.Selection              `json:"selections"`
	InstallationRequested bool                          `json:"installationRequested"`
	Location              string                        `json:"location"`
	Completed             bool                          `json:"completed"`
	Complexity            domain.InstallationComplexity `json:"complexity"`
	Hints                 Hints                         `json:"hints"`
	Summary               SummaryView                   `json:"summary"`
	Warnings              []domain.Warning              `json:"warnings,omitempty"`
}

// View собирает State; extra — предупреждения последней операции.
func (m *Machine) View(extra ...error) State {
	st := State{
		CurrentStep:           int(m.currentStep),
		Selections:            m.selections.Clone(),
		InstallationRequested: m.installationRequested,
		Location:              m.location,
		Completed:             m.Completed(),
		Complexity:            m.Complexity(),
		Hints:                 m.Hints(),
		Summary:               m.Summary(),
	}
	for _, err := range extra {
		st.Warnings = append(st.Warnings, domain.WarningFrom(err))
	}
	return st
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
