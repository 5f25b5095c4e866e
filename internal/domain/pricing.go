package domain

import (
	"fmt"
	"math"
)

// Difficulty — сложность монтажа.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultLocation — город по умолчанию для расчёта монтажа.
const DefaultLocation = "kiev"

// InstallationComplexity — производное значение от (тип окна, материал).
type InstallationComplexity struct {
	RequiresInstallation bool       `json:"requiresInstallation"`
	Difficulty           Difficulty `json:"difficulty"`
	BasePrice            Money      `json:"basePrice"`
}

// PricingTable — тарифы монтажа и коэффициенты по городам.
type PricingTable struct {
	InstallationBase    Money              `json:"installation_base"`    // средняя сложность
	InstallationComplex Money              `json:"installation_complex"` // высокая сложность
	Delivery            Money              `json:"delivery"`
	LocationMultipliers map[string]float64 `json:"locationMultipliers"`

	// Окна, требующие сложного монтажа, и материалы, требующие монтажа средней сложности.
	HardWindowTypes []string `json:"hardWindowTypes"`
	MediumMaterials []string `json:"mediumMaterials"`
}

// DefaultPricingTable — тарифы сайта.
func DefaultPricingTable() PricingTable {
	return PricingTable{
		InstallationBase:    1500,
		InstallationComplex: 2500,
		Delivery:            200,
		LocationMultipliers: map[string]float64{
			"kiev":    1.0,
			"kharkiv": 0.9,
			"odesa":   0.95,
			"dnipro":  0.9,
			"lviv":    0.85,
		},
		HardWindowTypes: []string{"mansard", "arched"},
		MediumMaterials: []string{"wood", "aluminum"},
	}
}

// Validate проверяет таблицу на отрицательные значения.
func (t PricingTable) Validate() error {
	if t.InstallationBase < 0 || t.InstallationComplex < 0 || t.Delivery < 0 {
		return fmt.Errorf("pricing: negative installation or delivery price")
	}
	for loc, m := range t.LocationMultipliers {
		if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("pricing: bad multiplier %v for %q", m, loc)
		}
	}
	return nil
}

// ClassifyInstallationComplexity. Тип окна важнее материала: мансардное окно
// с эко-тканью всё равно "hard".
func (t PricingTable) ClassifyInstallationComplexity(windowType, material string) InstallationComplexity {
	switch {
	case windowType != "" && contains(t.HardWindowTypes, windowType):
		return InstallationComplexity{RequiresInstallation: true, Difficulty: DifficultyHard, BasePrice: t.InstallationComplex}
	case material != "" && contains(t.MediumMaterials, material):
		return InstallationComplexity{RequiresInstallation: true, Difficulty: DifficultyMedium, BasePrice: t.InstallationBase}
	default:
		return InstallationComplexity{RequiresInstallation: false, Difficulty: DifficultyEasy, BasePrice: 0}
	}
}

// LocationMultiplier — коэффициент города, 1.0 для неизвестных.
func (t PricingTable) LocationMultiplier(location string) float64 {
	if m, ok := t.LocationMultipliers[location]; ok {
		return m
	}
	return 1.0
}

// InstallationPrice округляет base*multiplier до целого (половина вверх,
// как Math.round для неотрицательных сумм).
func (t PricingTable) InstallationPrice(c InstallationComplexity, location string) Money {
	return Money(math.Round(float64(c.BasePrice) * t.LocationMultiplier(location)))
}

// LineItemPrice — цена выбранной опции шага. Шаги 1 и 2 бесплатны,
// но неизвестный id всё равно даёт PriceLookupError.
func (c *Catalog) LineItemPrice(step Step, optionID string) (Money, error) {
	switch step {
	case StepRoomType:
		if _, ok := c.rooms[optionID]; ok {
			return 0, nil
		}
	case StepWindowType:
		if _, ok := c.windows[optionID]; ok {
			return 0, nil
		}
	case StepProduct:
		if p, ok := c.products[optionID]; ok {
			return p.BasePrice, nil
		}
	case StepMaterial:
		if m, ok := c.materials[optionID]; ok {
			return m.PriceDelta, nil
		}
	case StepAdditionalOptions:
		if o, ok := c.options[optionID]; ok {
			return o.PriceDelta, nil
		}
	default:
		return 0, &InvalidStepError{Step: step}
	}
	return 0, &PriceLookupError{Step: step, OptionID: optionID}
}

// Complexity считает сложность монтажа по шагам 2 и 4.
func (c *Catalog) Complexity(sel Selection) InstallationComplexity {
	return c.Pricing.ClassifyInstallationComplexity(sel.Get(StepWindowType), sel.Get(StepMaterial))
}

// QuoteLine — строка расчёта.
type QuoteLine struct {
	Step     Step   `json:"step"`
	OptionID string `json:"optionId"`
	Price    Money  `json:"price"`
}

// Quote — полный расчёт конфигурации.
type Quote struct {
	Lines                 []QuoteLine            `json:"lines"`
	Complexity            InstallationComplexity `json:"complexity"`
	InstallationRequested bool                   `json:"installationRequested"`
	InstallationApplied   bool                   `json:"installationApplied"`
	InstallationPrice     Money                  `json:"installationPrice"`
	Location              string                 `json:"location"`
	Total                 Money                  `json:"total"`
	Warnings              []error                `json:"-"`
}

// Quote считает все строки по порядку шагов. Ошибки поиска цен не
// прерывают расчёт, а попадают в Warnings.
func (c *Catalog) Quote(sel Selection, installationRequested bool, location string) Quote {
	q := Quote{
		Complexity:            c.Complexity(sel),
		InstallationRequested: installationRequested,
		Location:              location,
	}
	for _, step := range AllSteps() {
		id := sel.Get(step)
		if id == "" {
			continue
		}
		price, err := c.LineItemPrice(step, id)
		if err != nil {
			q.Warnings = append(q.Warnings, err)
		}
		q.Lines = append(q.Lines, QuoteLine{Step: step, OptionID: id, Price: price})
		q.Total += price
	}
	// Флаг без необходимости монтажа допустим, но добавляет 0.
	if installationRequested && q.Complexity.RequiresInstallation {
		q.InstallationApplied = true
		q.InstallationPrice = c.Pricing.InstallationPrice(q.Complexity, location)
		q.Total += q.InstallationPrice
	}
	return q
}

// TotalPrice — итог конфигурации.
func (c *Catalog) TotalPrice(sel Selection, installationRequested bool, location string) (Money, []error) {
	q := c.Quote(sel, installationRequested, location)
	return q.Total, q.Warnings
}
