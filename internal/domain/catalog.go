package domain

import (
	"errors"
	"fmt"
)

// Money — сумма в целых гривнах.
type Money int64

// RoomType — тип помещения (шаг 1).
type RoomType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// WindowType — тип окна (шаг 2). SummaryLabel используется в итоговой сводке.
type WindowType struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SummaryLabel string `json:"summaryLabel"`
	Icon         string `json:"icon"`
	Description  string `json:"description"`
}

// Product — конфигурируемый продукт (шаг 3).
type Product struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Image               string   `json:"image"`
	BasePrice           Money    `json:"price"`
	ARReady             bool     `json:"arReady"`
	CompatibleMaterials []string `json:"materials"`
	CompatibleRooms     []string `json:"compatibleRooms"`
}

// SupportsMaterial — входит ли материал в список совместимых.
func (p Product) SupportsMaterial(materialID string) bool {
	return contains(p.CompatibleMaterials, materialID)
}

// SuitsRoom — подходит ли продукт для помещения.
func (p Product) SuitsRoom(roomID string) bool {
	return contains(p.CompatibleRooms, roomID)
}

// Material — материал/цвет (шаг 4).
type Material struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceDelta Money  `json:"price"`
	Color      string `json:"color"`
}

// AdditionalOption — дополнительная опция (шаг 5).
type AdditionalOption struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceDelta Money  `json:"price"`
	Icon       string `json:"icon"`
}

// Catalog — справочные данные конфигуратора. После NewCatalog не меняется
// и может безопасно читаться из разных сессий.
type Catalog struct {
	RoomTypes         []RoomType          `json:"roomTypes"`
	WindowTypes       []WindowType        `json:"windowTypes"`
	Products          []Product           `json:"products"`
	Materials         []Material          `json:"materials"`
	AdditionalOptions []AdditionalOption  `json:"additionalOptions"`
	Recommendations   map[string][]string `json:"recommendations"`
	Pricing           PricingTable        `json:"pricing"`

	rooms     map[string]RoomType
	windows   map[string]WindowType
	products  map[string]Product
	materials map[string]Material
	options   map[string]AdditionalOption
}

// NewCatalog проверяет справочник и строит индексы.
func NewCatalog(c Catalog) (*Catalog, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.rooms = make(map[string]RoomType, len(c.RoomTypes))
	for _, r := range c.RoomTypes {
		c.rooms[r.ID] = r
	}
	c.windows = make(map[string]WindowType, len(c.WindowTypes))
	for _, w := range c.WindowTypes {
		c.windows[w.ID] = w
	}
	c.products = make(map[string]Product, len(c.Products))
	for _, p := range c.Products {
		c.products[p.ID] = p
	}
	c.materials = make(map[string]Material, len(c.Materials))
	for _, m := range c.Materials {
		c.materials[m.ID] = m
	}
	c.options = make(map[string]AdditionalOption, len(c.AdditionalOptions))
	for _, o := range c.AdditionalOptions {
		c.options[o.ID] = o
	}
	if c.Pricing.LocationMultipliers == nil {
		c.Pricing.LocationMultipliers = DefaultPricingTable().LocationMultipliers
	}
	return &c, nil
}

// MustDefaultCatalog — каталог по умолчанию; паникует только при ошибке в коде.
func MustDefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultCatalog())
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

// Validate проверяет целостность справочника.
func (c Catalog) Validate() error {
	var errs []error

	rooms, err := uniqueIDs("room type", len(c.RoomTypes), func(i int) string { return c.RoomTypes[i].ID })
	errs = append(errs, err)
	windows, err := uniqueIDs("window type", len(c.WindowTypes), func(i int) string { return c.WindowTypes[i].ID })
	errs = append(errs, err)
	_, err = uniqueIDs("product", len(c.Products), func(i int) string { return c.Products[i].ID })
	errs = append(errs, err)
	materials, err := uniqueIDs("material", len(c.Materials), func(i int) string { return c.Materials[i].ID })
	errs = append(errs, err)
	_, err = uniqueIDs("additional option", len(c.AdditionalOptions), func(i int) string { return c.AdditionalOptions[i].ID })
	errs = append(errs, err)

	for _, p := range c.Products {
		if p.BasePrice < 0 {
			errs = append(errs, fmt.Errorf("product %s: negative price %d", p.ID, p.BasePrice))
		}
		for _, m := range p.CompatibleMaterials {
			if !materials[m] {
				errs = append(errs, fmt.Errorf("product %s: unknown material %q", p.ID, m))
			}
		}
		for _, r := range p.CompatibleRooms {
			if !rooms[r] {
				errs = append(errs, fmt.Errorf("product %s: unknown room type %q", p.ID, r))
			}
		}
	}
	for _, m := range c.Materials {
		if m.PriceDelta < 0 {
			errs = append(errs, fmt.Errorf("material %s: negative price %d", m.ID, m.PriceDelta))
		}
	}
	for _, o := range c.AdditionalOptions {
		if o.PriceDelta < 0 {
			errs = append(errs, fmt.Errorf("additional option %s: negative price %d", o.ID, o.PriceDelta))
		}
	}
	// Продукты в рекомендациях могут отсутствовать в каталоге: подсказка
	// просто не подсветит их. Ключ же обязан ссылаться на известные типы.
	for key := range c.Recommendations {
		if !validRecommendationKey(key, rooms, windows) {
			errs = append(errs, fmt.Errorf("recommendation %q: key must be <room>_<window>", key))
		}
	}
	errs = append(errs, c.Pricing.Validate())

	return errors.Join(errs...)
}

// Product ищет продукт по id.
func (c *Catalog) Product(id string) (Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

func (c *Catalog) Material(id string) (Material, bool) {
	m, ok := c.materials[id]
	return m, ok
}

func (c *Catalog) AdditionalOption(id string) (AdditionalOption, bool) {
	o, ok := c.options[id]
	return o, ok
}

func (c *Catalog) RoomType(id string) (RoomType, bool) {
	r, ok := c.rooms[id]
	return r, ok
}

func (c *Catalog) WindowType(id string) (WindowType, bool) {
	w, ok := c.windows[id]
	return w, ok
}

// Has — есть ли опция в справочнике соответствующего шага.
func (c *Catalog) Has(step Step, id string) bool {
	switch step {
	case StepRoomType:
		_, ok := c.rooms[id]
		return ok
	case StepWindowType:
		_, ok := c.windows[id]
		return ok
	case StepProduct:
		_, ok := c.products[id]
		return ok
	case StepMaterial:
		_, ok := c.materials[id]
		return ok
	case StepAdditionalOptions:
		_, ok := c.options[id]
		return ok
	}
	return false
}

// Label — человекочитаемое название опции для сводки.
func (c *Catalog) Label(step Step, id string) (string, bool) {
	switch step {
	case StepRoomType:
		if r, ok := c.rooms[id]; ok {
			return r.Name, true
		}
	case StepWindowType:
		if w, ok := c.windows[id]; ok {
			if w.SummaryLabel != "" {
				return w.SummaryLabel, true
			}
			return w.Name, true
		}
	case StepProduct:
		if p, ok := c.products[id]; ok {
			return p.Name, true
		}
	case StepMaterial:
		if m, ok := c.materials[id]; ok {
			return m.Name, true
		}
	case StepAdditionalOptions:
		if o, ok := c.options[id]; ok {
			return o.Name, true
		}
	}
	return "", false
}

// RecommendationKey — ключ таблицы рекомендаций: "<room>_<window>".
func RecommendationKey(roomID, windowID string) string {
	return roomID + "_" + windowID
}

// Recommended возвращает рекомендованные продукты для пары помещение/окно.
// Пустой результат, если пары нет в таблице.
func (c *Catalog) Recommended(roomID, windowID string) []string {
	if roomID == "" || windowID == "" {
		return nil
	}
	ids := c.Recommendations[RecommendationKey(roomID, windowID)]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// id помещений сами содержат "_" (living_room), поэтому перебираем разбиения.
func validRecommendationKey(key string, rooms, windows map[string]bool) bool {
	for i := 0; i < len(key); i++ {
		if key[i] == '_' && rooms[key[:i]] && windows[key[i+1:]] {
			return true
		}
	}
	return false
}

func uniqueIDs(kind string, n int, id func(int) string) (map[string]bool, error) {
	seen := make(map[string]bool, n)
	var errs []error
	for i := 0; i < n; i++ {
		v := id(i)
		if v == "" {
			errs = append(errs, fmt.Errorf("%s #%d: empty id", kind, i))
			continue
		}
		if seen[v] {
			errs = append(errs, fmt.Errorf("%s %s: duplicate id", kind, v))
			continue
		}
		seen[v] = true
	}
	return seen, errors.Join(errs...)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
