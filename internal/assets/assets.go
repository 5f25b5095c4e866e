// Package assets — 3D-модели продуктов для AR-просмотра.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrNoModel = errors.New("no AR model for product")

// Model — запись реестра моделей. Key и Preview — ключи объектов в хранилище.
type Model struct {
	Key         string
	Preview     string
	Scale       [3]float64
	Rotation    [3]float64
	Description string
	Features    []string
}

// DefaultModels — модели, которые есть у магазина.
func DefaultModels() map[string]Model {
	return map[string]Model{
		"plisse_premium": {
			Key:         "models/plisse-premium.glb",
			Preview:     "models/previews/plisse-premium.jpg",
			Scale:       [3]float64{1, 1, 1},
			Description: "Плиссированные шторы премиум-класса",
			Features:    []string{"Blackout эффект", "Тихий механизм", "Устойчивость к выцветанию"},
		},
		"rolshtory_classic": {
			Key:         "models/rolshtory-classic.glb",
			Preview:     "models/previews/rolshtory-classic.jpg",
			Scale:       [3]float64{1, 1, 1},
			Description: "Классические рулонные шторы",
			Features:    []string{"Простота установки", "Широкая цветовая гамма", "Легкий уход"},
		},
	}
}

// Descriptor — то, что получает клиентский AR-движок.
type Descriptor struct {
	ProductID    string     `json:"id"`
	URL          string     `json:"url"`
	PreviewImage string     `json:"preview_image"`
	Scale        [3]float64 `json:"scale"`
	Rotation     [3]float64 `json:"rotation"`
	Description  string     `json:"description,omitempty"`
	Features     []string   `json:"features"`
}

// URLResolver превращает ключ объекта в URL, доступный браузеру.
type URLResolver interface {
	ResolveURL(ctx context.Context, key string) (string, error)
}

// Uploader сохраняет объект под ключом (каталог статики или S3).
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// Library — реестр моделей плюс способ выдачи ссылок.
type Library struct {
	models   map[string]Model
	resolver URLResolver
}

func NewLibrary(models map[string]Model, resolver URLResolver) *Library {
	if models == nil {
		models = DefaultModels()
	}
	return &Library{models: models, resolver: resolver}
}

func (l *Library) HasModel(productID string) bool {
	_, ok := l.models[productID]
	return ok
}

// Keys — ключи модели и превью; ErrNoModel, если продукта нет в реестре.
func (l *Library) Keys(productID string) (model, preview string, err error) {
	m, ok := l.models[productID]
	if !ok {
		return "", "", ErrNoModel
	}
	return m.Key, m.Preview, nil
}

// Descriptor собирает описание модели; ErrNoModel, если модели нет.
func (l *Library) Descriptor(ctx context.Context, productID string) (Descriptor, error) {
	m, ok := l.models[productID]
	if !ok {
		return Descriptor{}, ErrNoModel
	}
	modelURL, err := l.resolver.ResolveURL(ctx, m.Key)
	if err != nil {
		return Descriptor{}, fmt.Errorf("resolve model %s: %w", m.Key, err)
	}
	d := Descriptor{
		ProductID:   productID,
		URL:         modelURL,
		Scale:       m.Scale,
		Rotation:    m.Rotation,
		Description: m.Description,
		Features:    append([]string{}, m.Features...),
	}
	if m.Preview != "" {
		if d.PreviewImage, err = l.resolver.ResolveURL(ctx, m.Preview); err != nil {
			return Descriptor{}, fmt.Errorf("resolve preview %s: %w", m.Preview, err)
		}
	}
	return d, nil
}
