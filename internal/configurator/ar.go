package configurator

import (
	"strings"

	"configurator-backend/internal/domain"
)

// Capability — AR-среда, о которой сообщает клиент.
type Capability string

const (
	CapabilityNone   Capability = ""
	CapabilityWebXR  Capability = "webxr"
	CapabilityARJS   Capability = "arjs"
	CapabilityAFrame Capability = "aframe"
)

// ParseCapability нормализует значение из query/заголовка.
func ParseCapability(s string) Capability {
	return Capability(strings.ToLower(strings.TrimSpace(s)))
}

func (c Capability) Supported() bool {
	switch c {
	case CapabilityWebXR, CapabilityARJS, CapabilityAFrame:
		return true
	}
	return false
}

// ARGate решает, предлагать ли AR-просмотр продукта.
type ARGate struct {
	catalog *domain.Catalog
}

func NewARGate(cat *domain.Catalog) *ARGate {
	return &ARGate{catalog: cat}
}

// IsARAvailable: продукт есть в каталоге, помечен ARReady и клиент умеет AR.
func (g *ARGate) IsARAvailable(productID string, capability Capability) bool {
	p, ok := g.catalog.Product(productID)
	if !ok || !p.ARReady {
		return false
	}
	return capability.Supported()
}
