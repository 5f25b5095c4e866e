package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Configuration — сохранённая конфигурация. После сохранения не меняется.
type Configuration struct {
	ID                    string    `json:"id"`
	Selections            Selection `json:"selections"`
	InstallationRequested bool      `json:"installationRequested"`
	Location              string    `json:"location"`
	ComputedTotal         Money     `json:"total"`
	CreatedAt             time.Time `json:"createdAt"`

	// Публичная часть: токен ссылки "поделиться"
	ShareToken string `json:"shareToken,omitempty"`

	IdempotencyKey string `json:"-"`
	ClientIP       string `json:"-"`
}

// Recompute пересчитывает итог по текущим справочным данным.
func (c *Configuration) Recompute(cat *Catalog) []error {
	total, warnings := cat.TotalPrice(c.Selections, c.InstallationRequested, c.Location)
	c.ComputedTotal = total
	return warnings
}

const (
	shareTokenLength   = 12
	shareTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateShareToken — короткий непрозрачный токен из [A-Za-z0-9].
func GenerateShareToken() (string, error) {
	b := make([]byte, shareTokenLength)
	max := big.NewInt(int64(len(shareTokenAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("share token: %w", err)
		}
		b[i] = shareTokenAlphabet[n.Int64()]
	}
	return string(b), nil
}

// ValidShareToken — грубая проверка формата перед походом в хранилище.
func ValidShareToken(token string) bool {
	if len(token) != shareTokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		ch := token[i]
		if !(ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9') {
			return false
		}
	}
	return true
}
