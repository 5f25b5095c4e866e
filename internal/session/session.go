// Package session — хранение снимка незавершённой конфигурации по id сессии.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Store — ключ-значение в пределах одной сессии.
// Load для отсутствующего ключа возвращает nil, nil.
type Store interface {
	Load(ctx context.Context, sessionID, key string) ([]byte, error)
	Save(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID, key string) error
}

var ErrInvalidSessionID = errors.New("invalid session id")

// NewID — новый id сессии.
func NewID() string {
	return uuid.NewString()
}

// ValidID: id сессии — всегда UUID. Это же защищает файловое хранилище от "../".
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

func checkID(id string) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// ключ может попасть в путь файла, поэтому только [a-z0-9_].
func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("session key is empty")
	}
	for i := 0; i < len(key); i++ {
		ch := key[i]
		if !(ch >= 'a' && ch <= 'z' || ch >= '0' && ch <= '9' || ch == '_') {
			return fmt.Errorf("invalid session key %q", key)
		}
	}
	return nil
}
