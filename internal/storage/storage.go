// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/models"
)

// ErrNotFound возвращается, когда документ или запись отсутствует.
var ErrNotFound = errors.New("not found in store")

// XPStore - документное хранилище пользователей (коллекция users, ключ - адрес кошелька).
type XPStore interface {
	GetXP(ctx context.Context, wallet string) (float64, error)
}

// Journal определяет интерфейс журнала отправленных транзакций
type Journal interface {
	Record(ctx context.Context, tx *models.Transaction) error
	Get(ctx context.Context, correlationID string) (*models.Transaction, error)
	// List возвращает записи кошелька, новые первыми.
	List(ctx context.Context, walletAddress string, limit, offset int) ([]*models.Transaction, error)
	Count(ctx context.Context, walletAddress string) (int64, error)
}
