// Package memory - хранилища в памяти для разработки и тестов.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cryptothud/solana-next-typescript-starter/internal/storage"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/models"
)

type XPStore struct {
	mu    sync.RWMutex
	users map[string]float64
}

var _ storage.XPStore = (*XPStore)(nil)

func NewXPStore(seed map[string]float64) *XPStore {
	users := make(map[string]float64, len(seed))
	for k, v := range seed {
		users[k] = v
	}
	return &XPStore{users: users}
}

func (s *XPStore) GetXP(_ context.Context, wallet string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	xp, ok := s.users[wallet]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return xp, nil
}

func (s *XPStore) SetXP(_ context.Context, wallet string, xp float64) error {
	s.mu.Lock()
	s.users[wallet] = xp
	s.mu.Unlock()
	return nil
}

// Journal хранит записи в порядке добавления.
type Journal struct {
	mu     sync.RWMutex
	nextID uint
	byID   map[string]*models.Transaction
	order  []*models.Transaction
}

var _ storage.Journal = (*Journal)(nil)

func NewJournal() *Journal {
	return &Journal{byID: make(map[string]*models.Transaction)}
}

func (j *Journal) Record(_ context.Context, tx *models.Transaction) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.nextID++
	stored := *tx
	stored.ID = j.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.UpdatedAt = stored.CreatedAt
	j.byID[stored.CorrelationID] = &stored
	j.order = append(j.order, &stored)
	return nil
}

func (j *Journal) Get(_ context.Context, correlationID string) (*models.Transaction, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	tx, ok := j.byID[correlationID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (j *Journal) List(_ context.Context, walletAddress string, limit, offset int) ([]*models.Transaction, error) {
	txs := j.byWallet(walletAddress)
	if offset >= len(txs) || limit <= 0 {
		return []*models.Transaction{}, nil
	}
	end := offset + limit
	if end > len(txs) {
		end = len(txs)
	}
	return txs[offset:end], nil
}

func (j *Journal) Count(_ context.Context, walletAddress string) (int64, error) {
	return int64(len(j.byWallet(walletAddress))), nil
}

// byWallet - копии записей кошелька, новые первыми.
func (j *Journal) byWallet(walletAddress string) []*models.Transaction {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []*models.Transaction
	for _, tx := range j.order {
		if tx.WalletAddress == walletAddress {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID > out[b].ID
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}
