package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Werneck0live/cadastro-empresas-api/internal/models"
)

// MemoryRepository é um Store em memória (STORE_DRIVER=memory e testes).
// Transações são serializadas e trabalham sobre uma cópia; só um fn sem erro
// publica a cópia.
type MemoryRepository struct {
	mu     sync.Mutex
	rows   map[int64]models.Company
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[int64]models.Company)}
}

func (r *MemoryRepository) ListActive(_ context.Context) ([]models.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := []models.Company{}
	for _, c := range r.rows {
		if c.DeletedAt == nil {
			list = append(list, c)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Name == list[j].Name {
			return list[i].ID < list[j].ID
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (r *MemoryRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memTx{rows: make(map[int64]models.Company, len(r.rows)), nextID: r.nextID}
	for id, c := range r.rows {
		tx.rows[id] = c
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.rows = tx.rows
	r.nextID = tx.nextID
	return nil
}

// Len conta todos os registros, inclusive os excluídos.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type memTx struct {
	rows   map[int64]models.Company
	nextID int64
}

func (t *memTx) GetByID(_ context.Context, id int64) (*models.Company, error) {
	c, ok := t.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (t *memTx) ExistsByCNPJ(_ context.Context, cnpj string) (bool, error) {
	for _, c := range t.rows {
		if c.CNPJ == cnpj {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) Insert(_ context.Context, c *models.Company) error {
	if t.cnpjTaken(c.CNPJ, 0) {
		return ErrDuplicateCNPJ
	}
	t.nextID++
	c.ID = t.nextID
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	t.rows[c.ID] = *c
	return nil
}

func (t *memTx) Update(_ context.Context, c *models.Company) error {
	if _, ok := t.rows[c.ID]; !ok {
		return ErrNotFound
	}
	if t.cnpjTaken(c.CNPJ, c.ID) {
		return ErrDuplicateCNPJ
	}
	c.UpdatedAt = time.Now().UTC()
	t.rows[c.ID] = *c
	return nil
}

func (t *memTx) cnpjTaken(cnpj string, except int64) bool {
	for id, c := range t.rows {
		if id != except && c.CNPJ == cnpj {
			return true
		}
	}
	return false
}
