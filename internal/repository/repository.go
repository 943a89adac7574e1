package repository

import (
	"context"
	"errors"

	"github.com/Werneck0live/cadastro-empresas-api/internal/models"
)

var (
	ErrNotFound      = errors.New("company not found")
	ErrDuplicateCNPJ = errors.New("cnpj already exists")
)

// Store é o colaborador de persistência. Toda escrita passa por WithinTx:
// se fn retornar erro, nada do que foi feito dentro dela é confirmado.
type Store interface {
	ListActive(ctx context.Context) ([]models.Company, error)
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx enxerga todos os registros, inclusive os excluídos (soft delete).
type Tx interface {
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	ExistsByCNPJ(ctx context.Context, cnpj string) (bool, error)
	Insert(ctx context.Context, c *models.Company) error
	Update(ctx context.Context, c *models.Company) error
}
