package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Werneck0live/cadastro-empresas-api/internal/models"
)

// SQLCompanyRepository guarda as empresas no PostgreSQL via GORM.
// O *gorm.DB precisa ter TranslateError ligado (ver db.NewPostgres).
type SQLCompanyRepository struct {
	db *gorm.DB
}

func NewSQLCompanyRepository(db *gorm.DB) *SQLCompanyRepository {
	return &SQLCompanyRepository{db: db}
}

func (r *SQLCompanyRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&models.Company{})
}

func (r *SQLCompanyRepository) ListActive(ctx context.Context) ([]models.Company, error) {
	list := []models.Company{}
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("name ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *SQLCompanyRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, sqlTx{db: tx})
	})
}

type sqlTx struct {
	db *gorm.DB
}

func (t sqlTx) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	var c models.Company
	err := t.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t sqlTx) ExistsByCNPJ(ctx context.Context, cnpj string) (bool, error) {
	var n int64
	err := t.db.WithContext(ctx).
		Model(&models.Company{}).
		Where("cnpj = ?", cnpj).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t sqlTx) Insert(ctx context.Context, c *models.Company) error {
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	err := t.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCNPJ
	}
	return err
}

func (t sqlTx) Update(ctx context.Context, c *models.Company) error {
	c.UpdatedAt = time.Now().UTC()
	// Select("*") grava também os campos zerados/nulos (patch já resolvido no serviço)
	res := t.db.WithContext(ctx).
		Model(c).
		Select("*").
		Omit("id", "created_at").
		Updates(c)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCNPJ
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
