package handlers

import (
	"context"

	"github.com/Werneck0live/cadastro-empresas-api/internal/cnpj"
	"github.com/Werneck0live/cadastro-empresas-api/internal/models"
	"github.com/Werneck0live/cadastro-empresas-api/internal/service"
)

type svcMock struct {
	ListFn   func(ctx context.Context) ([]models.Company, error)
	CreateFn func(ctx context.Context, in service.CreateCompanyInput) (*models.Company, error)
	UpdateFn func(ctx context.Context, id int64, in service.UpdateCompanyInput) (*models.Company, error)
	DeleteFn func(ctx context.Context, id int64) error
}

func (m *svcMock) List(ctx context.Context) ([]models.Company, error) {
	if m.ListFn == nil {
		return nil, nil
	}
	return m.ListFn(ctx)
}

func (m *svcMock) Create(ctx context.Context, in service.CreateCompanyInput) (*models.Company, error) {
	if m.CreateFn == nil {
		return &models.Company{}, nil
	}
	return m.CreateFn(ctx, in)
}

func (m *svcMock) Update(ctx context.Context, id int64, in service.UpdateCompanyInput) (*models.Company, error) {
	if m.UpdateFn == nil {
		return &models.Company{ID: id}, nil
	}
	return m.UpdateFn(ctx, id, in)
}

func (m *svcMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, id)
}

type lookupMock struct {
	LookupFn func(ctx context.Context, raw string) (*cnpj.Info, error)
}

func (m *lookupMock) Lookup(ctx context.Context, raw string) (*cnpj.Info, error) {
	if m.LookupFn == nil {
		return &cnpj.Info{}, nil
	}
	return m.LookupFn(ctx, raw)
}
