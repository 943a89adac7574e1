package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Werneck0live/cadastro-empresas-api/internal/models"
	"github.com/Werneck0live/cadastro-empresas-api/internal/repository"
)

type pubMock struct {
	mu        sync.Mutex
	events    []models.CompanyEvent
	PublishFn func(ctx context.Context, ev models.CompanyEvent) error
}

func (p *pubMock) Publish(ctx context.Context, ev models.CompanyEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	if p.PublishFn == nil {
		return nil
	}
	return p.PublishFn(ctx, ev)
}

func (p *pubMock) Events() []models.CompanyEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.CompanyEvent(nil), p.events...)
}

// faultyStore injeta falhas de persistência sobre o store em memória.
type faultyStore struct {
	*repository.MemoryRepository
	listErr  error
	writeErr error
}

func (f *faultyStore) ListActive(ctx context.Context) ([]models.Company, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.MemoryRepository.ListActive(ctx)
}

func (f *faultyStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return f.MemoryRepository.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return fn(ctx, faultyTx{Tx: tx, err: f.writeErr})
	})
}

type faultyTx struct {
	repository.Tx
	err error
}

func (t faultyTx) Insert(ctx context.Context, c *models.Company) error {
	if t.err != nil {
		return t.err
	}
	return t.Tx.Insert(ctx, c)
}

func (t faultyTx) Update(ctx context.Context, c *models.Company) error {
	if t.err != nil {
		return t.err
	}
	return t.Tx.Update(ctx, c)
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }
