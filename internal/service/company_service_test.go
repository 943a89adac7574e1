package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/cadastro-empresas-api/internal/apperror"
	"github.com/Werneck0live/cadastro-empresas-api/internal/models"
	"github.com/Werneck0live/cadastro-empresas-api/internal/repository"
	"github.com/Werneck0live/cadastro-empresas-api/internal/utils"
)

func strptr(s string) *string { return &s }

func newService(t *testing.T) (*CompanyService, *repository.MemoryRepository, *pubMock) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	pub := &pubMock{}
	return NewCompanyService(repo, pub, discardLogger()), repo, pub
}

func mustCreate(t *testing.T, s *CompanyService, name, cnpj string) *models.Company {
	t.Helper()
	c, err := s.Create(context.Background(), CreateCompanyInput{Name: name, CNPJ: cnpj})
	require.NoError(t, err)
	return c
}

func assertKind(t *testing.T, err error, kind apperror.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err))
	if msg != "" {
		assert.Equal(t, msg, err.Error())
	}
}

func TestCreate_NormalizesCNPJAndListsIt(t *testing.T) {
	s, _, pub := newService(t)
	ctx := context.Background()

	c, err := s.Create(ctx, CreateCompanyInput{
		Name:    "Acme",
		CNPJ:    "12.345.678/0001-99",
		Website: strptr("acme.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "12345678000199", c.CNPJ)
	assert.NotZero(t, c.ID)
	assert.Nil(t, c.ContactEmail)
	assert.Nil(t, c.DeletedAt)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)
	assert.Equal(t, "12345678000199", list[0].CNPJ)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "cadastro", events[0].Action)
	assert.Equal(t, "Cadastro de EMPRESA Acme", events[0].Message)
	assert.NotEmpty(t, events[0].EventID)
}

func TestCreate_RequiredFields(t *testing.T) {
	s, repo, pub := newService(t)

	for _, in := range []CreateCompanyInput{
		{CNPJ: "12345678000199"},
		{Name: "Acme"},
		{Name: "Acme", CNPJ: "--./"},
	} {
		_, err := s.Create(context.Background(), in)
		assertKind(t, err, apperror.KindValidation, MsgRequiredFields)
	}
	assert.Equal(t, 0, repo.Len())
	assert.Empty(t, pub.Events())
}

func TestCreate_DuplicateAfterNormalization(t *testing.T) {
	s, repo, _ := newService(t)
	mustCreate(t, s, "Acme", "12.345.678/0001-99")

	_, err := s.Create(context.Background(), CreateCompanyInput{Name: "Acme2", CNPJ: "12345678000199"})
	assertKind(t, err, apperror.KindValidation, MsgDuplicateCNPJ)
	assert.Equal(t, 1, repo.Len())
}

func TestCreate_SoftDeletedStillBlocksCNPJ(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Acme", "12345678000199")

	require.NoError(t, s.Delete(ctx, c.ID))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Create(ctx, CreateCompanyInput{Name: "Acme de novo", CNPJ: "12.345.678/0001-99"})
	assertKind(t, err, apperror.KindValidation, MsgDuplicateCNPJ)
}

func TestCreate_PersistenceFailureRollsBack(t *testing.T) {
	repo := &faultyStore{MemoryRepository: repository.NewMemoryRepository(), writeErr: errors.New("disk full")}
	pub := &pubMock{}
	s := NewCompanyService(repo, pub, discardLogger())

	_, err := s.Create(context.Background(), CreateCompanyInput{Name: "Acme", CNPJ: "1"})
	assertKind(t, err, apperror.KindInternal, "disk full")
	assert.Equal(t, 0, repo.Len())
	assert.Empty(t, pub.Events())
}

func TestCreate_UniqueConstraintRaceMapsToDuplicate(t *testing.T) {
	repo := &faultyStore{MemoryRepository: repository.NewMemoryRepository(), writeErr: repository.ErrDuplicateCNPJ}
	s := NewCompanyService(repo, nil, discardLogger())

	_, err := s.Create(context.Background(), CreateCompanyInput{Name: "Acme", CNPJ: "1"})
	assertKind(t, err, apperror.KindValidation, MsgDuplicateCNPJ)
}

func TestList_StoreFailure(t *testing.T) {
	repo := &faultyStore{MemoryRepository: repository.NewMemoryRepository(), listErr: errors.New("no reachable servers")}
	s := NewCompanyService(repo, nil, discardLogger())

	_, err := s.List(context.Background())
	assertKind(t, err, apperror.KindInternal, "no reachable servers")
}

func TestList_OrderedByName(t *testing.T) {
	s, _, _ := newService(t)
	mustCreate(t, s, "Zeta", "3")
	mustCreate(t, s, "Alfa", "1")
	mustCreate(t, s, "Meio", "2")

	list, err := s.List(context.Background())
	require.NoError(t, err)
	var names []string
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Alfa", "Meio", "Zeta"}, names)
}

func TestDelete_SetsDeletedAtOnce(t *testing.T) {
	s, _, pub := newService(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Acme", "1")

	first := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("BRT", -3*3600))
	s.now = func() time.Time { return first }
	require.NoError(t, s.Delete(ctx, c.ID))

	s.now = func() time.Time { return first.Add(time.Hour) }
	require.NoError(t, s.Delete(ctx, c.ID))

	got, err := s.Update(ctx, c.ID, UpdateCompanyInput{Keys: 1, Website: utils.Some("acme.com")})
	require.NoError(t, err)
	require.NotNil(t, got.DeletedAt)
	assert.True(t, got.DeletedAt.Equal(first))
	assert.Equal(t, time.UTC, got.DeletedAt.Location())

	var actions []string
	for _, ev := range pub.Events() {
		actions = append(actions, ev.Action)
	}
	assert.Equal(t, []string{"cadastro", "exclusão", "edição"}, actions)
}

func TestDelete_NotFound(t *testing.T) {
	s, repo, pub := newService(t)
	err := s.Delete(context.Background(), 99)
	assertKind(t, err, apperror.KindNotFound, MsgNotFound)
	assert.Equal(t, 0, repo.Len())
	assert.Empty(t, pub.Events())
}

func TestDelete_PersistenceFailure(t *testing.T) {
	mem := repository.NewMemoryRepository()
	seed := NewCompanyService(mem, nil, discardLogger())
	c := mustCreate(t, seed, "Acme", "1")

	s := NewCompanyService(&faultyStore{MemoryRepository: mem, writeErr: errors.New("boom")}, nil, discardLogger())
	err := s.Delete(context.Background(), c.ID)
	assertKind(t, err, apperror.KindInternal, "boom")

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdate_PartialPatchKeepsOtherFields(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	c, err := s.Create(ctx, CreateCompanyInput{
		Name:         "Acme",
		CNPJ:         "12345678000199",
		ContactEmail: strptr("contato@acme.com"),
		ContactPhone: strptr("11 5555-0000"),
	})
	require.NoError(t, err)

	got, err := s.Update(ctx, c.ID, UpdateCompanyInput{Keys: 1, Website: utils.Some("acme.com")})
	require.NoError(t, err)

	assert.Equal(t, "acme.com", *got.Website)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "12345678000199", got.CNPJ)
	assert.Equal(t, "contato@acme.com", *got.ContactEmail)
	assert.Equal(t, "11 5555-0000", *got.ContactPhone)
	assert.Nil(t, got.StateRegistration)
}

func TestUpdate_NullClearsOptionalField(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	c, err := s.Create(ctx, CreateCompanyInput{Name: "Acme", CNPJ: "1", Website: strptr("acme.com")})
	require.NoError(t, err)

	got, err := s.Update(ctx, c.ID, UpdateCompanyInput{Keys: 1, Website: utils.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, got.Website)
}

func TestUpdate_EmptyPayload(t *testing.T) {
	s, _, _ := newService(t)
	c := mustCreate(t, s, "Acme", "1")

	_, err := s.Update(context.Background(), c.ID, UpdateCompanyInput{})
	assertKind(t, err, apperror.KindValidation, MsgEmptyPayload)
}

func TestUpdate_UnknownKeysOnlyIsNotEmpty(t *testing.T) {
	s, _, _ := newService(t)
	c := mustCreate(t, s, "Acme", "1")

	got, err := s.Update(context.Background(), c.ID, UpdateCompanyInput{Keys: 1})
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
}

func TestUpdate_NotFoundBeatsEmptyPayload(t *testing.T) {
	s, _, _ := newService(t)
	_, err := s.Update(context.Background(), 42, UpdateCompanyInput{})
	assertKind(t, err, apperror.KindNotFound, MsgNotFound)
}

func TestUpdate_CNPJInUseKeepsOriginal(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	a := mustCreate(t, s, "Acme", "12345678000199")
	b := mustCreate(t, s, "Beta", "11222333000181")

	_, err := s.Update(ctx, b.ID, UpdateCompanyInput{Keys: 2, CNPJ: utils.Some("12.345.678/0001-99"), Name: utils.Some("Beta 2")})
	assertKind(t, err, apperror.KindValidation, MsgCNPJInUse)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.CNPJ, list[0].CNPJ)
	assert.Equal(t, "11222333000181", list[1].CNPJ)
	assert.Equal(t, "Beta", list[1].Name)
}

func TestUpdate_SoftDeletedRecordStillEditable(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Acme", "12345678000199")

	deletedAt := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s.now = func() time.Time { return deletedAt }
	require.NoError(t, s.Delete(ctx, c.ID))

	got, err := s.Update(ctx, c.ID, UpdateCompanyInput{Keys: 1, Website: utils.Some("acme.com")})
	require.NoError(t, err)
	require.NotNil(t, got.Website)
	assert.Equal(t, "acme.com", *got.Website)
	require.NotNil(t, got.DeletedAt)
	assert.True(t, got.DeletedAt.Equal(deletedAt))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdate_CNPJHeldBySoftDeletedRecord(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	a := mustCreate(t, s, "Acme", "12345678000199")
	b := mustCreate(t, s, "Beta", "11222333000181")
	require.NoError(t, s.Delete(ctx, a.ID))

	_, err := s.Update(ctx, b.ID, UpdateCompanyInput{Keys: 1, CNPJ: utils.Some("12345678000199")})
	assertKind(t, err, apperror.KindValidation, MsgCNPJInUse)
}

func TestUpdate_SameCNPJInOtherFormatIsNoConflict(t *testing.T) {
	s, _, _ := newService(t)
	c := mustCreate(t, s, "Acme", "12345678000199")

	got, err := s.Update(context.Background(), c.ID, UpdateCompanyInput{Keys: 1, CNPJ: utils.Some("12.345.678/0001-99")})
	require.NoError(t, err)
	assert.Equal(t, "12345678000199", got.CNPJ)
}

func TestUpdate_NewCNPJIsNormalized(t *testing.T) {
	s, _, _ := newService(t)
	c := mustCreate(t, s, "Acme", "12345678000199")

	got, err := s.Update(context.Background(), c.ID, UpdateCompanyInput{Keys: 1, CNPJ: utils.Some("11.222.333/0001-81")})
	require.NoError(t, err)
	assert.Equal(t, "11222333000181", got.CNPJ)
}

func TestUpdate_RejectsEmptyNameAndCNPJ(t *testing.T) {
	s, _, _ := newService(t)
	c := mustCreate(t, s, "Acme", "1")
	ctx := context.Background()

	_, err := s.Update(ctx, c.ID, UpdateCompanyInput{Keys: 1, Name: utils.Null[string]()})
	assertKind(t, err, apperror.KindValidation, MsgEmptyName)

	_, err = s.Update(ctx, c.ID, UpdateCompanyInput{Keys: 1, Name: utils.Some("")})
	assertKind(t, err, apperror.KindValidation, MsgEmptyName)

	_, err = s.Update(ctx, c.ID, UpdateCompanyInput{Keys: 1, CNPJ: utils.Some("abc")})
	assertKind(t, err, apperror.KindValidation, MsgEmptyCNPJ)
}

func TestUpdate_PersistenceFailureKeepsRecord(t *testing.T) {
	mem := repository.NewMemoryRepository()
	c := mustCreate(t, NewCompanyService(mem, nil, discardLogger()), "Acme", "1")

	pub := &pubMock{}
	s := NewCompanyService(&faultyStore{MemoryRepository: mem, writeErr: errors.New("boom")}, pub, discardLogger())
	_, err := s.Update(context.Background(), c.ID, UpdateCompanyInput{Keys: 1, Name: utils.Some("Outra")})
	assertKind(t, err, apperror.KindInternal, "boom")
	assert.Empty(t, pub.Events())

	list, err := mem.ListActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme", list[0].Name)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	repo := repository.NewMemoryRepository()
	pub := &pubMock{PublishFn: func(context.Context, models.CompanyEvent) error { return errors.New("channel closed") }}
	s := NewCompanyService(repo, pub, discardLogger())

	_, err := s.Create(context.Background(), CreateCompanyInput{Name: "Acme", CNPJ: "1"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
}
