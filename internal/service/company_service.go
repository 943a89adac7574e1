package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Werneck0live/cadastro-empresas-api/internal/apperror"
	"github.com/Werneck0live/cadastro-empresas-api/internal/models"
	"github.com/Werneck0live/cadastro-empresas-api/internal/repository"
	"github.com/Werneck0live/cadastro-empresas-api/internal/utils"
)

const (
	MsgRequiredFields = "Nome e CNPJ são obrigatórios"
	MsgDuplicateCNPJ  = "CNPJ já cadastrado"
	MsgCNPJInUse      = "Este CNPJ já está em uso por outra empresa"
	MsgEmptyPayload   = "Dados são obrigatórios"
	MsgEmptyName      = "Nome não pode ser vazio"
	MsgEmptyCNPJ      = "CNPJ não pode ser vazio"
	MsgNotFound       = "Empresa não encontrada"
	MsgDeleted        = "Empresa excluída com sucesso"
)

type Publisher interface {
	Publish(ctx context.Context, ev models.CompanyEvent) error
}

type CreateCompanyInput struct {
	Name              string `validate:"required"`
	CNPJ              string `validate:"required"`
	StateRegistration *string
	ContactEmail      *string
	ContactPhone      *string
	Website           *string
}

// UpdateCompanyInput é um patch: só os campos com Set=true mudam.
type UpdateCompanyInput struct {
	Name              utils.Optional[string]
	CNPJ              utils.Optional[string]
	StateRegistration utils.Optional[string]
	ContactEmail      utils.Optional[string]
	ContactPhone      utils.Optional[string]
	Website           utils.Optional[string]

	// Keys conta as chaves do payload, inclusive as que não são campos editáveis.
	Keys int
}

func (in UpdateCompanyInput) IsEmpty() bool { return in.Keys == 0 }

type CompanyService struct {
	store    repository.Store
	pub      Publisher
	log      *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// pub pode ser nil: nesse caso nenhum evento é publicado.
func NewCompanyService(store repository.Store, pub Publisher, log *slog.Logger) *CompanyService {
	if log == nil {
		log = slog.Default()
	}
	return &CompanyService{
		store:    store,
		pub:      pub,
		log:      log.With("cmp", "company.service"),
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	list, err := s.store.ListActive(ctx)
	if err != nil {
		s.log.Error("company_list_failed", "err", err)
		return nil, apperror.Internal(err)
	}
	return list, nil
}

func (s *CompanyService) Create(ctx context.Context, in CreateCompanyInput) (*models.Company, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.Validation(MsgRequiredFields)
	}
	cnpj := utils.SanitizeCNPJ(in.CNPJ)
	if cnpj == "" {
		return nil, apperror.Validation(MsgRequiredFields)
	}

	c := &models.Company{
		Name:              in.Name,
		CNPJ:              cnpj,
		StateRegistration: in.StateRegistration,
		ContactEmail:      in.ContactEmail,
		ContactPhone:      in.ContactPhone,
		Website:           in.Website,
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		// a checagem olha todos os registros, inclusive os excluídos
		exists, err := tx.ExistsByCNPJ(ctx, cnpj)
		if err != nil {
			return err
		}
		if exists {
			return apperror.Validation(MsgDuplicateCNPJ)
		}
		return tx.Insert(ctx, c)
	})
	if err != nil {
		return nil, s.fail("company_create_failed", err, MsgDuplicateCNPJ)
	}

	s.log.Info("company_created", "id", c.ID, "cnpj", c.CNPJ)
	s.publish(models.ActionCreated, c)
	return c, nil
}

// Delete marca deleted_at; um registro já excluído mantém a data original.
func (s *CompanyService) Delete(ctx context.Context, id int64) error {
	var (
		deleted *models.Company
		changed bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		deleted, changed = c, false
		if c.IsDeleted() {
			return nil
		}
		now := s.now().UTC()
		c.DeletedAt = &now
		if err := tx.Update(ctx, c); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return s.fail("company_delete_failed", err, MsgDuplicateCNPJ)
	}

	if changed {
		s.log.Info("company_deleted", "id", deleted.ID, "cnpj", deleted.CNPJ)
		s.publish(models.ActionDeleted, deleted)
	}
	return nil
}

// Update não olha deleted_at: registros excluídos continuam editáveis.
func (s *CompanyService) Update(ctx context.Context, id int64, in UpdateCompanyInput) (*models.Company, error) {
	var updated *models.Company
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if in.IsEmpty() {
			return apperror.Validation(MsgEmptyPayload)
		}

		if in.CNPJ.Set {
			if in.CNPJ.Value == nil {
				return apperror.Validation(MsgEmptyCNPJ)
			}
			cnpj := utils.SanitizeCNPJ(*in.CNPJ.Value)
			if cnpj == "" {
				return apperror.Validation(MsgEmptyCNPJ)
			}
			if cnpj != c.CNPJ {
				exists, err := tx.ExistsByCNPJ(ctx, cnpj)
				if err != nil {
					return err
				}
				if exists {
					return apperror.Validation(MsgCNPJInUse)
				}
				c.CNPJ = cnpj
			}
		}
		if in.Name.Set {
			if in.Name.Value == nil || *in.Name.Value == "" {
				return apperror.Validation(MsgEmptyName)
			}
			c.Name = *in.Name.Value
		}
		c.StateRegistration = in.StateRegistration.Or(c.StateRegistration)
		c.ContactEmail = in.ContactEmail.Or(c.ContactEmail)
		c.ContactPhone = in.ContactPhone.Or(c.ContactPhone)
		c.Website = in.Website.Or(c.Website)

		if err := tx.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, s.fail("company_update_failed", err, MsgCNPJInUse)
	}

	s.log.Info("company_updated", "id", updated.ID)
	s.publish(models.ActionUpdated, updated)
	return updated, nil
}

// fail converte erros do repositório no erro tipado devolvido ao handler.
func (s *CompanyService) fail(event string, err error, duplicateMsg string) error {
	var ae *apperror.Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(MsgNotFound)
	case errors.Is(err, repository.ErrDuplicateCNPJ):
		return apperror.Validation(duplicateMsg)
	}
	s.log.Error(event, "err", err)
	return apperror.Internal(err)
}

func (s *CompanyService) publish(action models.EventAction, c *models.Company) {
	if s.pub == nil || c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ev := models.NewCompanyEvent(action, c)
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Warn("event_publish_failed", "action", ev.Action, "company_id", c.ID, "err", err)
	}
}
