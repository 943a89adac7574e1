package admin

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Werneck0live/cadastro-empresas-api/internal/apperror"
	"github.com/Werneck0live/cadastro-empresas-api/internal/models"
	"github.com/Werneck0live/cadastro-empresas-api/internal/service"
)

//go:embed seeds/companies.json
var companiesJSON []byte

type seedItem struct {
	Name              string  `json:"name"`
	CNPJ              string  `json:"cnpj"`
	StateRegistration *string `json:"state_registration"`
	ContactEmail      *string `json:"contact_email"`
	ContactPhone      *string `json:"contact_phone"`
	Website           *string `json:"website"`
}

type CompanyCreator interface {
	Create(ctx context.Context, in service.CreateCompanyInput) (*models.Company, error)
}

// Idempotente: cria se não existir; CNPJ já cadastrado é ignorado.
func SeedCompanies(ctx context.Context, svc CompanyCreator, log *slog.Logger) (int, error) {
	return seed(ctx, svc, companiesJSON, log)
}

func seed(ctx context.Context, svc CompanyCreator, raw []byte, log *slog.Logger) (int, error) {
	var items []seedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, err
	}

	created := 0
	for _, s := range items {
		// timeout curto por item pra não travar
		ictx, cancel := context.WithTimeout(ctx, 3*time.Second)
		c, err := svc.Create(ictx, service.CreateCompanyInput{
			Name:              s.Name,
			CNPJ:              s.CNPJ,
			StateRegistration: s.StateRegistration,
			ContactEmail:      s.ContactEmail,
			ContactPhone:      s.ContactPhone,
			Website:           s.Website,
		})
		cancel()

		if err != nil {
			if apperror.KindOf(err) == apperror.KindValidation {
				log.Info("seed_company_skipped", "cnpj", s.CNPJ, "reason", err.Error())
				continue
			}
			return created, err
		}
		created++
		log.Info("seed_company_created", "id", c.ID, "cnpj", c.CNPJ)
	}

	log.Info("seed_companies_done", "count", len(items), "created", created)
	return created, nil
}
