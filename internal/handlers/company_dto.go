package handlers

import (
	"github.com/Werneck0live/cadastro-empresas-api/internal/service"
	"github.com/Werneck0live/cadastro-empresas-api/internal/utils"
)

// somente os campos do contrato; id, deleted_at e datas nunca vêm do cliente
type CompanyCreateDTO struct {
	Name              string  `json:"name"`
	CNPJ              string  `json:"cnpj"`
	StateRegistration *string `json:"state_registration"`
	ContactEmail      *string `json:"contact_email"`
	ContactPhone      *string `json:"contact_phone"`
	Website           *string `json:"website"`
}

func (d CompanyCreateDTO) Input() service.CreateCompanyInput {
	return service.CreateCompanyInput{
		Name:              d.Name,
		CNPJ:              d.CNPJ,
		StateRegistration: d.StateRegistration,
		ContactEmail:      d.ContactEmail,
		ContactPhone:      d.ContactPhone,
		Website:           d.Website,
	}
}

// Update parcial; Optional distingue "omitido" de "null".
type CompanyPatchDTO struct {
	Name              utils.Optional[string] `json:"name"`
	CNPJ              utils.Optional[string] `json:"cnpj"`
	StateRegistration utils.Optional[string] `json:"state_registration"`
	ContactEmail      utils.Optional[string] `json:"contact_email"`
	ContactPhone      utils.Optional[string] `json:"contact_phone"`
	Website           utils.Optional[string] `json:"website"`
}

func (d CompanyPatchDTO) Input(keys int) service.UpdateCompanyInput {
	return service.UpdateCompanyInput{
		Name:              d.Name,
		CNPJ:              d.CNPJ,
		StateRegistration: d.StateRegistration,
		ContactEmail:      d.ContactEmail,
		ContactPhone:      d.ContactPhone,
		Website:           d.Website,
		Keys:              keys,
	}
}

type CNPJLookupDTO struct {
	CNPJ string `json:"cnpj"`
}
