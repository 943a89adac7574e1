package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventAction string

const (
	ActionCreated EventAction = "Cadastro"
	ActionUpdated EventAction = "Edição"
	ActionDeleted EventAction = "Exclusão"
)

// CompanyEvent é a mensagem publicada na fila após cada mutação confirmada.
type CompanyEvent struct {
	EventID   string    `json:"event_id"`
	Action    string    `json:"action"` // cadastro|edição|exclusão
	CompanyID int64     `json:"company_id"`
	CNPJ      string    `json:"cnpj"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewCompanyEvent(action EventAction, c *Company) CompanyEvent {
	return CompanyEvent{
		EventID:   uuid.NewString(),
		Action:    strings.ToLower(string(action)),
		CompanyID: c.ID,
		CNPJ:      c.CNPJ,
		Name:      c.Name,
		Message:   fmt.Sprintf("%s de EMPRESA %s", action, c.Name),
		Timestamp: time.Now().UTC(),
	}
}
