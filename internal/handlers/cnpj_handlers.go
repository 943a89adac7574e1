package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Werneck0live/cadastro-empresas-api/internal/cnpj"
	"github.com/Werneck0live/cadastro-empresas-api/internal/utils"
)

type CNPJLookup interface {
	Lookup(ctx context.Context, raw string) (*cnpj.Info, error)
}

type CNPJHandler struct {
	Svc CNPJLookup
}

func NewCNPJHandler(svc CNPJLookup) *CNPJHandler {
	return &CNPJHandler{Svc: svc}
}

func (h *CNPJHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var dto CNPJLookupDTO
	if _, err := utils.DecodeObject(r.Body, &dto); err != nil {
		utils.BadRequest(w, utils.FormatDecodeError(err))
		return
	}

	info, err := h.Svc.Lookup(r.Context(), dto.CNPJ)
	if err != nil {
		var e *cnpj.Error
		if errors.As(err, &e) {
			utils.WriteError(w, e.Status, e.Msg)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, info)
}
