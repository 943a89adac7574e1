package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Werneck0live/cadastro-empresas-api/internal/apperror"
	"github.com/Werneck0live/cadastro-empresas-api/internal/models"
	"github.com/Werneck0live/cadastro-empresas-api/internal/service"
	"github.com/Werneck0live/cadastro-empresas-api/internal/utils"
)

type CompanyService interface {
	List(ctx context.Context) ([]models.Company, error)
	Create(ctx context.Context, in service.CreateCompanyInput) (*models.Company, error)
	Update(ctx context.Context, id int64, in service.UpdateCompanyInput) (*models.Company, error)
	Delete(ctx context.Context, id int64) error
}

type CompanyHandler struct {
	Svc     CompanyService
	Timeout time.Duration
}

func NewCompanyHandler(svc CompanyService, timeout time.Duration) *CompanyHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CompanyHandler{Svc: svc, Timeout: timeout}
}

func Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// id não numérico é tratado como empresa inexistente
func companyID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	utils.WriteError(w, apperror.Status(err), err.Error())
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	list, err := h.Svc.List(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Company{}
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CompanyCreateDTO
	if _, err := utils.DecodeObject(r.Body, &dto); err != nil {
		utils.BadRequest(w, utils.FormatDecodeError(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	c, err := h.Svc.Create(ctx, dto.Input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(r)
	if !ok {
		utils.WriteError(w, http.StatusNotFound, service.MsgNotFound)
		return
	}

	var dto CompanyPatchDTO
	keys, err := utils.DecodeObject(r.Body, &dto)
	if err != nil {
		utils.BadRequest(w, utils.FormatDecodeError(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	c, err := h.Svc.Update(ctx, id, dto.Input(keys))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(r)
	if !ok {
		utils.WriteError(w, http.StatusNotFound, service.MsgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Svc.Delete(ctx, id); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": service.MsgDeleted})
}
