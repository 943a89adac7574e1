// Package cnpj consulta dados cadastrais de um CNPJ na ReceitaWS.
package cnpj

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Werneck0live/cadastro-empresas-api/internal/utils"
)

const (
	MsgRequired   = "CNPJ é obrigatório"
	MsgInvalid    = "CNPJ inválido"
	MsgUpstream   = "Erro ao consultar CNPJ na API externa"
	MsgNotFound   = "CNPJ não encontrado"
	MsgTimeout    = "A consulta ao CNPJ demorou muito para responder (timeout)"
	msgConnection = "Erro de conexão ao consultar CNPJ: %v"
	msgUnexpected = "Um erro inesperado ocorreu no servidor: %v"
)

// Info é o subconjunto da resposta da ReceitaWS usado pelo formulário.
type Info struct {
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`
	NomeFantasia string `json:"nome_fantasia"`
	Situacao     string `json:"situacao"`
	Email        string `json:"email"`
	Telefone     string `json:"telefone"`
	Logradouro   string `json:"logradouro"`
	Numero       string `json:"numero"`
	Complemento  string `json:"complemento"`
	Bairro       string `json:"bairro"`
	Municipio    string `json:"municipio"`
	UF           string `json:"uf"`
	CEP          string `json:"cep"`
}

// Error carrega o status HTTP que o handler deve devolver.
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

func newError(status int, msg string) *Error { return &Error{Status: status, Msg: msg} }

func connectionError(err error) *Error {
	return newError(http.StatusServiceUnavailable, fmt.Sprintf(msgConnection, err))
}

func unexpectedError(err error) *Error {
	return newError(http.StatusInternalServerError, fmt.Sprintf(msgUnexpected, err))
}

type Fetcher interface {
	Fetch(ctx context.Context, digits string) (*Info, error)
}

type Service struct {
	fetcher Fetcher
	cache   *Cache
	log     *slog.Logger
}

// cache pode ser nil.
func NewService(fetcher Fetcher, cache *Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{fetcher: fetcher, cache: cache, log: log.With("cmp", "cnpj.lookup")}
}

// Lookup valida o CNPJ, tenta o cache e só então consulta a API externa.
// Erros são sempre *Error.
func (s *Service) Lookup(ctx context.Context, raw string) (*Info, error) {
	if raw == "" {
		return nil, newError(http.StatusBadRequest, MsgRequired)
	}
	digits := utils.StripCNPJMask(raw)
	if !utils.ValidateCNPJ(digits) {
		return nil, newError(http.StatusBadRequest, MsgInvalid)
	}

	if info, ok := s.cache.Get(ctx, digits); ok {
		s.log.Debug("cnpj_cache_hit", "cnpj", digits)
		return info, nil
	}

	info, err := s.fetcher.Fetch(ctx, digits)
	if err != nil {
		s.log.Warn("cnpj_lookup_failed", "cnpj", digits, "err", err)
		return nil, err
	}
	if err := s.cache.Set(ctx, digits, info); err != nil {
		s.log.Warn("cnpj_cache_set_failed", "cnpj", digits, "err", err)
	}
	return info, nil
}
