package cnpj

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ReceitaWSClient busca o CNPJ em {baseURL}{digits} atrás de um circuit breaker.
type ReceitaWSClient struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[*Info]
}

type receitaWSResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	CNPJ        string `json:"cnpj"`
	Nome        string `json:"nome"`
	Fantasia    string `json:"fantasia"`
	Situacao    string `json:"situacao"`
	Email       string `json:"email"`
	Telefone    string `json:"telefone"`
	Logradouro  string `json:"logradouro"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Municipio   string `json:"municipio"`
	UF          string `json:"uf"`
	CEP         string `json:"cep"`
}

func NewReceitaWSClient(baseURL string, timeout time.Duration, log *slog.Logger) *ReceitaWSClient {
	if log == nil {
		log = slog.Default()
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	st := gobreaker.Settings{
		Name:        "receitaws",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
		// respostas 4xx e "status: ERROR" não indicam indisponibilidade
		IsSuccessful: func(err error) bool {
			var e *Error
			return err == nil || (errors.As(err, &e) && e.Status < http.StatusInternalServerError)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit_breaker_state", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &ReceitaWSClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		cb:      gobreaker.NewCircuitBreaker[*Info](st),
	}
}

func (c *ReceitaWSClient) Fetch(ctx context.Context, digits string) (*Info, error) {
	info, err := c.cb.Execute(func() (*Info, error) { return c.fetch(ctx, digits) })
	if err == nil {
		return info, nil
	}

	var e *Error
	var ne net.Error
	switch {
	case errors.As(err, &e):
		return nil, e
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, connectionError(err)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return nil, newError(http.StatusRequestTimeout, MsgTimeout)
	default:
		return nil, connectionError(err)
	}
}

func (c *ReceitaWSClient) fetch(ctx context.Context, digits string) (*Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+digits, nil)
	if err != nil {
		return nil, unexpectedError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(resp.StatusCode, MsgUpstream)
	}

	var body receitaWSResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, unexpectedError(fmt.Errorf("resposta da ReceitaWS: %w", err))
	}
	if body.Status == "ERROR" {
		msg := body.Message
		if msg == "" {
			msg = MsgNotFound
		}
		return nil, newError(http.StatusNotFound, msg)
	}

	return &Info{
		CNPJ:         body.CNPJ,
		RazaoSocial:  body.Nome,
		NomeFantasia: body.Fantasia,
		Situacao:     body.Situacao,
		Email:        body.Email,
		Telefone:     body.Telefone,
		Logradouro:   body.Logradouro,
		Numero:       body.Numero,
		Complemento:  body.Complemento,
		Bairro:       body.Bairro,
		Municipio:    body.Municipio,
		UF:           body.UF,
		CEP:          body.CEP,
	}, nil
}
