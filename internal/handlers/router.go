package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/unrolled/secure"

	"github.com/Werneck0live/cadastro-empresas-api/internal/middleware"
	"github.com/Werneck0live/cadastro-empresas-api/internal/utils"
)

const (
	MsgEndpointNotFound = "Endpoint não encontrado"
	MsgMethodNotAllowed = "Método não permitido"
)

type RouterDeps struct {
	Companies     *CompanyHandler
	CNPJ          *CNPJHandler
	JWTAuth       *jwtauth.JWTAuth
	Logger        *slog.Logger
	CORSOrigins   []string
	CNPJRateLimit int
	Production    bool
}

func NewRouter(d RouterDeps) *chi.Mux {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusNotFound, MsgEndpointNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        d.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !d.Production,
	})

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(httplog.RequestLogger(d.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS.Concise(true),
	}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))
	r.Use(secureMiddleware.Handler)

	r.Get("/healthz", Health)

	r.Route("/api", func(r chi.Router) {
		if d.Companies != nil {
			r.Route("/companies", func(r chi.Router) {
				r.Use(middleware.LoginRequired(d.JWTAuth))
				r.Get("/", d.Companies.List)
				r.Post("/", d.Companies.Create)
				r.Put("/{id}", d.Companies.Update)
				r.Delete("/{id}", d.Companies.Delete)
			})
		}

		if d.CNPJ != nil {
			limit := d.CNPJRateLimit
			if limit <= 0 {
				limit = 3
			}
			r.With(httprate.LimitByIP(limit, time.Minute)).Post("/cnpj/consultar", d.CNPJ.Lookup)
		}
	})

	return r
}
