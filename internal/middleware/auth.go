package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/Werneck0live/cadastro-empresas-api/internal/utils"
)

const MsgLoginRequired = "Login necessário"

func NewJWTAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil, jwt.WithAcceptableSkew(30*time.Second))
}

// IssueToken gera um bearer token com a claim user_id.
func IssueToken(ja *jwtauth.JWTAuth, uid string, ttl time.Duration) (string, error) {
	if uid == "" {
		return "", errors.New("user id vazio")
	}
	claims := map[string]interface{}{"user_id": uid}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, ttl)

	_, token, err := ja.Encode(claims)
	return token, err
}

// LoginRequired exige um token válido (lido por jwtauth.Verifier) com user_id.
// Preflight OPTIONS passa direto.
func LoginRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		verify := jwtauth.Verifier(ja)
		check := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil || userID(r) == "" {
				utils.WriteError(w, http.StatusUnauthorized, MsgLoginRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
		guarded := verify(check)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}
}

// userID devolve a claim user_id (string) do token já verificado.
func userID(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	uid, _ := claims["user_id"].(string)
	return uid
}
