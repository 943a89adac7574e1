package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, map[string]string{"error": msg})
}

func BadRequest(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, msg)
}

/*
DecodeObject lê o corpo inteiro e decodifica um único objeto JSON em dst.
Retorna quantas chaves o objeto tinha (inclusive as que dst não conhece).
Corpo vazio ou `null` conta como objeto sem chaves e não é erro.
Chaves desconhecidas são ignoradas: formulários costumam reenviar id/created_at.
*/
func DecodeObject(r io.Reader, dst any) (int, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return 0, err
	}
	if len(body) > maxBodyBytes {
		return 0, errors.New("request body too large")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return 0, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return 0, err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func FormatDecodeError(err error) string {
	return fmt.Sprintf("JSON inválido: %v", err)
}
