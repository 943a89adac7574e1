package utils

import "strings"

// remove qualquer coisa que não seja dígito
func SanitizeCNPJ(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// StripCNPJMask tira só a máscara (. / -); letras e espaços continuam lá
// para que ValidateCNPJ recuse a entrada.
func StripCNPJMask(s string) string {
	return strings.NewReplacer(".", "", "/", "", "-", "").Replace(strings.TrimSpace(s))
}

// 14 dígitos e não todos iguais; os dígitos verificadores ficam a cargo da Receita
func ValidateCNPJ(cnpj string) bool {
	if len(cnpj) != 14 {
		return false
	}
	for _, r := range cnpj {
		if r < '0' || r > '9' {
			return false
		}
	}
	return strings.Count(cnpj, cnpj[:1]) != 14
}
