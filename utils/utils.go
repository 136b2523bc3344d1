package utils

import (
	"encoding/json"
	"net/http"
	"strings"
)

const maxDetailLength = 200

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"detail": message})
}

func WriteJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

// SanitizeMessage collapses whitespace and control characters in an error
// message and caps it at maxDetailLength runes.
func SanitizeMessage(message string) string {
	var builder strings.Builder
	space := false
	for _, char := range strings.TrimSpace(message) {
		if char < 0x20 || char == 0x7f || char == ' ' {
			if !space {
				builder.WriteRune(' ')
			}
			space = true
			continue
		}
		space = false
		builder.WriteRune(char)
	}

	runes := []rune(builder.String())
	if len(runes) > maxDetailLength {
		return string(runes[:maxDetailLength]) + "..."
	}
	return string(runes)
}
