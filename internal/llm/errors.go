package llm

import (
	"strings"
)

// UserMessage maps a provider error onto a user-facing message by
// inspecting the error text for known upstream failure signatures.
func UserMessage(err error, language string) string {
	if err == nil {
		return ""
	}

	s := err.Error()
	switch {
	case strings.Contains(s, "503") || strings.Contains(s, "Overloaded"):
		return "Model Overloaded (503)"
	case strings.Contains(s, "429"):
		return "Rate Limit Exceeded (429)"
	case strings.Contains(s, "API Key") || strings.Contains(s, "API_KEY"):
		return "Invalid API Key"
	}

	if language == "en" {
		return "Connection error."
	}
	return "連線發生錯誤，請稍後再試。"
}
