package models

import "strings"

type ModelOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default,omitempty"`
}

// Catalog is the fixed set of models a client may pick from. The first
// entry is the default.
var Catalog = []ModelOption{
	{ID: "mistralai/mistral-7b-instruct:free", Name: "Mistral 7B", Description: "Fast & efficient", Default: true},
	{ID: "qwen/qwen3-coder:free", Name: "Qwen Coder", Description: "Code specialist"},
	{ID: "moonshotai/kimi-k2:free", Name: "Moonshot AI", Description: "Creative & versatile"},
	{ID: "google/gemma-3-4b-it:free", Name: "Gemini", Description: "Google's Choice"},
}

func DefaultModelID() string {
	return Catalog[0].ID
}

func InCatalog(id string) bool {
	for _, m := range Catalog {
		if m.ID == id {
			return true
		}
	}
	return false
}

// DisplayName matches by provider family so that variants of a listed
// model still get a friendly name.
func DisplayName(id string) string {
	switch {
	case strings.Contains(id, "mistral"):
		return "Mistral 7B"
	case strings.Contains(id, "qwen"):
		return "Qwen Coder"
	case strings.Contains(id, "moonshot"):
		return "Moonshot AI"
	case strings.Contains(id, "google"):
		return "Gemini"
	default:
		return "Unknown Model"
	}
}
