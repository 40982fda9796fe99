package handler

import (
	"html/template"
	"net/http"

	"github.com/Mecho90/BuildingManagement/frontend/internal/apiclient"
	"github.com/Mecho90/BuildingManagement/frontend/internal/markdown"
	"github.com/Mecho90/BuildingManagement/shared/config"
)

type Handler struct {
	Templates map[string]*template.Template
	Public    config.Public
	Markdown  *markdown.Renderer
	APIClient *apiclient.APIClient
	MediaPath string // Exposed for router to create file server
}

func New(templates map[string]*template.Template, publicCfg config.Public, renderer *markdown.Renderer, apiClient *apiclient.APIClient, mediaPath string) *Handler {
	return &Handler{
		Templates: templates,
		Public:    publicCfg,
		Markdown:  renderer,
		APIClient: apiClient,
		MediaPath: mediaPath,
	}
}

func (h *Handler) getTemplate(name string) (*template.Template, bool) {
	tmpl, ok := h.Templates[name]
	return tmpl, ok
}

func FaviconHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "frontend/static/favicon.ico")
}
