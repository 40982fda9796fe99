package setup

import (
	"fmt"
	"html/template"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mecho90/BuildingManagement/frontend/internal/apiclient"
	"github.com/Mecho90/BuildingManagement/frontend/internal/handler"
	"github.com/Mecho90/BuildingManagement/frontend/internal/markdown"
	"github.com/Mecho90/BuildingManagement/shared/config"
	"github.com/Mecho90/BuildingManagement/shared/jwt"
)

const (
	baseTemplate           = "base.html"
	partialsTemplate       = "partials.html"
	tmplPath               = "frontend/templates"
	templateReloadInterval = 5 * time.Second
)

type Dependencies struct {
	Handler *handler.Handler
	Jwt     jwt.JwtService
	Config  *config.Config
}

// SetupDependencies wires everything the web process needs: templates, the
// markdown renderer, the backend API client and the JWT verifier (the web
// process validates session cookies locally instead of round-tripping each
// request to the backend).
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	templates := mustLoadTemplates(tmplPath)
	renderer := markdown.New()

	apiBase := cfg.Public.APIBaseURL
	if apiBase == "" {
		return nil, fmt.Errorf("api_base_url is required for the web process")
	}
	apiClient := apiclient.New(apiBase)

	// Only the filesystem backend serves media from this process; the s3
	// backend hands out absolute object URLs.
	mediaPath := ""
	if cfg.Public.Storage.Backend == "fs" {
		mediaPath = cfg.Public.Storage.FSRoot
	}

	h := handler.New(templates, cfg.Public, renderer, apiClient, mediaPath)
	startTemplateReloader(h, tmplPath)

	return &Dependencies{
		Handler: h,
		Jwt:     jwt.New(cfg.JwtKey(), cfg.JwtTTL()),
		Config:  cfg,
	}, nil
}

// Template helpers. Kept deliberately small; anything beyond arithmetic and
// joins belongs in a view model.
func sub(a, b int) int { return a - b }
func add(a, b int) int { return a + b }

// deref lets templates compare optional id fields against select options.
func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func bytesToMB(bytes int64) int64 {
	return bytes / (1024 * 1024)
}

// acceptAttr renders the upload input's accept attribute from the configured
// exact types and prefixes, e.g. "image/*,application/pdf".
func acceptAttr(types, prefixes []string) string {
	var parts []string
	for _, p := range prefixes {
		if strings.HasSuffix(p, "/") {
			parts = append(parts, p+"*")
		} else {
			parts = append(parts, p)
		}
	}
	parts = append(parts, types...)
	return strings.Join(parts, ",")
}

// dict builds a map inside a template, for passing several values to a
// partial in one argument.
func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict needs an even number of arguments")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

func mustLoadTemplates(tmplPath string) map[string]*template.Template {
	templates := make(map[string]*template.Template)
	files, err := os.ReadDir(tmplPath)
	if err != nil {
		log.Fatal(err)
	}

	funcs := template.FuncMap{
		"sub":        sub,
		"add":        add,
		"dict":       dict,
		"deref":      deref,
		"bytesToMB":  bytesToMB,
		"acceptAttr": acceptAttr,
	}

	for _, f := range files {
		if filepath.Ext(f.Name()) != ".html" || f.Name() == baseTemplate || f.Name() == partialsTemplate {
			continue
		}
		templates[f.Name()] = template.Must(template.New(baseTemplate).Funcs(funcs).ParseFiles(
			path.Join(tmplPath, baseTemplate),
			path.Join(tmplPath, f.Name()),
			path.Join(tmplPath, partialsTemplate),
		))
	}
	return templates
}

// startTemplateReloader re-parses templates on an interval in development so
// markup edits show up without a restart.
func startTemplateReloader(h *handler.Handler, tmplPath string) {
	if os.Getenv("ENV") != "development" {
		return
	}
	ticker := time.NewTicker(templateReloadInterval)
	go func() {
		for range ticker.C {
			h.Templates = mustLoadTemplates(tmplPath)
		}
	}()
}
