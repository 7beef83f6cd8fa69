package sitegen

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path/filepath"

	"log/slog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets/style.css
var assetsFS embed.FS

// RenderHumanPages generates the HTML pages of the site.
// Creates: /index.html (latest run of every release line)
//
//	/<version>/index.html (history of one release line)
func RenderHumanPages(model *SiteModel, outDir string, logger *slog.Logger) error {
	tmpl, err := loadTemplates()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	if err := writeSiteAssets(outDir, logger); err != nil {
		return fmt.Errorf("failed to write site assets: %w", err)
	}

	if err := renderPage(tmpl, "index.tmpl", model, filepath.Join(outDir, "index.html"), logger); err != nil {
		return fmt.Errorf("failed to render root index: %w", err)
	}
	logger.Info("rendered root index", "lines", len(model.Lines))

	for _, line := range model.Lines {
		data := struct {
			Heading string
			RunTime string
			Line    LineModel
		}{
			Heading: model.Heading,
			RunTime: model.RunTime,
			Line:    line,
		}
		path := filepath.Join(outDir, line.Version, "index.html")
		if err := renderPage(tmpl, "line.tmpl", data, path, logger); err != nil {
			return fmt.Errorf("failed to render page for %s: %w", line.Version, err)
		}
	}

	return nil
}

// writeSiteAssets writes embedded static assets (like CSS) to the output directory.
func writeSiteAssets(outDir string, logger *slog.Logger) error {
	data, err := fs.ReadFile(assetsFS, "assets/style.css")
	if err != nil {
		return fmt.Errorf("failed to read embedded style.css: %w", err)
	}

	path := filepath.Join(outDir, "assets", "style.css")
	if err := writeFileIfChanged(path, data, logger); err != nil {
		return fmt.Errorf("failed to write style.css: %w", err)
	}
	return nil
}

// loadTemplates loads all HTML templates with helper functions.
func loadTemplates() (*template.Template, error) {
	tmpl := template.New("").Funcs(template.FuncMap{
		"phaseClass": phaseClass,
	})

	tmpl, err := tmpl.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func renderPage(tmpl *template.Template, name string, data any, path string, logger *slog.Logger) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to execute %s: %w", name, err)
	}
	return writeFileIfChanged(path, buf.Bytes(), logger)
}

// phaseClass maps a release phase to a CSS class.
func phaseClass(e EntryModel) string {
	if !e.Available {
		return "unavailable"
	}
	switch e.Phase {
	case "Accepted":
		return "accepted"
	case "Rejected", "Failed":
		return "rejected"
	default:
		return "pending"
	}
}
