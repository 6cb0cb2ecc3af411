package templates

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

//go:embed assets/**/*.tmpl
var embeddedFS embed.FS

// Kinds of template, taken from the top-level asset directory
const (
	KindReport = "reports"
	KindPrompt = "prompts"
)

// Template is a parsed report or prompt template
type Template struct {
	ID   string
	Kind string

	parsed *template.Template
}

// Render executes the template. Fields missing from a map are an error.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.parsed.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "render template %s", t.ID)
	}
	return buf.String(), nil
}

// Registry resolves templates by ID, e.g. "reports/executive_summary".
// Every template is parsed when the registry is built and never reloaded.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry parses every .tmpl file under dir
func NewRegistry(dir string) (*Registry, error) {
	return NewRegistryFromFS(os.DirFS(dir))
}

// NewRegistryFromFS parses every .tmpl file in fsys. A file that fails to
// parse fails the whole registry.
func NewRegistryFromFS(fsys fs.FS) (*Registry, error) {
	r := &Registry{templates: map[string]*Template{}}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".tmpl" {
			return nil
		}
		return r.parse(fsys, p)
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Get returns the registry built from the embedded assets.
// Panics if they do not parse.
func Get() *Registry {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embeddedFS, "assets")
		if err != nil {
			defaultErr = errors.Wrap(err, "prepare embedded templates")
			return
		}
		defaultRegistry, defaultErr = NewRegistryFromFS(sub)
	})

	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultRegistry
}

// GetTemplate returns the template with id, or errors.ErrNotFound
func (r *Registry) GetTemplate(id string) (*Template, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "template %s", id)
	}
	return tmpl, nil
}

// Has reports whether id is registered
func (r *Registry) Has(id string) bool {
	_, ok := r.templates[id]
	return ok
}

// Render executes the template with id
func (r *Registry) Render(id string, data any) (string, error) {
	tmpl, err := r.GetTemplate(id)
	if err != nil {
		return "", err
	}
	return tmpl.Render(data)
}

// List returns the sorted IDs of one kind, or of all templates when kind is empty
func (r *Registry) List(kind string) []string {
	ids := make([]string, 0, len(r.templates))
	for id, tmpl := range r.templates {
		if kind == "" || tmpl.Kind == kind {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) parse(fsys fs.FS, p string) error {
	id := strings.TrimSuffix(p, path.Ext(p))

	content, err := fs.ReadFile(fsys, p)
	if err != nil {
		return errors.Wrapf(err, "read template %s", id)
	}

	parsed, err := template.New(id).Funcs(Funcs).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return errors.Wrapf(err, "parse template %s", id)
	}

	kind, _, _ := strings.Cut(id, "/")
	r.templates[id] = &Template{ID: id, Kind: kind, parsed: parsed}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)
