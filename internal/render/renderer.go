// Package render loads, caches and renders page templates and writes the
// result to disk only when it changed.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/gogetdata/ggd-docs/internal/utils"
)

//go:embed templates/*
var builtinTemplates embed.FS

// Renderer renders named templates. Templates are searched in the configured
// directories first and then among the built-in ones. A Renderer is created
// once per run and is safe for concurrent use.
type Renderer struct {
	sources []fs.FS
	funcs   template.FuncMap

	mu        sync.Mutex
	templates map[string]*cachedTemplate
	pathLocks map[string]*sync.Mutex
}

type cachedTemplate struct {
	once sync.Once
	tpl  *template.Template
	err  error
}

// NewRenderer creates a renderer searching templateDirs in order
func NewRenderer(templateDirs ...string) *Renderer {
	var sources []fs.FS
	for _, dir := range templateDirs {
		if dir != "" {
			sources = append(sources, os.DirFS(dir))
		}
	}
	builtin, err := fs.Sub(builtinTemplates, "templates")
	if err != nil {
		panic(err)
	}
	sources = append(sources, builtin)

	return &Renderer{
		sources: sources,
		funcs: template.FuncMap{
			"underline":  Underline,
			"escape":     escapeFilter,
			"as_extlink": FormatIdentifiers,
			"join":       strings.Join,
		},
		templates: make(map[string]*cachedTemplate),
		pathLocks: make(map[string]*sync.Mutex),
	}
}

// Render renders the named template against ctx
func (r *Renderer) Render(name string, ctx any) (string, error) {
	tpl, err := r.lookup(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, ctx); err != nil {
		var dge *models.DocGenError
		if errors.As(err, &dge) {
			return "", dge
		}
		return "", models.NewError(models.ErrTemplate, name, fmt.Errorf("render failed: %w", err))
	}
	return buf.String(), nil
}

// RenderToFile renders the named template and writes it to path unless the
// file already holds identical content. Returns true if a file was written.
func (r *Renderer) RenderToFile(path, name string, ctx any) (bool, error) {
	content, err := r.Render(name, ctx)
	if err != nil {
		return false, err
	}

	lock := r.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	written, err := utils.WriteFileIfChanged(path, []byte(content), 0644)
	if err != nil {
		return false, models.NewError(models.ErrFileOp, path, err)
	}
	return written, nil
}

// lookup returns the compiled template, compiling it on first use.
// Concurrent first users of the same name wait for a single compilation.
func (r *Renderer) lookup(name string) (*template.Template, error) {
	r.mu.Lock()
	entry, ok := r.templates[name]
	if !ok {
		entry = &cachedTemplate{}
		r.templates[name] = entry
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		entry.tpl, entry.err = r.compile(name)
	})
	return entry.tpl, entry.err
}

func (r *Renderer) compile(name string) (*template.Template, error) {
	for _, src := range r.sources {
		data, err := fs.ReadFile(src, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, models.NewError(models.ErrTemplate, name, err)
		}

		tpl, err := template.New(name).
			Funcs(r.funcs).
			Option("missingkey=error").
			Parse(string(data))
		if err != nil {
			return nil, models.NewError(models.ErrTemplate, name, fmt.Errorf("parse failed: %w", err))
		}
		return tpl, nil
	}
	return nil, models.NewError(models.ErrTemplate, name, errors.New("template not found"))
}

func (r *Renderer) pathLock(path string) *sync.Mutex {
	key := filepath.Clean(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.pathLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.pathLocks[key] = lock
	}
	return lock
}
