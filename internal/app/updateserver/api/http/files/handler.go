package files

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

// Catalog каталог, из которого раздаются файлы выпусков
type Catalog interface {
	HasFile(name string) bool
	FilePath(name string) string
}

// Handler раздает файлы выпусков с поддержкой Range
type Handler struct {
	catalog Catalog
	log     *slog.Logger
}

func NewHandler(catalog Catalog, log *slog.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		log:     log.With(slog.String("component", "files")),
	}
}

// SetupRoutes регистрирует GET /files/{name}
func (h *Handler) SetupRoutes(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.With(middlewares...).Get("/files/{name}", h.serve)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.catalog.HasFile(name) {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(h.catalog.FilePath(name))
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.Error("Ошибка открытия файла выпуска", "name", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.log.Error("Ошибка чтения файла выпуска", "name", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, name, info.ModTime(), f)
}
