package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-pongoview/pkg/paths"
	"github.com/goliatone/go-pongoview/pkg/view"
)

// newRouter serves GET /render/{template} previews. Query parameters become
// template variables, except "layout" which selects the layout.
func newRouter(factory *view.Factory, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	}).Methods(http.MethodGet)
	r.HandleFunc("/render/{template:.+}", renderHandler(factory, logger)).Methods(http.MethodGet)
	return r
}

func renderHandler(factory *view.Factory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		template := mux.Vars(req)["template"]
		query := req.URL.Query()

		vars := make(map[string]any, len(query))
		for key, values := range query {
			if key == "layout" || len(values) == 0 {
				continue
			}
			vars[key] = values[0]
		}

		v, err := factory.NewView(view.WithVars(vars))
		if err != nil {
			logger.Error("view construction failed", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out, err := v.Render(req.Context(), template, query.Get("layout"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, paths.ErrTemplateNotFound) || errors.Is(err, paths.ErrLayoutNotFound) {
				status = http.StatusNotFound
			}
			logger.Debug("preview failed", slog.String("template", template), slog.Any("error", err))
			http.Error(w, err.Error(), status)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset="+factory.Config().Environment.Charset)
		_, _ = io.WriteString(w, out)
	}
}
