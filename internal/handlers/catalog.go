package handlers

import (
	"net/http"
)

// GET /api/catalog
func (e *Env) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		e.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	// справочник неизменяемый, клиенты могут его кешировать
	w.Header().Set("Cache-Control", "public, max-age=300")
	e.writeJSON(w, e.Catalog)
}
