package facilities

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the facility locator under /api/facilities and the
// emergency contacts page under /api/emergency.
func RegisterRoutes(r chi.Router, dir *Directory) {
	r.Route("/api/facilities", func(r chi.Router) {
		r.Get("/", handleSearch(dir))
		r.Get("/nearest", handleNearest(dir))
		r.Get("/specialties", handleSpecialties(dir))
		r.Get("/{id}", handleGet(dir))
	})
	r.Get("/api/emergency/contacts", handleContacts(dir))
}

func handleSearch(dir *Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := Filter{
			Query:     q.Get("q"),
			Type:      Type(q.Get("type")),
			Specialty: q.Get("specialty"),
		}
		if filter.Type != "" && !filter.Type.Valid() {
			http.Error(w, "unknown facility type", http.StatusBadRequest)
			return
		}
		if v := q.Get("public"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "public must be a boolean", http.StatusBadRequest)
				return
			}
			filter.PublicOnly = b
		}

		writeJSON(w, http.StatusOK, List(dir.Search(filter)))
	}
}

func handleNearest(dir *Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 3
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		writeJSON(w, http.StatusOK, List(dir.Nearest(limit)))
	}
}

func handleSpecialties(dir *Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dir.Specialties())
	}
}

func handleGet(dir *Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := dir.Get(chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, Listing{Facility: f, Links: LinksFor(f)})
	}
}

func handleContacts(dir *Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dir.Contacts())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
