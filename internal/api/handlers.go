// Package api serves the library's commands as a local JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/franz/photo-librarian/internal/app"
	"github.com/franz/photo-librarian/internal/ingest"
	"github.com/franz/photo-librarian/internal/metrics"
	"github.com/franz/photo-librarian/internal/store"
	"github.com/franz/photo-librarian/internal/util"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers holds the dependencies of the HTTP handlers
type Handlers struct {
	app *app.App
}

// New creates handlers backed by a
func New(a *app.App) *Handlers {
	return &Handlers{app: a}
}

// Router builds the API routes
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(recordMetrics)

	api.HandleFunc("/scan", h.ScanDirectory).Methods("POST")
	api.HandleFunc("/upload", h.UploadPhotos).Methods("POST")
	api.HandleFunc("/photos", h.GetPhotos).Methods("GET")
	api.HandleFunc("/photos", h.DeletePhotos).Methods("DELETE")
	api.HandleFunc("/photo", h.GetPhoto).Methods("GET")
	api.HandleFunc("/photo", h.PhotoExists).Methods("HEAD")
	api.HandleFunc("/favorites", h.ToggleFavorite).Methods("PUT")
	api.HandleFunc("/albums", h.GetAlbums).Methods("GET")
	api.HandleFunc("/albums", h.CreateAlbum).Methods("POST")
	api.HandleFunc("/albums/{id:[0-9]+}", h.GetAlbum).Methods("GET")
	api.HandleFunc("/albums/{id:[0-9]+}/photos", h.GetAlbumPhotos).Methods("GET")
	api.HandleFunc("/albums/{id:[0-9]+}/photos", h.AddToAlbum).Methods("POST")
	api.HandleFunc("/stats/years", h.GetYearCounts).Methods("GET")

	return r
}

type scanRequest struct {
	Dir  string `json:"dir"`
	Save bool   `json:"save"`
}

type pathsRequest struct {
	Paths []string `json:"paths"`
}

type favoriteRequest struct {
	Path       string `json:"path"`
	IsFavorite bool   `json:"is_favorite"`
}

type albumRequest struct {
	Name string `json:"name"`
}

type failureResponse struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type ingestResponse struct {
	Photos   []store.Photo     `json:"photos"`
	Failures []failureResponse `json:"failures"`
	Skipped  int               `json:"skipped,omitempty"`
}

func newIngestResponse(result *ingest.Result) ingestResponse {
	resp := ingestResponse{
		Photos:   result.Records,
		Failures: make([]failureResponse, 0, len(result.Failures)),
		Skipped:  result.Skipped,
	}
	if resp.Photos == nil {
		resp.Photos = []store.Photo{}
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, failureResponse{Path: f.Path, Error: f.Err.Error()})
	}
	return resp
}

// HealthCheck reports whether the store can be opened
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.app.CheckStore(); err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, "ok")
}

func (h *Handlers) ScanDirectory(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Dir == "" {
		writeJSONError(w, "dir is required", http.StatusBadRequest)
		return
	}

	result, err := h.app.ScanDirectory(r.Context(), req.Dir, req.Save)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newIngestResponse(result))
}

func (h *Handlers) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	var req pathsRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.app.UploadPhotos(r.Context(), req.Paths)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newIngestResponse(result))
}

// GetPhotos lists all photos, or a filtered view with ?favorites=true or
// ?year=YYYY&month=MM
func (h *Handlers) GetPhotos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var photos []store.Photo
	var err error

	switch {
	case q.Get("favorites") == "true":
		photos, err = h.app.GetFavorites()
	case q.Get("year") != "" || q.Get("month") != "":
		year, errY := strconv.Atoi(q.Get("year"))
		month, errM := strconv.Atoi(q.Get("month"))
		if errY != nil || errM != nil {
			writeJSONError(w, "year and month must both be numbers", http.StatusBadRequest)
			return
		}
		photos, err = h.app.GetPhotosByMonth(year, time.Month(month))
	default:
		photos, err = h.app.GetAllPhotos()
	}

	if err != nil {
		writeError(w, err)
		return
	}
	writePhotos(w, photos)
}

// GetPhoto returns a single record selected by the path query parameter
func (h *Handlers) GetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := h.app.GetPhoto(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

// PhotoExists answers 200 if the path is indexed and 404 otherwise
func (h *Handlers) PhotoExists(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	exists, err := h.app.PhotoExists(path)
	switch {
	case err != nil:
		w.WriteHeader(statusFor(err))
	case !exists:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handlers) DeletePhotos(w http.ResponseWriter, r *http.Request) {
	var req pathsRequest
	if !decode(w, r, &req) {
		return
	}

	deleted, err := h.app.DeletePhotos(req.Paths)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return
	}

	if err := h.app.ToggleFavorite(req.Path, req.IsFavorite); err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, "ok")
}

func (h *Handlers) GetAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.app.GetAlbums()
	if err != nil {
		writeError(w, err)
		return
	}
	if albums == nil {
		albums = []store.Album{}
	}
	writeJSON(w, http.StatusOK, albums)
}

func (h *Handlers) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req albumRequest
	if !decode(w, r, &req) {
		return
	}

	album, err := h.app.CreateAlbum(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

// GetAlbum returns one album with its count and cover
func (h *Handlers) GetAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}
	album, err := h.app.GetAlbum(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (h *Handlers) GetAlbumPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}

	photos, err := h.app.GetAlbumPhotos(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writePhotos(w, photos)
}

func (h *Handlers) AddToAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}
	var req pathsRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.app.AddToAlbum(id, req.Paths); err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, "ok")
}

func (h *Handlers) GetYearCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.app.GetYearCounts()
	if err != nil {
		writeError(w, err)
		return
	}
	if counts == nil {
		counts = []store.YearCount{}
	}
	writeJSON(w, http.StatusOK, counts)
}

func albumID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "invalid album id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writePhotos(w http.ResponseWriter, photos []store.Photo) {
	if photos == nil {
		photos = []store.Photo{}
	}
	writeJSON(w, http.StatusOK, photos)
}

// statusFor maps sentinel errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, util.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, util.ErrInvalidArgument), errors.Is(err, util.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, util.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		util.ErrorLog("API request failed: %v", err)
	}
	writeJSONError(w, err.Error(), status)
}
