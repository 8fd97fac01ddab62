package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mmrzaf/fixturegen/internal/app"
	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/model"
)

// maxCreateQuantity caps the quantity a single POST may ask for.
const maxCreateQuantity = 10000

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Health)

	mux.HandleFunc("GET /api/v1/fixtures", h.ListFixtures)
	mux.HandleFunc("GET /api/v1/fixtures/{name}", h.GetFixture)
	mux.HandleFunc("POST /api/v1/fixtures/{name}/records", h.CreateRecords)

	mux.HandleFunc("GET /api/v1/created", h.ListCreated)
	mux.HandleFunc("GET /api/v1/created/{name}", h.GetCreated)
	mux.HandleFunc("DELETE /api/v1/created", h.ClearCreated)

	mux.HandleFunc("GET /api/v1/target", h.GetTarget)
	mux.HandleFunc("GET /api/v1/generators", h.ListGenerators)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListFixtures()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, list)
}

func (h *Handler) GetFixture(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetFixture(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, detail)
}

type createRequest struct {
	Quantity *int            `json:"quantity,omitempty"`
	Override json.RawMessage `json:"override,omitempty"`
	Refs     json.RawMessage `json:"refs,omitempty"`
}

type createResponse struct {
	Fixture string                   `json:"fixture"`
	Records []domain.PersistedRecord `json:"records"`
}

func (h *Handler) CreateRecords(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req createRequest
	if err := decodeJSONStrict(r, &req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity > maxCreateQuantity {
		http.Error(w, "quantity exceeds limit", http.StatusBadRequest)
		return
	}
	override, err := model.ParseOverride(req.Override)
	if err != nil {
		writeError(w, err)
		return
	}
	refs, err := domain.ParseExternalRefs(req.Refs)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := h.svc.Create(r.Context(), name, quantity, override, refs)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createResponse{Fixture: name, Records: records})
}

func (h *Handler) ListCreated(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Factory().Created())
}

func (h *Handler) GetCreated(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := h.svc.Factory().Fixture(name); err != nil {
		writeError(w, err)
		return
	}
	ids := h.svc.Factory().CreatedFor(name)
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, ids)
}

func (h *Handler) ClearCreated(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetTarget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, app.RedactTarget(&h.svc.Config().Target))
}

func (h *Handler) ListGenerators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Generators())
}

// statusFor maps an error kind to the HTTP status a client sees.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindConfiguration:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindGeneration:
		return http.StatusUnprocessableEntity
	case domain.KindPersistence:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSONStrict(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
