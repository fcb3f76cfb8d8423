package stream

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// Fleet is the read and state-change surface the API serves.
type Fleet interface {
	LiveMachines() []domain.Machine
	Machine(id string) (domain.Machine, error)
	Anomalies() []domain.AnomalyRecord
	SetOperationalState(id string, state domain.OperationalState) error
}

type API struct {
	fleet    Fleet
	hub      *Hub
	obs      ports.Observability
	upgrader websocket.Upgrader
}

func NewAPI(fleet Fleet, hub *Hub, obs ports.Observability) *API {
	return &API{
		fleet: fleet,
		hub:   hub,
		obs:   obs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// origin policy is enforced by the CORS layer
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the routed API wrapped in CORS for the given origins.
func (a *API) Handler(allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", a.health).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/machines", a.listMachines).Methods("GET")
	api.HandleFunc("/machines/{id}", a.getMachine).Methods("GET")
	api.HandleFunc("/machines/{id}/state", a.setState).Methods("PUT")
	api.HandleFunc("/anomalies", a.listAnomalies).Methods("GET")

	if a.hub != nil {
		router.HandleFunc("/ws", a.serveWS).Methods("GET")
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) listMachines(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, a.fleet.LiveMachines())
}

func (a *API) getMachine(w http.ResponseWriter, r *http.Request) {
	m, err := a.fleet.Machine(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// listAnomalies serves the ledger newest first. Optional filters:
// machine_id, severity and limit.
func (a *API) listAnomalies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	machineID := q.Get("machine_id")
	severity := domain.Severity(q.Get("severity"))

	out := make([]domain.AnomalyRecord, 0)
	for _, rec := range a.fleet.Anomalies() {
		if machineID != "" && rec.MachineID != machineID {
			continue
		}
		if severity != "" && rec.Severity != severity {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	respondJSON(w, http.StatusOK, out)
}

type stateRequest struct {
	State string `json:"state"`
}

func (a *API) setState(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	state, err := domain.ParseOperationalState(req.State)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	id := mux.Vars(r)["id"]
	if err := a.fleet.SetOperationalState(id, state); err != nil {
		respondDomainError(w, err)
		return
	}
	m, err := a.fleet.Machine(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (a *API) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.obs.LogWarn("stream_upgrade_failed", ports.Field{Key: "error", Value: err.Error()})
		return
	}
	client := NewClient(a.hub, conn, uuid.NewString())

	select {
	case a.hub.register <- client:
	case <-a.hub.ctx.Done():
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownMachine):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnknownState):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
