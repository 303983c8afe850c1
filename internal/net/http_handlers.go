// Package net exposes the hub over HTTP and websockets.
package net

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	nethttp "net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"tidepool/server"
	"tidepool/server/catalog"
	"tidepool/server/internal/grid"
	"tidepool/server/internal/merge"
	"tidepool/server/internal/net/ws"
	"tidepool/server/internal/observability"
	"tidepool/server/internal/pets"
	"tidepool/server/internal/telemetry"
)

const maxImportBytes = 1 << 20

type HTTPHandlerConfig struct {
	Logger        telemetry.Logger
	Observability observability.Config
	Metrics       *telemetry.Counters
}

type positionRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type api struct {
	hub     *server.Hub
	logger  telemetry.Logger
	metrics *telemetry.Counters
}

func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	a := &api{hub: hub, logger: logger, metrics: cfg.Metrics}

	r := mux.NewRouter()

	r.HandleFunc("/health", a.health).Methods(nethttp.MethodGet)
	r.HandleFunc("/state", a.state).Methods(nethttp.MethodGet)
	r.HandleFunc("/state/import", a.importLegacy).Methods(nethttp.MethodPost)
	r.HandleFunc("/catalog/schema", a.catalogSchema).Methods(nethttp.MethodGet)

	r.HandleFunc("/crates/{rarity}/open", a.openCrates).Methods(nethttp.MethodPost)

	r.HandleFunc("/pets/{id}/rating", a.rating).Methods(nethttp.MethodGet)
	r.HandleFunc("/pets/{id}/place", a.placePet).Methods(nethttp.MethodPost)
	r.HandleFunc("/pets/{id}/move", a.movePet).Methods(nethttp.MethodPost)
	r.HandleFunc("/pets/{id}/remove", a.removePet).Methods(nethttp.MethodPost)
	r.HandleFunc("/pets/{id}/merge/{target}", a.mergePets).Methods(nethttp.MethodPost)
	r.HandleFunc("/pets/{id}/collect", a.collect).Methods(nethttp.MethodPost)
	r.HandleFunc("/pets/{id}/sell", a.sell).Methods(nethttp.MethodPost)
	r.HandleFunc("/pets/{id}/lock", a.toggleLock).Methods(nethttp.MethodPost)

	r.HandleFunc("/buffs/{id}/grant", a.grantBuff).Methods(nethttp.MethodPost)
	r.HandleFunc("/buffs/{instance}/place", a.placeBuff).Methods(nethttp.MethodPost)
	r.HandleFunc("/buffs/{instance}/remove", a.removeBuff).Methods(nethttp.MethodPost)

	stream := ws.NewHandler(hub, ws.HandlerConfig{Logger: standardLogger(logger)})
	r.HandleFunc("/ws", stream.Handle).Methods(nethttp.MethodGet)

	if cfg.Observability.EnablePprofTrace {
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/debug/pprof/profile", pprof.Profile)
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/debug/pprof/trace", pprof.Trace)
		r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	return r
}

func standardLogger(logger telemetry.Logger) *log.Logger {
	if provider, ok := logger.(interface{ StandardLogger() *log.Logger }); ok {
		if candidate := provider.StandardLogger(); candidate != nil {
			return candidate
		}
	}
	return log.Default()
}

func (a *api) health(w nethttp.ResponseWriter, r *nethttp.Request) {
	payload := struct {
		Status      string            `json:"status"`
		ServerTime  int64             `json:"serverTime"`
		Tick        uint64            `json:"tick"`
		Pets        int               `json:"pets"`
		Subscribers int               `json:"subscribers"`
		Metrics     map[string]uint64 `json:"metrics,omitempty"`
	}{
		Status:      "ok",
		ServerTime:  time.Now().UnixMilli(),
		Tick:        a.hub.TickCount(),
		Pets:        len(a.hub.Pets()),
		Subscribers: a.hub.SubscriberCount(),
		Metrics:     a.metrics.Snapshot(),
	}
	writeJSON(w, nethttp.StatusOK, payload)
}

func (a *api) state(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, a.hub.StateMessage())
}

func (a *api) catalogSchema(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, catalog.Schema())
}

func (a *api) importLegacy(w nethttp.ResponseWriter, r *nethttp.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		httpError(w, "failed to read payload", nethttp.StatusBadRequest)
		return
	}
	legacy, err := a.hub.ImportLegacy(r.Context(), raw)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.hub.Broadcast(r.Context())

	response := struct {
		Status  string   `json:"status"`
		Pets    int      `json:"pets"`
		Skipped []string `json:"skipped,omitempty"`
	}{
		Status:  "ok",
		Pets:    len(legacy.Pets),
		Skipped: legacy.Skipped,
	}
	writeJSON(w, nethttp.StatusOK, response)
}

func (a *api) openCrates(w nethttp.ResponseWriter, r *nethttp.Request) {
	rarity, err := catalog.ParseRarity(mux.Vars(r)["rarity"])
	if err != nil {
		a.fail(w, err)
		return
	}
	count := 1
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			httpError(w, "invalid count", nethttp.StatusBadRequest)
			return
		}
	}
	purchase, err := a.hub.OpenCrates(r.Context(), rarity, count)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.hub.Broadcast(r.Context())
	writeJSON(w, nethttp.StatusOK, purchase)
}

func (a *api) rating(w nethttp.ResponseWriter, r *nethttp.Request) {
	report, err := a.hub.Rating(mux.Vars(r)["id"])
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, report)
}

func (a *api) placePet(w nethttp.ResponseWriter, r *nethttp.Request) {
	pos, ok := decodePosition(w, r)
	if !ok {
		return
	}
	result, err := a.hub.PlacePet(r.Context(), mux.Vars(r)["id"], pos)
	a.respond(w, r, result, err)
}

func (a *api) movePet(w nethttp.ResponseWriter, r *nethttp.Request) {
	pos, ok := decodePosition(w, r)
	if !ok {
		return
	}
	result, err := a.hub.MovePet(r.Context(), mux.Vars(r)["id"], pos)
	a.respond(w, r, result, err)
}

func (a *api) removePet(w nethttp.ResponseWriter, r *nethttp.Request) {
	id := mux.Vars(r)["id"]
	err := a.hub.RemovePetFromGrid(r.Context(), id)
	a.respond(w, r, map[string]string{"petId": id}, err)
}

func (a *api) mergePets(w nethttp.ResponseWriter, r *nethttp.Request) {
	vars := mux.Vars(r)
	result, err := a.hub.MergePets(r.Context(), vars["id"], vars["target"])
	a.respond(w, r, result, err)
}

func (a *api) collect(w nethttp.ResponseWriter, r *nethttp.Request) {
	result, err := a.hub.CollectGems(r.Context(), mux.Vars(r)["id"])
	a.respond(w, r, result, err)
}

func (a *api) sell(w nethttp.ResponseWriter, r *nethttp.Request) {
	id := mux.Vars(r)["id"]
	price, err := a.hub.SellPet(r.Context(), id)
	response := struct {
		PetID   string `json:"petId"`
		Price   int64  `json:"price"`
		Balance int64  `json:"balance"`
	}{PetID: id, Price: price, Balance: a.hub.Cash()}
	a.respond(w, r, response, err)
}

func (a *api) toggleLock(w nethttp.ResponseWriter, r *nethttp.Request) {
	id := mux.Vars(r)["id"]
	locked, err := a.hub.ToggleLock(r.Context(), id)
	response := struct {
		PetID  string `json:"petId"`
		Locked bool   `json:"locked"`
	}{PetID: id, Locked: locked}
	a.respond(w, r, response, err)
}

func (a *api) grantBuff(w nethttp.ResponseWriter, r *nethttp.Request) {
	placed, err := a.hub.GrantBuff(r.Context(), mux.Vars(r)["id"])
	a.respond(w, r, placed, err)
}

func (a *api) placeBuff(w nethttp.ResponseWriter, r *nethttp.Request) {
	pos, ok := decodePosition(w, r)
	if !ok {
		return
	}
	placed, err := a.hub.PlaceBuff(r.Context(), mux.Vars(r)["instance"], pos)
	a.respond(w, r, placed, err)
}

func (a *api) removeBuff(w nethttp.ResponseWriter, r *nethttp.Request) {
	placed, err := a.hub.RemoveBuff(r.Context(), mux.Vars(r)["instance"])
	a.respond(w, r, placed, err)
}

// respond writes payload after a successful mutation and pushes the new state
// to websocket subscribers.
func (a *api) respond(w nethttp.ResponseWriter, r *nethttp.Request, payload any, err error) {
	if err != nil {
		a.fail(w, err)
		return
	}
	a.hub.Broadcast(r.Context())
	writeJSON(w, nethttp.StatusOK, payload)
}

func (a *api) fail(w nethttp.ResponseWriter, err error) {
	code := statusFor(err)
	if code == nethttp.StatusInternalServerError {
		a.logger.Printf("request failed: %v", err)
	}
	httpError(w, err.Error(), code)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, server.ErrUnknownPet),
		errors.Is(err, server.ErrUnknownBuff),
		errors.Is(err, catalog.ErrUnknownBuff),
		errors.Is(err, catalog.ErrUnknownTemplate),
		errors.Is(err, catalog.ErrUnknownCrate):
		return nethttp.StatusNotFound
	case errors.Is(err, server.ErrInsufficientCash):
		return nethttp.StatusPaymentRequired
	case errors.Is(err, server.ErrTileLocked),
		errors.Is(err, server.ErrTileOccupied),
		errors.Is(err, server.ErrPetLocked),
		errors.Is(err, server.ErrNotPlaced),
		errors.Is(err, grid.ErrAlreadyOnMap),
		errors.Is(err, merge.ErrSamePet),
		errors.Is(err, merge.ErrDifferentTemplate),
		errors.Is(err, merge.ErrDifferentRating),
		errors.Is(err, merge.ErrLocked):
		return nethttp.StatusConflict
	case errors.Is(err, server.ErrInvalidCount),
		errors.Is(err, grid.ErrOutOfBounds),
		errors.Is(err, catalog.ErrUnknownRarity),
		errors.Is(err, pets.ErrInvalidLegacy):
		return nethttp.StatusBadRequest
	default:
		return nethttp.StatusInternalServerError
	}
}

func decodePosition(w nethttp.ResponseWriter, r *nethttp.Request) (grid.Position, bool) {
	var req positionRequest
	if r.Body != nil {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return grid.Position{}, false
		}
	}
	if req.X == nil || req.Y == nil {
		httpError(w, "x and y are required", nethttp.StatusBadRequest)
		return grid.Position{}, false
	}
	return grid.Position{X: *req.X, Y: *req.Y}, true
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
