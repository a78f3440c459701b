package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"marketproxy/internal/market"
	"marketproxy/internal/market/indicator"
	"marketproxy/internal/proxy"
)

// Handler serves the market API on top of the orchestrator.
type Handler struct {
	Orch   *proxy.Orchestrator
	Assets []market.Asset
	Log    logrus.FieldLogger
}

func routes(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/assets", h.GetAssets).Methods("GET")
	api.HandleFunc("/market/{id}", h.GetMarket).Methods("GET")
	api.HandleFunc("/market/{id}/indicators", h.GetIndicators).Methods("GET")
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) GetAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"assets": h.Assets})
}

func (h *Handler) asset(id string) (market.Asset, bool) {
	for _, a := range h.Assets {
		if a.ID == id {
			return a, true
		}
	}
	return market.Asset{}, false
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (*market.Data, bool) {
	asset, ok := h.asset(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "unknown asset", http.StatusNotFound)
		return nil, false
	}
	rng := market.Range1M
	if s := r.URL.Query().Get("range"); s != "" {
		var err error
		if rng, err = market.ParseRange(s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	d, err := h.Orch.Fetch(ctx, asset, rng)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return d, true
}

func (h *Handler) GetMarket(w http.ResponseWriter, r *http.Request) {
	d, ok := h.fetch(w, r)
	if !ok {
		return
	}
	writeJSON(w, d)
}

// indicatorsResponse carries only the series requested by query parameters.
type indicatorsResponse struct {
	SMA []market.PricePoint `json:"sma,omitempty"`
	EMA []market.PricePoint `json:"ema,omitempty"`
	BB  *indicator.Bands    `json:"bollinger,omitempty"`
}

func (h *Handler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	d, ok := h.fetch(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var resp indicatorsResponse
	if p := intParam(q.Get("sma")); p > 0 {
		resp.SMA = indicator.SMA(d.Series.History, p)
	}
	if p := intParam(q.Get("ema")); p > 0 {
		resp.EMA = indicator.EMA(d.Series.History, p)
	}
	if p := intParam(q.Get("bb")); p > 0 {
		mult := 2.0
		if m, err := strconv.ParseFloat(q.Get("mult"), 64); err == nil && m > 0 {
			mult = m
		}
		b := indicator.Bollinger(d.Series.History, p, mult)
		resp.BB = &b
	}
	writeJSON(w, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var up *market.UpstreamError
	var data *market.DataError
	var nosrc *market.NoSourceError
	switch {
	case errors.As(err, &up):
		// Preserve the upstream status for the caller.
		http.Error(w, err.Error(), up.Status)
	case errors.As(err, &data):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &nosrc):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
	if h.Log != nil {
		h.Log.WithError(err).Warn("fetch failed")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func intParam(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
