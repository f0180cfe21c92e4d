package handlers

import "net/http"

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, all)
}

func (h *Handlers) handleGetDataSource(w http.ResponseWriter, r *http.Request) {
	source, err := h.Settings.GetDataSource(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, DataSourceResponse{DataSource: source})
}

func (h *Handlers) handleSetDataSource(w http.ResponseWriter, r *http.Request) {
	var req DataSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Settings.SetDataSource(r.Context(), req.DataSource); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, DataSourceResponse{DataSource: req.DataSource})
}

func (h *Handlers) handleSetBaseURL(w http.ResponseWriter, r *http.Request) {
	var req BaseURLRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Settings.SetBaseURL(r.Context(), req.BaseURL); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Base URL updated")
}

func (h *Handlers) handleGetPlayground(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.GetPlayground(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

// handleUpdatePlayground accepts partial settings; absent fields keep
// their current values.
func (h *Handlers) handleUpdatePlayground(w http.ResponseWriter, r *http.Request) {
	current, err := h.Settings.GetPlayground(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	update := current
	if err := decodeJSON(r, &update); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Settings.UpdatePlayground(r.Context(), update); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, update)
}

func (h *Handlers) handleResetPlayground(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.ResetPlayground(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handlePlaygroundCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.Settings.PlaygroundCode(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, CodeResponse{Code: code})
}
