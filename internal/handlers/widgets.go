package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/polydemo/internal/poll"
)

// widgetConfig builds the configuration for a mount request
func (h *Handlers) widgetConfig(r *http.Request, req MountWidgetRequest) (*poll.Config, error) {
	if req.UsePlayground {
		settings, err := h.Settings.GetPlayground(r.Context())
		if err != nil {
			return nil, err
		}
		cfg := settings.WidgetConfig()
		return &cfg, nil
	}
	if len(req.Config) == 0 {
		return nil, nil
	}

	cfg := h.Widgets.Defaults()
	if err := json.Unmarshal(req.Config, &cfg); err != nil {
		return nil, BadRequest("Invalid config: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (h *Handlers) handleMountWidget(w http.ResponseWriter, r *http.Request) {
	var req MountWidgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.PollID <= 0 {
		respondError(w, BadRequest("poll_id is required"))
		return
	}

	cfg, err := h.widgetConfig(r, req)
	if err != nil {
		respondError(w, err)
		return
	}

	id, view, err := h.Widgets.Mount(r.Context(), req.PollID, cfg)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, MountWidgetResponse{WidgetID: id, View: view})
}

// handleRenderWidget returns the widget's view; ?refresh=true reloads the
// poll from the data source first.
func (h *Handlers) handleRenderWidget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if r.URL.Query().Get("refresh") == "true" {
		view, err := h.Widgets.Refresh(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, view)
		return
	}

	view, err := h.Widgets.Render(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleVote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Option == nil {
		respondError(w, BadRequest("option is required"))
		return
	}

	result, err := h.Widgets.Vote(r.Context(), chi.URLParam(r, "id"), *req.Option)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

func (h *Handlers) handleUnmountWidget(w http.ResponseWriter, r *http.Request) {
	if err := h.Widgets.Unmount(chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}
