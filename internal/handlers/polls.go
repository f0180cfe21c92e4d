package handlers

import (
	"net/http"

	"github.com/abrezinsky/polydemo/internal/models"
)

const defaultPageSize = 20

func (h *Handlers) handleListPolls(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", defaultPageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	offset, err := parseIntQuery(r, "offset", 0)
	if err != nil {
		respondError(w, err)
		return
	}

	list, err := h.Polls.ListPolls(r.Context(), limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, list)
}

func (h *Handlers) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.NewPoll
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Polls.CreatePoll(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, CreatePollResponse{ID: id})
}

func (h *Handlers) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	summary, err := h.Polls.GetSummary(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, summary)
}

func (h *Handlers) handleGetResults(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	results, err := h.Polls.GetResults(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, results)
}

func (h *Handlers) handleEndPoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Polls.EndPoll(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Poll ended")
}

func (h *Handlers) handlePollQR(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Polls.GeneratePollQR(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
