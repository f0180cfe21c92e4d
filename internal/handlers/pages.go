package handlers

import (
	"net/http"
	"strconv"

	"github.com/abrezinsky/polydemo/internal/models"
	"github.com/abrezinsky/polydemo/internal/services"
)

// PageData holds the data passed to every page template
type PageData struct {
	Title     string
	ActiveNav string
}

// IndexPageData is the data for the single-widget page
type IndexPageData struct {
	PageData
	Poll  *services.PollSummary
	Error string
}

// ListPageData is the data for the poll list page
type ListPageData struct {
	PageData
	List       *services.PollList
	PrevOffset int
	NextOffset int
	HasPrev    bool
	HasNext    bool
}

// PlaygroundPageData is the data for the playground page
type PlaygroundPageData struct {
	PageData
	Settings models.PlaygroundSettings
	Code     string
	Polls    []services.PollSummary
}

// handleIndex shows the widget for ?poll=<id>, or the newest poll
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := IndexPageData{PageData: PageData{Title: "Poll", ActiveNav: "widget"}}
	ctx := r.Context()

	if v := r.URL.Query().Get("poll"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, BadRequest("Invalid poll parameter"))
			return
		}
		summary, err := h.Polls.GetSummary(ctx, id)
		if err != nil {
			apiErr := ToAPIError(err)
			w.WriteHeader(apiErr.Status)
			data.Error = apiErr.Message
		} else {
			data.Poll = summary
		}
	} else {
		list, err := h.Polls.ListPolls(ctx, 1, 0)
		if err != nil {
			respondError(w, err)
			return
		}
		if len(list.Polls) > 0 {
			data.Poll = &list.Polls[0]
		}
	}

	if data.Poll != nil {
		data.Title = data.Poll.Question
	}
	h.templates.Index.Execute(w, data)
}

func (h *Handlers) handleList(w http.ResponseWriter, r *http.Request) {
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

	prev := offset - limit
	if prev < 0 {
		prev = 0
	}
	data := ListPageData{
		PageData:   PageData{Title: "All Polls", ActiveNav: "list"},
		List:       list,
		PrevOffset: prev,
		NextOffset: offset + limit,
		HasPrev:    offset > 0,
		HasNext:    len(list.Polls) == limit,
	}
	h.templates.List.Execute(w, data)
}

func (h *Handlers) handlePlayground(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.Settings.GetPlayground(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	list, err := h.Polls.ListPolls(ctx, defaultPageSize, 0)
	if err != nil {
		respondError(w, err)
		return
	}

	data := PlaygroundPageData{
		PageData: PageData{Title: "Playground", ActiveNav: "playground"},
		Settings: settings,
		Code:     services.GenerateCode(settings),
		Polls:    list.Polls,
	}
	h.templates.Playground.Execute(w, data)
}
