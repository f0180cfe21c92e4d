package handlers_test

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/abrezinsky/polydemo/internal/handlers"
	"github.com/abrezinsky/polydemo/internal/models"
	"github.com/abrezinsky/polydemo/internal/poll"
	"github.com/abrezinsky/polydemo/internal/repository/mock"
	"github.com/abrezinsky/polydemo/internal/services"
	"github.com/abrezinsky/polydemo/internal/testutil"
	"github.com/abrezinsky/polydemo/pkg/subgraph"
)

func TestHandleListPolls(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/polls", nil)
	expectStatus(t, rec, http.StatusOK)

	var list services.PollList
	decode(t, rec, &list)
	if list.ActiveSource != models.SourceContract {
		t.Errorf("expected contract source, got %q", list.ActiveSource)
	}
	if len(list.Polls) != 3 || list.Limit != 20 {
		t.Fatalf("expected 3 polls with default limit, got %d/%d", len(list.Polls), list.Limit)
	}
	if list.Polls[0].ID != activePoll || list.Polls[0].Lifecycle != poll.Active {
		t.Errorf("expected newest active poll first, got %+v", list.Polls[0])
	}
	if list.Polls[0].VotesText != "137 votes" {
		t.Errorf("unexpected votes text %q", list.Polls[0].VotesText)
	}
}

func TestHandleListPolls_Paging(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/polls?limit=2&offset=2", nil)
	expectStatus(t, rec, http.StatusOK)

	var list services.PollList
	decode(t, rec, &list)
	if len(list.Polls) != 1 || list.Polls[0].ID != endedPoll {
		t.Errorf("expected the oldest poll on page two, got %+v", list.Polls)
	}
}

func TestHandleListPolls_InvalidPaging(t *testing.T) {
	setup := newTestSetup(t)

	for _, path := range []string{"/api/polls?limit=abc", "/api/polls?offset=x", "/api/polls?limit=0", "/api/polls?limit=500", "/api/polls?offset=-1"} {
		rec := setup.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestHandleListPolls_SubgraphUnavailable(t *testing.T) {
	client := subgraph.NewMockClient(subgraph.WithFetchError(errors.New("indexer down")))
	setup := newTestSetupWith(t, testutil.NewTestRepository(t), client)

	rec := setup.do(t, http.MethodPut, "/api/settings/data-source", map[string]string{"data_source": "subgraph"})
	expectStatus(t, rec, http.StatusOK)

	rec = setup.do(t, http.MethodGet, "/api/polls", nil)
	expectError(t, rec, http.StatusBadGateway, handlers.ErrCodeSourceUnavailable)
}

func TestHandleListPolls_DatabaseError(t *testing.T) {
	mockRepo := mock.NewRepository(testutil.NewTestRepository(t))
	setup := newTestSetupWith(t, mockRepo, subgraph.NewMockClient(subgraph.WithBaseURL("")))
	mockRepo.ListPollsError = errors.New("database is locked")

	rec := setup.do(t, http.MethodGet, "/api/polls", nil)
	expectError(t, rec, http.StatusInternalServerError, handlers.ErrCodeInternalServer)
}

func TestHandleCreatePoll(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/polls", models.NewPoll{
		Question:     "Best L2?",
		Category:     "Scaling",
		Options:      []string{"Optimism", "Arbitrum", "Base"},
		DurationDays: 3,
	})
	expectStatus(t, rec, http.StatusCreated)

	var resp handlers.CreatePollResponse
	decode(t, rec, &resp)
	if resp.ID != 4 {
		t.Errorf("expected id 4, got %d", resp.ID)
	}

	rec = setup.do(t, http.MethodGet, "/api/polls/4", nil)
	expectStatus(t, rec, http.StatusOK)
	var summary services.PollSummary
	decode(t, rec, &summary)
	if summary.Question != "Best L2?" || summary.StatusText != "Ends in 3d 0h 0m" {
		t.Errorf("unexpected poll %+v", summary)
	}
}

func TestHandleCreatePoll_Validation(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/polls", models.NewPoll{
		Question: "Duplicate?",
		Options:  []string{"Yes", "YES"},
	})
	expectError(t, rec, http.StatusBadRequest, handlers.ErrCodeValidation)
}

func TestHandleCreatePoll_BadBody(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/polls", "")
	expectError(t, rec, http.StatusBadRequest, handlers.ErrCodeBadRequest)

	rec = setup.do(t, http.MethodPost, "/api/polls", "{not json")
	expectError(t, rec, http.StatusBadRequest, handlers.ErrCodeBadRequest)
}

func TestHandleGetPoll(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/polls/2", nil)
	expectStatus(t, rec, http.StatusOK)
	var summary services.PollSummary
	decode(t, rec, &summary)
	if summary.Lifecycle != poll.NotStarted || summary.StatusText != "Poll not started yet" {
		t.Errorf("unexpected summary %+v", summary)
	}

	rec = setup.do(t, http.MethodGet, "/api/polls/99", nil)
	expectError(t, rec, http.StatusNotFound, handlers.ErrCodeNotFound)

	rec = setup.do(t, http.MethodGet, "/api/polls/abc", nil)
	expectError(t, rec, http.StatusBadRequest, handlers.ErrCodeBadRequest)
}

func TestHandleGetResults(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/polls/1/results", nil)
	expectStatus(t, rec, http.StatusOK)

	var results poll.Results
	decode(t, rec, &results)
	if results.Total != 64 || len(results.Options) != 3 {
		t.Fatalf("unexpected results %+v", results)
	}
	if !results.Options[0].Leader || results.Options[0].Label != "Proof of Stake" {
		t.Errorf("expected Proof of Stake to lead, got %+v", results.Options[0])
	}
}

func TestHandleEndPoll(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/polls/3/end", nil)
	expectStatus(t, rec, http.StatusOK)

	rec = setup.do(t, http.MethodGet, "/api/polls/3", nil)
	var summary services.PollSummary
	decode(t, rec, &summary)
	if summary.Lifecycle != poll.Ended {
		t.Errorf("expected ended, got %s", summary.Lifecycle)
	}

	rec = setup.do(t, http.MethodPost, "/api/polls/42/end", nil)
	expectError(t, rec, http.StatusNotFound, handlers.ErrCodeNotFound)
}

func TestHandlePollQR(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/polls/3/qr", nil)
	expectError(t, rec, http.StatusConflict, handlers.ErrCodeConflict)

	rec = setup.do(t, http.MethodPut, "/api/settings/base-url", map[string]string{"base_url": "http://192.168.1.5:8080"})
	expectStatus(t, rec, http.StatusOK)

	rec = setup.do(t, http.MethodGet, "/api/polls/3/qr", nil)
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %s", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG body")
	}
}
