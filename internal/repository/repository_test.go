package repository

import (
	"context"
	"testing"
	"time"

	"github.com/abrezinsky/polydemo/internal/models"
)

// newTestRepo creates a new in-memory repository for testing.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

var baseTime = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func samplePoll(question string) models.Poll {
	return models.Poll{
		Question:  question,
		Category:  "Technology",
		Options:   []string{"Smart Contracts", "DeFi", "NFTs"},
		Votes:     []int{5, 3, 0},
		CreatedAt: baseTime,
		ExpiresAt: baseTime.Add(72 * time.Hour),
	}
}

// ==================== Poll Tests ====================

func TestCreatePoll_AndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreatePoll(ctx, samplePoll("Favorite feature?"))
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive ID, got %d", id)
	}

	p, err := repo.GetPoll(ctx, int(id))
	if err != nil {
		t.Fatalf("GetPoll failed: %v", err)
	}
	if p.Question != "Favorite feature?" || p.Category != "Technology" {
		t.Errorf("unexpected poll: %+v", p)
	}
	if len(p.Options) != 3 || p.Options[1] != "DeFi" {
		t.Errorf("unexpected options: %v", p.Options)
	}
	if len(p.Votes) != 3 || p.Votes[0] != 5 || p.Votes[1] != 3 {
		t.Errorf("unexpected votes: %v", p.Votes)
	}
	if !p.CreatedAt.Equal(baseTime) || !p.ExpiresAt.Equal(baseTime.Add(72*time.Hour)) {
		t.Errorf("timestamps did not round-trip: %v %v", p.CreatedAt, p.ExpiresAt)
	}
	if p.Source != models.SourceContract {
		t.Errorf("expected contract source, got %q", p.Source)
	}
}

func TestCreatePoll_NilVotesStartAtZero(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := samplePoll("Zero?")
	p.Votes = nil
	id, err := repo.CreatePoll(ctx, p)
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}

	got, err := repo.GetPoll(ctx, int(id))
	if err != nil {
		t.Fatalf("GetPoll failed: %v", err)
	}
	if len(got.Votes) != 3 {
		t.Fatalf("expected 3 zero counts, got %v", got.Votes)
	}
	for i, n := range got.Votes {
		if n != 0 {
			t.Errorf("expected zero at %d, got %d", i, n)
		}
	}
}

func TestGetPoll_NonExistent(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetPoll(context.Background(), 999)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPolls_NewestFirstWithPaging(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, q := range []string{"first", "second", "third"} {
		if _, err := repo.CreatePoll(ctx, samplePoll(q)); err != nil {
			t.Fatalf("CreatePoll failed: %v", err)
		}
	}

	polls, err := repo.ListPolls(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListPolls failed: %v", err)
	}
	if len(polls) != 2 || polls[0].Question != "third" || polls[1].Question != "second" {
		t.Errorf("unexpected first page: %+v", polls)
	}

	polls, err = repo.ListPolls(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListPolls failed: %v", err)
	}
	if len(polls) != 1 || polls[0].Question != "first" {
		t.Errorf("unexpected second page: %+v", polls)
	}

	count, err := repo.CountPolls(ctx)
	if err != nil {
		t.Fatalf("CountPolls failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 polls, got %d", count)
	}
}

func TestListPolls_EmptyIsNotNil(t *testing.T) {
	repo := newTestRepo(t)

	polls, err := repo.ListPolls(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListPolls failed: %v", err)
	}
	if polls == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestSetPollStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.CreatePoll(ctx, samplePoll("end me"))
	if err := repo.SetPollStatus(ctx, int(id), "ended"); err != nil {
		t.Fatalf("SetPollStatus failed: %v", err)
	}

	p, _ := repo.GetPoll(ctx, int(id))
	if p.Status != "ended" {
		t.Errorf("expected ended status, got %q", p.Status)
	}

	if err := repo.SetPollStatus(ctx, 999, "ended"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for missing poll, got %v", err)
	}
}

// ==================== Vote Tests ====================

func TestRecordVote_IncrementsTallyAndLogsBallot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.CreatePoll(ctx, samplePoll("vote"))
	if err := repo.RecordVote(ctx, int(id), 0, "widget-1"); err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if err := repo.RecordVote(ctx, int(id), 2, "widget-2"); err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}

	p, _ := repo.GetPoll(ctx, int(id))
	if p.Votes[0] != 6 || p.Votes[1] != 3 || p.Votes[2] != 1 {
		t.Errorf("unexpected tally after votes: %v", p.Votes)
	}

	count, err := repo.CountVotes(ctx, int(id))
	if err != nil {
		t.Fatalf("CountVotes failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 ballots, got %d", count)
	}
}

func TestRecordVote_Rejections(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id, _ := repo.CreatePoll(ctx, samplePoll("bounds"))

	if err := repo.RecordVote(ctx, 999, 0, "w"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.RecordVote(ctx, int(id), 3, "w"); err != ErrOptionOutOfRange {
		t.Errorf("expected ErrOptionOutOfRange, got %v", err)
	}
	if err := repo.RecordVote(ctx, int(id), -1, "w"); err != ErrOptionOutOfRange {
		t.Errorf("expected ErrOptionOutOfRange, got %v", err)
	}

	p, _ := repo.GetPoll(ctx, int(id))
	if p.Votes[0] != 5 || p.Votes[1] != 3 || p.Votes[2] != 0 {
		t.Errorf("tally changed by rejected votes: %v", p.Votes)
	}
	if n, _ := repo.CountVotes(ctx, int(id)); n != 0 {
		t.Errorf("expected no ballots, got %d", n)
	}
}

// ==================== Settings Tests ====================

func TestSettings_DefaultDataSource(t *testing.T) {
	repo := newTestRepo(t)

	value, err := repo.GetSetting(context.Background(), "data_source")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != models.SourceAuto {
		t.Errorf("expected default data source %q, got %q", models.SourceAuto, value)
	}
}

func TestSettings_SetGetDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetSetting(ctx, "missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := repo.SetSetting(ctx, "base_url", "http://10.0.0.5:8080"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := repo.SetSetting(ctx, "base_url", "http://10.0.0.6:8080"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}
	value, _ := repo.GetSetting(ctx, "base_url")
	if value != "http://10.0.0.6:8080" {
		t.Errorf("expected overwritten value, got %q", value)
	}

	if err := repo.DeleteSetting(ctx, "base_url"); err != nil {
		t.Fatalf("DeleteSetting failed: %v", err)
	}
	if _, err := repo.GetSetting(ctx, "base_url"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPing(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
	if repo.DB() == nil {
		t.Error("expected DB handle")
	}
}
