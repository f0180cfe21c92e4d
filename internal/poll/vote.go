package poll

import "fmt"

// VoteStatus is one viewer's vote state. HasVoted never goes back to false.
type VoteStatus struct {
	HasVoted     bool `json:"has_voted"`
	ChosenOption *int `json:"chosen_option,omitempty"`
}

// VoteErrorKind classifies a rejected vote
type VoteErrorKind int

const (
	NotActive VoteErrorKind = iota + 1
	AlreadyVoted
	InvalidOption
)

func (k VoteErrorKind) String() string {
	switch k {
	case NotActive:
		return "not_active"
	case AlreadyVoted:
		return "already_voted"
	case InvalidOption:
		return "invalid_option"
	default:
		return "unknown"
	}
}

// VoteError is returned by CastVote when a vote is rejected.
// Compare with errors.Is against the sentinels below.
type VoteError struct {
	Kind      VoteErrorKind
	Option    int
	Lifecycle Lifecycle
}

func (e *VoteError) Error() string {
	switch e.Kind {
	case NotActive:
		if e.Lifecycle != "" {
			return fmt.Sprintf("poll is not active (%s)", e.Lifecycle)
		}
		return "poll is not active"
	case AlreadyVoted:
		return "already voted on this poll"
	case InvalidOption:
		return fmt.Sprintf("invalid option index %d", e.Option)
	default:
		return "vote rejected"
	}
}

// Is matches any VoteError of the same kind
func (e *VoteError) Is(target error) bool {
	t, ok := target.(*VoteError)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotActive     = &VoteError{Kind: NotActive}
	ErrAlreadyVoted  = &VoteError{Kind: AlreadyVoted}
	ErrInvalidOption = &VoteError{Kind: InvalidOption}
)

// CastVote applies a vote for option to a copy of status and tally.
// The inputs are never modified; on error the returned values are zero.
func CastVote(option int, lifecycle Lifecycle, status VoteStatus, tally []int) (VoteStatus, []int, error) {
	if lifecycle != Active {
		return VoteStatus{}, nil, &VoteError{Kind: NotActive, Option: option, Lifecycle: lifecycle}
	}
	if status.HasVoted {
		return VoteStatus{}, nil, &VoteError{Kind: AlreadyVoted, Option: option, Lifecycle: lifecycle}
	}
	if option < 0 || option >= len(tally) {
		return VoteStatus{}, nil, &VoteError{Kind: InvalidOption, Option: option, Lifecycle: lifecycle}
	}

	next := make([]int, len(tally))
	copy(next, tally)
	next[option]++

	chosen := option
	return VoteStatus{HasVoted: true, ChosenOption: &chosen}, next, nil
}
