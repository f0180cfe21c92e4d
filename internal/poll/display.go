package poll

// Interface is the screen a widget renders
type Interface string

const (
	InterfaceVote   Interface = "vote"
	InterfaceResult Interface = "result"
)

// Fallback texts used when results are hidden and no custom message is configured
const (
	MessageVotedHidden  = "Thank you for voting! Results are hidden for this poll."
	MessageEndedHidden  = "This poll has ended. Results are not publicly available."
	MessageAfterYouVote = "Results will be available after you vote."
)

// Resolve picks the interface for a display mode, lifecycle state and vote status.
// ShowResults is deliberately not an input: it gates data, not the screen.
func Resolve(mode DisplayMode, lifecycle Lifecycle, status VoteStatus) Interface {
	switch mode {
	case ModeResult:
		return InterfaceResult
	case ModeVote, ModeMixed:
		if status.HasVoted || lifecycle == Ended {
			return InterfaceResult
		}
		return InterfaceVote
	default:
		// Unknown modes behave like the default (mixed).
		if status.HasVoted || lifecycle == Ended {
			return InterfaceResult
		}
		return InterfaceVote
	}
}

// Reveal is the decision on whether tally data may be shown
type Reveal struct {
	ShowData bool   `json:"show_data"`
	Message  string `json:"message,omitempty"`
}

// RevealPolicy decides whether the chosen interface may show tallies and,
// when it may not, which fallback text the results screen shows.
// The voting screen never shows tallies and has no fallback text.
func RevealPolicy(iface Interface, cfg Config, lifecycle Lifecycle, status VoteStatus) Reveal {
	if iface != InterfaceResult {
		return Reveal{}
	}
	if cfg.ShowResults {
		return Reveal{ShowData: true}
	}
	return Reveal{Message: hiddenMessage(cfg.ResultsHiddenMessage, lifecycle, status)}
}

func hiddenMessage(custom string, lifecycle Lifecycle, status VoteStatus) string {
	switch {
	case custom != "":
		return custom
	case status.HasVoted:
		return MessageVotedHidden
	case lifecycle == Ended:
		return MessageEndedHidden
	default:
		return MessageAfterYouVote
	}
}
