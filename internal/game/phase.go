package game

// Phase is a stage of a game instance's lifecycle.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseWarmup       Phase = "warmup"
	PhaseRoundPlay    Phase = "round_play"
	PhaseRoundScoring Phase = "round_scoring"
	PhaseVotingOpen   Phase = "voting_open"
	PhaseVotingTally  Phase = "voting_tally"
	PhaseGameFinalize Phase = "game_finalize"
	PhaseTerminated   Phase = "terminated"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:         {PhaseWarmup},
	PhaseWarmup:       {PhaseRoundPlay},
	PhaseRoundPlay:    {PhaseRoundScoring, PhaseVotingOpen, PhaseVotingTally},
	PhaseRoundScoring: {PhaseWarmup, PhaseGameFinalize},
	PhaseVotingOpen:   {PhaseVotingTally},
	PhaseVotingTally:  {PhaseWarmup, PhaseGameFinalize},
	PhaseGameFinalize: {PhaseTerminated},
}

func (p Phase) String() string { return string(p) }

// CanTransitionTo reports whether the lifecycle allows moving from p to
// target. Any live phase may be cut short to PhaseTerminated.
func (p Phase) CanTransitionTo(target Phase) bool {
	if target == PhaseTerminated {
		return p != PhaseTerminated
	}
	for _, next := range transitions[p] {
		if next == target {
			return true
		}
	}
	return false
}

// AcceptsInput reports whether submissions or votes are taken in p.
func (p Phase) AcceptsInput() bool {
	return p == PhaseRoundPlay || p == PhaseVotingOpen
}
