package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wordgames-server/internal/acro"
)

// AcroGameName is the catalog name of the acronym phrase game.
const AcroGameName = "acro"

const acroRules = `Acro is a word game involving acronyms.
Every round an acronym (eg. A L K I) is given and players will have to create a phrase out of the acronym.
Phrases can be sent in the channel or privately.

At the end of each round, anyone can vote for which phrase they liked the best by reacting to the emoji.
Only the last react will count. There is no multiple voting.

The phrase with the most votes gets 5 points, or if tied, 3 points. A phrase needs at least one vote to score!
The winner at the end of the game is the player with the most points.`

func init() {
	register(Kind{
		Name:  AcroGameName,
		Brief: `Start an acro game. Settings (json): {"rounds":[1,16], "timer":[10,600], "vote_timer":[10,600], "min":[3,9], "max":[3,9]}`,
		Rules: acroRules,
		Make: func(channel, raw string, deps Deps) (Instance, error) {
			cfg, err := ParseAcroConfig(raw)
			if err != nil {
				return nil, err
			}
			return NewAcroGame(channel, cfg, deps), nil
		},
	})
}

// AcronymSource picks the acronym for a round.
type AcronymSource func() acro.Acronym

// AcroOption customizes an AcroGame.
type AcroOption func(*AcroGame)

// WithAcronyms replaces random acronym generation, mostly for tests.
func WithAcronyms(src AcronymSource) AcroOption {
	return func(g *AcroGame) { g.acronyms = src }
}

// AcroGame is the acronym phrase game with reaction voting.
type AcroGame struct {
	base
	cfg      AcroConfig
	acronyms AcronymSource

	// Round state, guarded by base.mu.
	acronym acro.Acronym
	authors []string
	phrases map[string]string
	ballot  *acro.Ballot
}

// NewAcroGame builds an acronym game. cfg is used as given; ParseAcroConfig
// is responsible for bounds.
func NewAcroGame(channel string, cfg AcroConfig, deps Deps, opts ...AcroOption) *AcroGame {
	g := &AcroGame{cfg: cfg, phrases: make(map[string]string)}
	g.init(AcroGameName, channel, cfg.Rounds, deps)
	g.acronyms = func() acro.Acronym {
		return acro.Generate(g.deps.Rand, g.cfg.Min, g.cfg.Max)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *AcroGame) String() string {
	return fmt.Sprintf("%s: rounds(%d), timer(%d), vote_timer(%d), min(%d), max(%d)",
		g.channel, g.cfg.Rounds, g.cfg.Timer, g.cfg.VoteTimer, g.cfg.Min, g.cfg.Max)
}

// Play stores text as player's phrase when it expands the current acronym.
// A later valid phrase replaces an earlier one; invalid text is dropped.
func (g *AcroGame) Play(player, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseRoundPlay || !g.acronym.Valid(text) {
		return
	}
	if _, ok := g.phrases[player]; !ok {
		g.authors = append(g.authors, player)
	}
	g.phrases[player] = strings.Join(strings.Fields(text), " ")
}

// Vote records voter's choice while voting is open.
func (g *AcroGame) Vote(voter, marker string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseVotingOpen || g.ballot == nil {
		return
	}
	g.ballot.Vote(voter, marker)
}

// Next performs one phase transition.
func (g *AcroGame) Next(ctx context.Context) (step Step, more bool, err error) {
	defer func() {
		if err != nil {
			g.abort(err)
		}
	}()

	switch g.Phase() {
	case PhaseIdle:
		step, err = g.warmup()
	case PhaseWarmup:
		step, err = g.startRound()
	case PhaseRoundPlay:
		step, err = g.openVoting()
	case PhaseVotingOpen:
		step, err = g.tally()
	case PhaseVotingTally:
		step, err = g.afterRound(ctx)
	case PhaseGameFinalize, PhaseTerminated:
		return g.terminate()
	default:
		err = fmt.Errorf("INVALID_PHASE: acro game cannot be in %s", g.Phase())
	}
	if err != nil {
		return Step{}, false, err
	}
	return step, true, nil
}

func (g *AcroGame) startRound() (Step, error) {
	acronym := g.acronyms()

	g.mu.Lock()
	if err := g.enterLocked(PhaseRoundPlay); err != nil {
		g.mu.Unlock()
		return Step{}, err
	}
	g.acronym = acronym
	g.authors = nil
	g.phrases = make(map[string]string)
	g.mu.Unlock()

	g.acquire(FlagPlay, FlagDirect)

	timer := time.Duration(g.cfg.Timer) * time.Second
	return Step{
		Message: &Message{
			Kind:   KindAcronym,
			Header: fmt.Sprintf("Acro! You have %s minutes to make a phrase. Send it here or in a direct message.", minutes(timer)),
			Body:   acronym.String(),
			Syntax: "css",
		},
		Wait: timer,
	}, nil
}

// Submissions returns the valid phrases of the current round in order.
func (g *AcroGame) Submissions() []acro.Submission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submissionsLocked()
}

func (g *AcroGame) submissionsLocked() []acro.Submission {
	subs := make([]acro.Submission, len(g.authors))
	for i, a := range g.authors {
		subs[i] = acro.Submission{Author: a, Phrase: g.phrases[a]}
	}
	return subs
}

func (g *AcroGame) openVoting() (Step, error) {
	g.release()

	g.mu.Lock()
	subs := g.submissionsLocked()
	if len(subs) == 0 {
		if err := g.enterLocked(PhaseVotingTally); err != nil {
			g.mu.Unlock()
			return Step{}, err
		}
		g.acronym = ""
		g.mu.Unlock()
		return Step{
			Message: notice(KindNotice, "Round over. Nobody sent a phrase this round. 😥"),
			Wait:    g.deps.Warmup,
		}, nil
	}

	if err := g.enterLocked(PhaseVotingOpen); err != nil {
		g.mu.Unlock()
		return Step{}, err
	}
	g.ballot = acro.NewBallot(g.deps.Rand, subs)
	g.acronym = ""
	entries := g.ballot.Entries()
	markers := g.ballot.Markers()
	g.mu.Unlock()

	g.acquire(FlagVoting)

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s %s", e.Marker, e.Phrase)
	}
	voteTimer := time.Duration(g.cfg.VoteTimer) * time.Second
	return Step{
		Message: &Message{
			Kind:    KindBallot,
			Header:  fmt.Sprintf("Time to vote! React with the marker of your favorite phrase. You have %s minutes.", minutes(voteTimer)),
			Body:    strings.Join(lines, "\n"),
			Markers: markers,
		},
		Wait: voteTimer,
	}, nil
}

func (g *AcroGame) tally() (Step, error) {
	g.release()

	g.mu.Lock()
	if err := g.enterLocked(PhaseVotingTally); err != nil {
		g.mu.Unlock()
		return Step{}, err
	}
	ballot := g.ballot
	g.ballot = nil
	res := ballot.Tally()
	for _, w := range res.Winners {
		g.scores.Add(w.Author, res.Points)
	}
	g.mu.Unlock()

	if res.NoVotes() {
		return Step{
			Message: notice(KindVoteResults, "Voting over. Nobody voted, so nobody scores. 😥"),
			Wait:    g.deps.Warmup,
		}, nil
	}

	winners := make(map[string]bool, len(res.Winners))
	names := make([]string, len(res.Winners))
	for i, w := range res.Winners {
		winners[w.Marker] = true
		names[i] = g.name(w.Author)
	}
	rows := make([][]string, 0, len(ballot.Entries()))
	for _, e := range ballot.Entries() {
		points := 0
		if winners[e.Marker] {
			points = res.Points
		}
		rows = append(rows, []string{g.name(e.Author), e.Phrase, fmt.Sprint(res.Counts[e.Marker]), fmt.Sprint(points)})
	}
	return Step{
		Message: &Message{
			Kind:   KindVoteResults,
			Header: fmt.Sprintf("Voting over. Round winner(s): %s (+%d).", strings.Join(names, ", "), res.Points),
			Body:   renderTable([]string{"[Users", "Phrase", "Votes", "Points]"}, rows),
			Syntax: "ini",
		},
		Wait: g.deps.Warmup,
	}, nil
}
