package acro

import (
	"math/rand"
	"sort"
	"strconv"
)

// Markers are the reactions voters pick from. Ballots with more entries than
// markers continue with numeric ids ("27", "28", ...).
var Markers = []string{
	"🇦", "🇧", "🇨", "🇩", "🇪", "🇫", "🇬", "🇭", "🇮", "🇯", "🇰", "🇱", "🇲",
	"🇳", "🇴", "🇵", "🇶", "🇷", "🇸", "🇹", "🇺", "🇻", "🇼", "🇽", "🇾", "🇿",
}

const (
	SoleWinnerPoints = 5
	TiedWinnerPoints = 3
)

// Submission is one player's phrase for the round.
type Submission struct {
	Author string
	Phrase string
}

// Entry is a submission on the ballot together with its marker.
type Entry struct {
	Submission
	Marker string
}

// Ballot collects one vote per voter for the entries of a round.
type Ballot struct {
	entries  []Entry
	byMarker map[string]int
	votes    map[string]string
}

// markerPool returns at least n distinct markers.
func markerPool(n int) []string {
	pool := append([]string(nil), Markers...)
	for i := len(pool); i < n; i++ {
		pool = append(pool, strconv.Itoa(i+1))
	}
	return pool
}

// NewBallot assigns each submission a distinct random marker. Every
// submission gets onto the ballot.
func NewBallot(rng *rand.Rand, subs []Submission) *Ballot {
	pool := markerPool(len(subs))
	b := &Ballot{
		entries:  make([]Entry, len(subs)),
		byMarker: make(map[string]int, len(subs)),
		votes:    make(map[string]string),
	}
	perm := rng.Perm(len(pool))
	for i, sub := range subs {
		marker := pool[perm[i]]
		b.entries[i] = Entry{Submission: sub, Marker: marker}
		b.byMarker[marker] = i
	}
	return b
}

// Entries returns the ballot entries in submission order.
func (b *Ballot) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// Markers returns the markers in use, in submission order.
func (b *Ballot) Markers() []string {
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.Marker
	}
	return out
}

// Vote records voter's choice, replacing any earlier one. Unknown markers are
// ignored and leave the earlier choice in place.
func (b *Ballot) Vote(voter, marker string) bool {
	if _, ok := b.byMarker[marker]; !ok {
		return false
	}
	b.votes[voter] = marker
	return true
}

// Result is the outcome of a tallied ballot.
type Result struct {
	Counts  map[string]int
	Winners []Entry
	Points  int
}

// NoVotes reports whether nobody voted.
func (r Result) NoVotes() bool { return len(r.Winners) == 0 }

// Tally counts the ballot's votes and picks the winners.
func (b *Ballot) Tally() Result {
	counts, winners := TallyVotes(b.votes, b.Markers())
	res := Result{Counts: counts, Points: WinnerPoints(len(winners))}
	for _, m := range winners {
		res.Winners = append(res.Winners, b.entries[b.byMarker[m]])
	}
	return res
}

// TallyVotes groups votes by marker and returns the markers tied at the
// highest count, in pool order. Votes for markers outside pool are ignored
// and a marker without votes never wins.
func TallyVotes(votes map[string]string, pool []string) (map[string]int, []string) {
	valid := make(map[string]bool, len(pool))
	for _, m := range pool {
		valid[m] = true
	}

	counts := make(map[string]int)
	best := 0
	for _, m := range votes {
		if !valid[m] {
			continue
		}
		counts[m]++
		best = max(best, counts[m])
	}
	if best == 0 {
		return counts, nil
	}

	order := make(map[string]int, len(pool))
	for i, m := range pool {
		order[m] = i
	}
	var winners []string
	for m, n := range counts {
		if n == best {
			winners = append(winners, m)
		}
	}
	sort.Slice(winners, func(i, j int) bool { return order[winners[i]] < order[winners[j]] })
	return counts, winners
}

// WinnerPoints is what each winner earns given how many tied for the top.
func WinnerPoints(winners int) int {
	switch {
	case winners == 0:
		return 0
	case winners == 1:
		return SoleWinnerPoints
	default:
		return TiedWinnerPoints
	}
}
