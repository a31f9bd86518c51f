package game

// Submissions holds the distinct words each player sent during one play
// phase, in the order they were first sent.
type Submissions struct {
	players []string
	words   map[string][]string
	seen    map[string]map[string]struct{}
}

func NewSubmissions() *Submissions {
	return &Submissions{
		words: make(map[string][]string),
		seen:  make(map[string]map[string]struct{}),
	}
}

// Add records words for player, skipping ones already sent.
func (s *Submissions) Add(player string, words ...string) {
	seen, ok := s.seen[player]
	if !ok {
		seen = make(map[string]struct{})
		s.seen[player] = seen
		s.players = append(s.players, player)
	}
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		s.words[player] = append(s.words[player], w)
	}
}

// Players returns players in order of their first submission.
func (s *Submissions) Players() []string { return s.players }

// Words returns player's distinct words in submission order.
func (s *Submissions) Words(player string) []string { return s.words[player] }
