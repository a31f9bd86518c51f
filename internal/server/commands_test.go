package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want Command
		ok   bool
	}{
		{"!boggle", Command{Name: "boggle"}, true},
		{`  !Boggle {"size": 4}  `, Command{Name: "boggle", Args: `{"size": 4}`}, true},
		{"!help   acro", Command{Name: "help", Args: "acro"}, true},
		{"!", Command{}, false},
		{"! boggle", Command{}, false},
		{"boggle", Command{}, false},
		{"", Command{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseCommand(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHelpText(t *testing.T) {
	list := helpText("")
	assert.Contains(t, list, "!acro [settings]")
	assert.Contains(t, list, "!boggle [settings]")
	assert.Contains(t, list, "!stats <game>")

	rules := helpText("!ACRO")
	assert.Contains(t, rules, "How to play acro:")
	assert.Contains(t, rules, "```\nAcro is a word game involving acronyms.")

	assert.Equal(t, `There is no game called "poker".`, helpText("poker"))
}
