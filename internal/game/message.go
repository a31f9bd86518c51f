package game

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// MessageKind tells the dispatcher what a message is about.
type MessageKind string

const (
	KindNotice       MessageKind = "notice"
	KindWarmup       MessageKind = "warmup"
	KindBoard        MessageKind = "board"
	KindAcronym      MessageKind = "acronym"
	KindBallot       MessageKind = "ballot"
	KindRoundResults MessageKind = "round_results"
	KindVoteResults  MessageKind = "vote_results"
	KindFinal        MessageKind = "final"
)

// TableLimit caps the rows shown in a results table.
const TableLimit = 10

// Message is one piece of progress output for the channel.
type Message struct {
	Kind    MessageKind `json:"kind"`
	Header  string      `json:"header"`
	Body    string      `json:"body,omitempty"`
	Syntax  string      `json:"syntax,omitempty"`
	Markers []string    `json:"markers,omitempty"`
}

// Text renders the message as chat markdown: the header followed by the body
// in a fenced code block.
func (m Message) Text() string {
	if m.Body == "" {
		return m.Header
	}
	return fmt.Sprintf("%s\n```%s\n%s```", m.Header, m.Syntax, m.Body)
}

func notice(kind MessageKind, format string, args ...any) *Message {
	return &Message{Kind: kind, Header: fmt.Sprintf(format, args...)}
}

func renderTable(headers []string, rows [][]string) string {
	if len(rows) > TableLimit {
		rows = rows[:TableLimit]
	}
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(dashes, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
	return sb.String()
}

// minutes formats a duration as a plain number of minutes, e.g. "3" or "1.5".
func minutes(d time.Duration) string {
	return strconv.FormatFloat(d.Minutes(), 'f', -1, 64)
}
