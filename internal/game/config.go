package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// MaxConfigLength bounds the raw configuration text a user may send.
const MaxConfigLength = 256

// Bound is the accepted range of one integer setting.
type Bound struct {
	Min, Max, Default int
}

// Clamp forces n into [Min, Max].
func (b Bound) Clamp(n int) int {
	return min(b.Max, max(b.Min, n))
}

var (
	roundsBound = Bound{Min: 1, Max: 16, Default: 3}
	timerBound  = Bound{Min: 10, Max: 600, Default: 180}
	sizeBound   = Bound{Min: 3, Max: 9, Default: 5}

	acroTimerBound = Bound{Min: 10, Max: 600, Default: 90}
	voteTimerBound = Bound{Min: 10, Max: 600, Default: 45}
	acroMinBound   = Bound{Min: 3, Max: 9, Default: 3}
	acroMaxBound   = Bound{Min: 3, Max: 9, Default: 6}
)

// GridConfig configures a board word-search game.
type GridConfig struct {
	Rounds int `json:"rounds"`
	Timer  int `json:"timer"`
	Size   int `json:"size"`
}

// AcroConfig configures an acronym game.
type AcroConfig struct {
	Rounds    int `json:"rounds"`
	Timer     int `json:"timer"`
	VoteTimer int `json:"vote_timer"`
	Min       int `json:"min"`
	Max       int `json:"max"`
}

// ParseGridConfig reads a grid game configuration. Empty text yields the
// defaults.
func ParseGridConfig(raw string) (GridConfig, error) {
	v, err := parseConfig(raw, map[string]Bound{
		"rounds": roundsBound,
		"timer":  timerBound,
		"size":   sizeBound,
	})
	if err != nil {
		return GridConfig{}, err
	}
	return GridConfig{Rounds: v["rounds"], Timer: v["timer"], Size: v["size"]}, nil
}

// ParseAcroConfig reads an acronym game configuration. Empty text yields the
// defaults.
func ParseAcroConfig(raw string) (AcroConfig, error) {
	v, err := parseConfig(raw, map[string]Bound{
		"rounds":     roundsBound,
		"timer":      acroTimerBound,
		"vote_timer": voteTimerBound,
		"min":        acroMinBound,
		"max":        acroMaxBound,
	})
	if err != nil {
		return AcroConfig{}, err
	}
	return AcroConfig{
		Rounds:    v["rounds"],
		Timer:     v["timer"],
		VoteTimer: v["vote_timer"],
		Min:       v["min"],
		Max:       v["max"],
	}, nil
}

// parseConfig decodes a flat JSON object of integers, clamping every value
// into its bound and filling defaults for missing keys.
func parseConfig(raw string, bounds map[string]Bound) (map[string]int, error) {
	out := make(map[string]int, len(bounds))
	for k, b := range bounds {
		out[k] = b.Default
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, nil
	}
	if len(raw) > MaxConfigLength {
		return nil, configErrorf("Configuration is too long (max %d characters).", MaxConfigLength)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, configErrorf("Configuration must be a JSON object, for example %s.", example(bounds))
	}
	if dec.More() {
		return nil, configErrorf("Configuration must be a single JSON object.")
	}

	for key, value := range fields {
		b, ok := bounds[key]
		if !ok {
			return nil, configErrorf("Unknown setting %q, valid settings are %s.", key, validKeys(bounds))
		}
		num, ok := value.(json.Number)
		if !ok {
			return nil, configErrorf("Setting %q must be a whole number.", key)
		}
		n, err := num.Int64()
		if err != nil {
			if !errors.Is(err, strconv.ErrRange) {
				return nil, configErrorf("Setting %q must be a whole number.", key)
			}
			n = math.MaxInt32
			if strings.HasPrefix(num.String(), "-") {
				n = math.MinInt32
			}
		}
		out[key] = b.Clamp(int(max(min(n, math.MaxInt32), math.MinInt32)))
	}
	return out, nil
}

func validKeys(bounds map[string]Bound) string {
	keys := make([]string, 0, len(bounds))
	for k := range bounds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func example(bounds map[string]Bound) string {
	keys := make([]string, 0, len(bounds))
	for k := range bounds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		b := bounds[k]
		parts[i] = fmt.Sprintf("%q: [%d, %d]", k, b.Min, b.Max)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
