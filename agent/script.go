package agent

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rustyeddy/tradeenv/env"
)

// Script replays a fixed list of decisions, then holds.
type Script struct {
	decisions []Decision
	next      int
}

func NewScript(decisions []Decision) *Script {
	return &Script{decisions: decisions}
}

func (s *Script) Decide(ctx context.Context, obs env.Observation) (Decision, error) {
	if s.next >= len(s.decisions) {
		return Decision{Action: env.Hold}, nil
	}
	d := s.decisions[s.next]
	s.next++
	return d, nil
}

func (s *Script) Reset() { s.next = 0 }

// ReadScript parses rows of "action,volume" where action is a -1/0/1
// signal. An optional header row starting with "action" is skipped.
func ReadScript(r io.Reader) ([]Decision, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []Decision
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "action") {
			continue
		}
		if len(row) != 2 {
			return nil, fmt.Errorf("line %d: want action,volume got %d fields", line, len(row))
		}

		sig, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad action %q: %w", line, row[0], err)
		}
		a, err := env.ActionFromSignal(sig)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		vol, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad volume %q: %w", line, row[1], err)
		}
		if math.IsNaN(vol) || math.IsInf(vol, 0) {
			return nil, fmt.Errorf("line %d: volume %q is not finite", line, row[1])
		}
		out = append(out, Decision{Action: a, Volume: vol})
	}
	return out, nil
}

// LoadScript reads a decision script from disk.
func LoadScript(path string) ([]Decision, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadScript(f)
}
