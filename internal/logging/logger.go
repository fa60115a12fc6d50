// Package logging provides leveled logging and round tracing for snpsim.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A RoundLogger for structured JSONL round traces (rounds.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/snpsim/internal/snp"
)

// LevelTrace is a custom slog level below Debug for full per-round output.
const LevelTrace = slog.LevelDebug - 4

// RoundsFile is the name of the JSONL trace written by RoundLogger.
const RoundsFile = "rounds.jsonl"

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// RoundLogger writes simulation round events to a JSONL file and implements
// snp.Reporter. It is safe for concurrent use. A nil RoundLogger is safe to
// use; all methods are no-ops on nil receiver.
type RoundLogger struct {
	mu   sync.Mutex
	file *os.File
	run  string
}

// NewRoundLogger creates a round logger appending to dir/rounds.jsonl.
// At "info" level (the default), returns nil and no file is created.
// Returns nil if the file cannot be opened. All methods are nil-safe.
func NewRoundLogger(dir, level, run string) *RoundLogger {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, RoundsFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &RoundLogger{file: f, run: run}
}

// Log writes an event as a single JSONL line. "time" and "run" fields are
// added automatically; the caller's map is not mutated.
func (rl *RoundLogger) Log(event map[string]any) {
	if rl == nil {
		return
	}

	entry := make(map[string]any, len(event)+2)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	if rl.run != "" {
		entry["run"] = rl.run
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.file == nil {
		return
	}
	_, _ = rl.file.Write(data)
}

// RoundStarted records the neuron states at the start of a round.
func (rl *RoundLogger) RoundStarted(round int, states []snp.State) {
	rl.Log(map[string]any{"event": "round_started", "round": round, "neurons": states})
}

// RulesApplied records the rules selected in a round.
func (rl *RoundLogger) RulesApplied(round int, ruleIDs []string) {
	rl.Log(map[string]any{"event": "rules_applied", "round": round, "rules": ruleIDs})
}

// Halted records that a round selected no rules.
func (rl *RoundLogger) Halted(round int) {
	rl.Log(map[string]any{"event": "halted", "round": round})
}

// Close closes the underlying file. Safe to call on nil receiver.
func (rl *RoundLogger) Close() {
	if rl == nil {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.file != nil {
		rl.file.Close()
		rl.file = nil
	}
}
