package matching

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

type LogMode int

const (
	LogModeQuiet LogMode = iota
	LogModeSummary
	LogModeVerbose
)

// ParseLogMode maps the MATCH_LOG env value to a mode, defaulting to quiet.
func ParseLogMode(input string) LogMode {
	switch strings.ToLower(input) {
	case "summary":
		return LogModeSummary
	case "verbose":
		return LogModeVerbose
	default:
		return LogModeQuiet
	}
}

// Logger records accepted matches to stdout and appends them to a JSON log
// file for offline review of the scoring model's decisions.
type Logger struct {
	mode LogMode
	path string
}

func NewLogger(mode LogMode) *Logger {
	return &Logger{mode: mode, path: "matches.log"}
}

func (l *Logger) Enabled() bool {
	return l != nil && l.mode != LogModeQuiet
}

// LogMatch reports one accepted pairing.
func (l *Logger) LogMatch(res *Result, threshold float64) {
	if !l.Enabled() || res == nil {
		return
	}
	switch l.mode {
	case LogModeSummary:
		fmt.Printf("[matcher] matched %s %q -> %s %q sim=%.4f (q=%.3f c=%.3f d=%.3f) threshold=%.4f\n",
			res.Source.Platform, truncate(res.Source.Question, 60),
			res.Target.Platform, truncate(res.Target.Question, 60),
			res.Similarity, res.Scores.Question, res.Scores.Category, res.Scores.CloseDate, threshold)
	case LogModeVerbose:
		srcJSON, _ := json.MarshalIndent(res.Source, "", "  ")
		dstJSON, _ := json.MarshalIndent(res.Target, "", "  ")
		fmt.Printf("[matcher] match sim=%.4f threshold=%.4f\nsource=%s\ntarget=%s\n",
			res.Similarity, threshold, string(srcJSON), string(dstJSON))
	}
	l.appendToFile(res, threshold)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (l *Logger) appendToFile(res *Result, threshold float64) {
	entry := map[string]any{
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		"similarity": res.Similarity,
		"scores":     res.Scores,
		"threshold":  threshold,
		"source":     res.Source,
		"target":     res.Target,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		fmt.Printf("[matcher] log file marshal error: %v\n", err)
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Printf("[matcher] log file open error: %v\n", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		fmt.Printf("[matcher] log file write error: %v\n", err)
	}
}
