package outline

import "strings"

// Learning process kinds, ordered from lower to higher cognitive demand.
const (
	ProcessRecall        = "recall"
	ProcessComprehension = "comprehension"
	ProcessApplication   = "application"
	ProcessAnalysis      = "analysis"
	ProcessEvaluation    = "evaluation"
	ProcessSynthesis     = "synthesis"
)

var verbProcesses = map[string]string{
	"define":        ProcessRecall,
	"identify":      ProcessRecall,
	"list":          ProcessRecall,
	"name":          ProcessRecall,
	"recall":        ProcessRecall,
	"state":         ProcessRecall,
	"classify":      ProcessComprehension,
	"describe":      ProcessComprehension,
	"discuss":       ProcessComprehension,
	"explain":       ProcessComprehension,
	"summarize":     ProcessComprehension,
	"understand":    ProcessComprehension,
	"apply":         ProcessApplication,
	"calculate":     ProcessApplication,
	"configure":     ProcessApplication,
	"demonstrate":   ProcessApplication,
	"implement":     ProcessApplication,
	"solve":         ProcessApplication,
	"use":           ProcessApplication,
	"analyse":       ProcessAnalysis,
	"analyze":       ProcessAnalysis,
	"compare":       ProcessAnalysis,
	"differentiate": ProcessAnalysis,
	"examine":       ProcessAnalysis,
	"troubleshoot":  ProcessAnalysis,
	"assess":        ProcessEvaluation,
	"critique":      ProcessEvaluation,
	"evaluate":      ProcessEvaluation,
	"justify":       ProcessEvaluation,
	"build":         ProcessSynthesis,
	"create":        ProcessSynthesis,
	"design":        ProcessSynthesis,
	"develop":       ProcessSynthesis,
	"plan":          ProcessSynthesis,
}

var processMethods = map[string]string{
	ProcessRecall:        "lecture",
	ProcessComprehension: "discussion",
	ProcessApplication:   "lab",
	ProcessAnalysis:      "case_study",
	ProcessEvaluation:    "peer_review",
	ProcessSynthesis:     "project",
}

const defaultVerb = "understand"

// leadingVerb returns the action verb an objective title starts with.
func leadingVerb(title string) string {
	fields := strings.Fields(strings.ToLower(title))
	if len(fields) == 0 {
		return defaultVerb
	}
	verb := strings.Trim(fields[0], ".,:;")
	if _, ok := verbProcesses[verb]; ok {
		return verb
	}
	return defaultVerb
}

// processFor maps an objective verb to a learning process kind.
func processFor(verb string) string {
	if kind, ok := verbProcesses[strings.ToLower(strings.TrimSpace(verb))]; ok {
		return kind
	}
	return ProcessComprehension
}

func methodFor(kind string) string {
	if method, ok := processMethods[kind]; ok {
		return method
	}
	return processMethods[ProcessComprehension]
}
