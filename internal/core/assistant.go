package core

// assistant.go is a rule-based responder for product and dataset questions.
// Responses are matched on keywords against a fixed rule table; no network
// calls and no mutation.

import (
	"fmt"
	"strings"
)

// Product knowledge the assistant can answer with regardless of whether a
// dataset is loaded.
const (
	infoFeatures = "DataNova offers AI data summarization, automated charting (Visualizer), and high-fidelity Figma exports for designers."
	infoFigma    = "Our Figma feature converts your CSV into a JSON format that our Figma Plugin uses to build instant UI components."
	infoVisual   = "The Visualizer creates Bar, Line, Pie, and Scatter plots. It also features a Pinterest-style inspiration gallery."
	infoExport   = "You can export your analysis as professional reports in TXT, JSON, or PNG formats."
)

// AssistantGreeting is the opening message for a new conversation.
const AssistantGreeting = "I'm the DataNova AI. I can analyze your CSV or explain how our Figma export works. What's on your mind?"

// AnswerQuestion returns the assistant's response to a free-form question.
// artifact may be nil when the session has no dataset.
func AnswerQuestion(artifact *DatasetArtifact, question string) string {
	query := strings.ToLower(question)
	contains := func(s string) bool { return strings.Contains(query, s) }

	if contains("how") || contains("what") || contains("feature") {
		switch {
		case contains("figma"):
			return infoFigma
		case contains("visual"):
			return infoVisual
		default:
			return infoFeatures
		}
	}
	if contains("export") || contains("download") {
		return infoExport
	}

	if artifact == nil {
		return "Upload a CSV on the dashboard so I can give you specific insights about your data."
	}

	fileName := artifact.FileName
	if fileName == "" {
		fileName = "your dataset"
	}

	switch {
	case contains("column"):
		if len(artifact.Columns) > 0 {
			return fmt.Sprintf("Your dataset %q has these columns: %s.", fileName, strings.Join(artifact.Columns, ", "))
		}
		return fmt.Sprintf("Your dataset %q doesn't have column information available yet.", fileName)

	case contains("summary") || contains("insight"):
		if artifact.Summary != "" {
			return fmt.Sprintf("Analysis for %s: %s...", fileName, truncate(artifact.Summary, 150))
		}
		return fmt.Sprintf("Your dataset %q is loaded, but summary is still being generated.", fileName)

	default:
		return fmt.Sprintf("I can help analyze %s. Ask about columns or summaries.", fileName)
	}
}

// truncate shortens s to at most n runes. Cutting on runes rather than
// bytes keeps multi-byte characters intact.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
