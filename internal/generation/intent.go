package generation

import (
	"strconv"
	"strings"
)

// IntentKind tags the variant of a parsed generation command
type IntentKind string

const (
	IntentSingle            IntentKind = "single"
	IntentBatchDirectPrompt IntentKind = "batch_direct_prompt"
	IntentBatchStyled       IntentKind = "batch_styled"
	IntentBatchDefaultStyle IntentKind = "batch_default_style"
	IntentInvalid           IntentKind = "invalid"
)

// Batch size bounds applied to a leading count token
const (
	minBatchCount = 1
	maxBatchCount = 50
)

const stylesPrefix = "styles="

// Intent is the parsed form of one raw generation command. It is transient;
// nothing persists it.
type Intent struct {
	Kind   IntentKind
	Prompt string   // full prompt including trigger word (single/direct variants)
	Count  int      // per-prompt or per-style generation count
	Styles []string // requested style names, lowercased and trimmed
	Reason string   // rejection reason for IntentInvalid
}

func invalid(reason string) Intent {
	return Intent{Kind: IntentInvalid, Reason: reason}
}

// ParseCommand turns raw command text into a generation intent.
//
// Grammar:
//
//	""                      -> Invalid (missing input)
//	"N styles=a,b"          -> BatchStyled{count: N}
//	"N some prompt"         -> BatchDirectPrompt{count: N}
//	"N"                     -> BatchDefaultStyle{count: N}
//	"N text styles=a"       -> Invalid (mixed format)
//	"styles=a,b"            -> BatchStyled{count: 1}
//	"some prompt"           -> Single{count: configuredOutputs}
//
// A leading count is clamped to [1, 50]. Style validity is not checked here;
// unknown styles are dropped later at resolution time.
func ParseCommand(text, triggerWord string, configuredOutputs int) Intent {
	text = strings.TrimSpace(text)
	if text == "" {
		return invalid("missing input")
	}

	fields := strings.Fields(text)

	if count, err := strconv.Atoi(fields[0]); err == nil {
		count = clampCount(count)
		remainder := fields[1:]

		styleCSV, rest, hasStyles := extractStyles(remainder)
		switch {
		case hasStyles && len(rest) == 0:
			styleNames := parseStyleCSV(styleCSV)
			if len(styleNames) == 0 {
				return invalid("no styles provided")
			}
			return Intent{Kind: IntentBatchStyled, Count: count, Styles: styleNames}
		case hasStyles:
			return invalid("cannot mix prompt with styles=")
		case len(rest) > 0:
			return Intent{
				Kind:   IntentBatchDirectPrompt,
				Prompt: triggerWord + " " + strings.Join(rest, " "),
				Count:  count,
			}
		default:
			return Intent{Kind: IntentBatchDefaultStyle, Count: count}
		}
	}

	if styleCSV, rest, hasStyles := extractStyles(fields); hasStyles {
		if len(rest) > 0 {
			return invalid("cannot mix prompt with styles=")
		}
		styleNames := parseStyleCSV(styleCSV)
		if len(styleNames) == 0 {
			return invalid("no styles provided")
		}
		return Intent{Kind: IntentBatchStyled, Count: 1, Styles: styleNames}
	}

	if configuredOutputs < 1 {
		configuredOutputs = 1
	}
	return Intent{
		Kind:   IntentSingle,
		Prompt: triggerWord + " " + text,
		Count:  configuredOutputs,
	}
}

func clampCount(n int) int {
	if n < minBatchCount {
		return minBatchCount
	}
	if n > maxBatchCount {
		return maxBatchCount
	}
	return n
}

// extractStyles pulls the first styles=<csv> token out of the field list and
// returns the csv plus the remaining fields
func extractStyles(fields []string) (csv string, rest []string, found bool) {
	for i, field := range fields {
		if strings.HasPrefix(strings.ToLower(field), stylesPrefix) {
			rest = make([]string, 0, len(fields)-1)
			rest = append(rest, fields[:i]...)
			rest = append(rest, fields[i+1:]...)
			return field[len(stylesPrefix):], rest, true
		}
	}
	return "", fields, false
}

func parseStyleCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
