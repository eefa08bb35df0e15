package classify

import (
	"strings"
)

// Section markers of the structured analysis contract.
const (
	sectionSummary       = "SUMMARY"
	sectionInsights      = "INSIGHTS"
	sectionActionType    = "ACTION_TYPE"
	sectionActionData    = "ACTION_DATA"
	sectionThreadContext = "THREAD_CONTEXT"
	sectionSearch        = "SEARCH_REQUIRED"
)

// Parse extracts a Classification from structured analysis text. Missing or
// malformed sections fall back to defaults; Parse never fails, so one odd
// completion cannot stop a batch.
func Parse(raw string) Classification {
	sections := splitSections(raw)

	c := Classification{
		Summary:       strings.TrimSpace(sections[sectionSummary]),
		Insights:      parseInsights(sections[sectionInsights]),
		ThreadContext: strings.TrimSpace(sections[sectionThreadContext]),
		SearchQuery:   parseSearchQuery(sections[sectionSearch]),
		Action: Action{
			Type:    parseActionType(sections[sectionActionType]),
			Payload: parseActionData(sections[sectionActionData]),
		},
	}
	if c.Action.Type == ActionNone {
		c.Action.Payload = nil
	}
	return c
}

// splitSections cuts the text at lines starting with "###" and maps section
// names to their body text.
func splitSections(raw string) map[string]string {
	sections := make(map[string]string)
	current := ""
	var body strings.Builder
	flush := func() {
		if current != "" {
			sections[current] = body.String()
		}
		body.Reset()
	}
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "###") {
			flush()
			current = strings.ToUpper(strings.TrimSpace(strings.TrimLeft(trimmed, "# ")))
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()
	return sections
}

func parseActionType(text string) ActionType {
	candidate := ActionType(strings.ToUpper(strings.TrimSpace(text)))
	if candidate.Valid() {
		return candidate
	}
	// Models occasionally wrap the type in prose; accept the first known
	// token found anywhere in the section.
	for _, known := range []ActionType{
		ActionScheduleMeeting, ActionSendReply, ActionSetReminder,
		ActionForwardToSlack, ActionNone,
	} {
		if strings.Contains(string(candidate), string(known)) {
			return known
		}
	}
	return ActionNone
}

func parseActionData(text string) map[string]string {
	payload := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line == "" || strings.EqualFold(line, "none") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" || strings.EqualFold(value, "none") {
			continue
		}
		payload[key] = value
	}
	if len(payload) == 0 {
		return nil
	}
	return payload
}

func parseInsights(text string) []string {
	var insights []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line == "" || strings.EqualFold(line, "none") {
			continue
		}
		insights = append(insights, line)
	}
	return insights
}

func parseSearchQuery(text string) string {
	query := strings.TrimSpace(text)
	if strings.EqualFold(query, "none") {
		return ""
	}
	return query
}
