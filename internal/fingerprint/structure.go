package fingerprint

import "strings"

// headingTruncateLen bounds heading text in the outline. Headings differing
// only past this point hash identically; downstream confidence scoring is
// calibrated to that granularity.
const headingTruncateLen = 50

type heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// outline is the canonical structural summary fed to the structural hash.
// Field order is fixed by the struct, so serialization is deterministic.
type outline struct {
	Headings []heading  `json:"headings"`
	Sections [][]string `json:"sections"`
	Lists    int        `json:"lists"`
	Tables   int        `json:"tables"`
}

func emptyOutline() outline {
	return outline{Headings: []heading{}, Sections: [][]string{}}
}

// extractOutline walks the text line by line collecting headings, list items
// and table markers, then groups headings into a nested section outline:
// headings of level <= 2 open a new top-level section, deeper headings nest
// under the current one.
func extractOutline(content string) outline {
	out := emptyOutline()

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "#") {
			level := len(line) - len(strings.TrimLeft(line, "#"))
			text := strings.TrimSpace(strings.TrimLeft(line, "#"))
			if runes := []rune(text); len(runes) > headingTruncateLen {
				text = string(runes[:headingTruncateLen])
			}
			out.Headings = append(out.Headings, heading{Level: level, Text: text})
			continue
		}

		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			out.Lists++
		} else if strings.Contains(line, "[TABLE]") {
			out.Tables++
		}
	}

	var current []string
	for _, h := range out.Headings {
		if h.Level <= 2 {
			if current != nil {
				out.Sections = append(out.Sections, current)
			}
			current = []string{h.Text}
		} else {
			current = append(current, h.Text)
		}
	}
	if current != nil {
		out.Sections = append(out.Sections, current)
	}

	return out
}
