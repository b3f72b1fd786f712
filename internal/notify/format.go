package notify

import "strings"

const (
	headingStyle = `font-size: 16px; font-weight: 400; margin-bottom: 12px; margin-top: 20px; color: #000; line-height: 1.6;`
	bodyStyle    = `font-size: 16px; font-weight: 300; margin-bottom: 8px; color: #333; line-height: 1.6;`
)

// FormatDetails renders the free-text additional-details field into HTML
// fragments for the confirmation email. The input is a line-oriented
// micro-format, normalized to lowercase:
//
//   - **heading** lines become sub-headings
//   - lines starting with "-" become bullet items
//   - blank lines become fixed vertical spacing
//   - a line that is itself a bare URL turns the preceding plain line into a
//     hyperlink instead of rendering on its own; with no candidate line the
//     URL is dropped
//   - a colon within the first 50 characters marks a "label: value" line
//   - anything else is plain text and becomes the link candidate
//
// Fragment order follows input order.
func FormatDetails(text string) string {
	lines := strings.Split(strings.ToLower(text), "\n")
	var parts []string
	prev := ""

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "**") && strings.Contains(trimmed[2:], "**"):
			heading := strings.TrimSpace(strings.ReplaceAll(trimmed, "**", ""))
			parts = append(parts, `<p style="`+headingStyle+`">`+heading+`</p>`)
		case strings.HasPrefix(trimmed, "-"):
			bullet := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
			parts = append(parts, `<p style="`+bodyStyle+`">`+bullet+`</p>`)
		case trimmed == "":
			parts = append(parts, `<div style="height: 12px;"></div>`)
		case strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://"):
			if prev != "" && len(parts) > 0 {
				parts[len(parts)-1] = `<p style="` + bodyStyle + `"><a href="` + trimmed + `" style="color: #000; text-decoration: underline;">` + prev + `</a></p>`
				prev = ""
			}
		default:
			if i := strings.Index(line, ":"); i > 0 && i < 50 {
				label := line[:i+1]
				value := strings.TrimSpace(line[i+1:])
				parts = append(parts, `<p style="`+bodyStyle+`"><span style="font-weight: 400;">`+label+`</span> `+value+`</p>`)
			} else {
				prev = trimmed
				parts = append(parts, `<p style="`+bodyStyle+`">`+line+`</p>`)
			}
		}
	}

	return strings.Join(parts, "")
}
