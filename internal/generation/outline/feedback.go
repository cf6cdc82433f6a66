package outline

import "strings"

var exclusionVerbs = []string{"drop", "remove", "exclude", "skip"}

// exclusions lists the titles a reviewer asked to leave out. Feedback is read
// line by line; a line such as "drop: Configure subnets" or
// "remove Address classes; skip RFC 791" names one title per clause.
type exclusions []string

func parseExclusions(feedback string) exclusions {
	var titles exclusions
	for _, line := range strings.FieldsFunc(feedback, func(r rune) bool {
		return r == '\n' || r == ';'
	}) {
		clause := strings.TrimSpace(line)
		lower := strings.ToLower(clause)
		for _, verb := range exclusionVerbs {
			if !strings.HasPrefix(lower, verb) {
				continue
			}
			rest := clause[len(verb):]
			if rest != "" && rest[0] != ' ' && rest[0] != ':' {
				continue
			}
			title := strings.ToLower(strings.Trim(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ":")), `"'.`))
			if title != "" {
				titles = append(titles, title)
			}
			break
		}
	}
	return titles
}

func (e exclusions) excludes(title string) bool {
	if len(e) == 0 {
		return false
	}
	key := strings.ToLower(strings.TrimSpace(title))
	for _, excluded := range e {
		if key == excluded {
			return true
		}
	}
	return false
}
