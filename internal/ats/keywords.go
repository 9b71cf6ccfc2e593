package ats

import (
	"regexp"
	"strings"
)

// skillPatterns is the curated vocabulary an applicant tracking system is
// likely to key on: roles, skills, certifications and seniority markers.
// Each pattern contributes at most one keyword per input text.
var skillPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)project management`),
	regexp.MustCompile(`(?i)program management`),
	regexp.MustCompile(`(?i)pmo`),
	regexp.MustCompile(`(?i)agile`),
	regexp.MustCompile(`(?i)scrum`),
	regexp.MustCompile(`(?i)kanban`),
	regexp.MustCompile(`(?i)leadership`),
	regexp.MustCompile(`(?i)strategy`),
	regexp.MustCompile(`(?i)strategic`),
	regexp.MustCompile(`(?i)vision`),
	regexp.MustCompile(`(?i)digital transformation`),
	regexp.MustCompile(`(?i)digital`),
	regexp.MustCompile(`(?i)automation`),
	regexp.MustCompile(`(?i)\bai\b`),
	regexp.MustCompile(`(?i)artificial intelligence`),
	regexp.MustCompile(`(?i)machine learning`),
	regexp.MustCompile(`(?i)\bml\b`),
	regexp.MustCompile(`(?i)stakeholder management`),
	regexp.MustCompile(`(?i)stakeholders`),
	regexp.MustCompile(`(?i)executive`),
	regexp.MustCompile(`(?i)senior management`),
	regexp.MustCompile(`(?i)budget`),
	regexp.MustCompile(`(?i)financial`),
	regexp.MustCompile(`(?i)revenue`),
	regexp.MustCompile(`(?i)cost`),
	regexp.MustCompile(`(?i)team leadership`),
	regexp.MustCompile(`(?i)team management`),
	regexp.MustCompile(`(?i)people management`),
	regexp.MustCompile(`(?i)cross-functional`),
	regexp.MustCompile(`(?i)cross functional`),
	regexp.MustCompile(`(?i)matrix`),
	regexp.MustCompile(`(?i)cloud`),
	regexp.MustCompile(`(?i)aws`),
	regexp.MustCompile(`(?i)azure`),
	regexp.MustCompile(`(?i)gcp`),
	regexp.MustCompile(`(?i)erp`),
	regexp.MustCompile(`(?i)crm`),
	regexp.MustCompile(`(?i)sap`),
	regexp.MustCompile(`(?i)oracle`),
	regexp.MustCompile(`(?i)healthcare`),
	regexp.MustCompile(`(?i)hospital`),
	regexp.MustCompile(`(?i)medical`),
	regexp.MustCompile(`(?i)saudi`),
	regexp.MustCompile(`(?i)gcc`),
	regexp.MustCompile(`(?i)middle east`),
	regexp.MustCompile(`(?i)mea`),
	regexp.MustCompile(`(?i)operations`),
	regexp.MustCompile(`(?i)\bops\b`),
	regexp.MustCompile(`(?i)process improvement`),
	regexp.MustCompile(`(?i)process optimization`),
	regexp.MustCompile(`(?i)lean`),
	regexp.MustCompile(`(?i)six sigma`),
	regexp.MustCompile(`(?i)risk management`),
	regexp.MustCompile(`(?i)compliance`),
	regexp.MustCompile(`(?i)governance`),
	regexp.MustCompile(`(?i)data analytics`),
	regexp.MustCompile(`(?i)\bbi\b`),
	regexp.MustCompile(`(?i)dashboard`),
	regexp.MustCompile(`(?i)reporting`),
	regexp.MustCompile(`(?i)kpi`),
	regexp.MustCompile(`(?i)performance`),
	regexp.MustCompile(`(?i)change management`),
	regexp.MustCompile(`(?i)transformation`),
	regexp.MustCompile(`(?i)turnaround`),
	regexp.MustCompile(`(?i)vendor management`),
	regexp.MustCompile(`(?i)procurement`),
	regexp.MustCompile(`(?i)outsourcing`),
	regexp.MustCompile(`(?i)retail`),
	regexp.MustCompile(`(?i)customer experience`),
	regexp.MustCompile(`(?i)\bcx\b`),
	regexp.MustCompile(`(?i)patient experience`),
	regexp.MustCompile(`(?i)technology`),
	regexp.MustCompile(`(?i)\btech\b`),
	regexp.MustCompile(`(?i)\bit\b`),
	regexp.MustCompile(`(?i)software`),
	regexp.MustCompile(`(?i)hardware`),
	regexp.MustCompile(`(?i)engineering`),
	regexp.MustCompile(`(?i)technical`),
	regexp.MustCompile(`(?i)mba`),
	regexp.MustCompile(`(?i)bachelor`),
	regexp.MustCompile(`(?i)master`),
	regexp.MustCompile(`(?i)phd`),
	regexp.MustCompile(`(?i)degree`),
	regexp.MustCompile(`(?i)pmp`),
	regexp.MustCompile(`(?i)prince2`),
	regexp.MustCompile(`(?i)csm`),
	regexp.MustCompile(`(?i)six sigma black belt`),
	regexp.MustCompile(`(?i)certification`),
	regexp.MustCompile(`(?i)15\+ years`),
	regexp.MustCompile(`(?i)10\+ years`),
	regexp.MustCompile(`(?i)8\+ years`),
	regexp.MustCompile(`(?i)5\+ years`),
	regexp.MustCompile(`(?i)english`),
	regexp.MustCompile(`(?i)arabic`),
	regexp.MustCompile(`(?i)fluent`),
	regexp.MustCompile(`(?i)native`),
}

// accomplishmentVerbs marks lines worth harvesting free-form keywords from.
var accomplishmentVerbs = []string{
	"led", "managed", "directed", "oversaw", "championed", "spearheaded",
	"delivered", "achieved", "improved", "increased", "reduced",
	"implemented", "established", "developed", "created", "built",
	"launched", "transformed", "optimized", "streamlined", "orchestrated",
	"coordinated",
}

var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "have": {}, "been": {}, "were": {}, "they": {}, "their": {},
}

var headerLine = regexp.MustCompile(`^#{1,6}\s`)

var nonAlpha = regexp.MustCompile(`[^a-zA-Z]`)

// Extract converts free text into a de-duplicated set of lower-cased
// domain-relevant terms. Two techniques are applied and unioned: the curated
// pattern dictionary above and a harvest of tokens from lines that contain an
// accomplishment verb. The result is deterministic for a given input; entries
// are unique, lower-case and longer than two characters.
func Extract(text string) []string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0, 32)

	add := func(k string) {
		k = strings.ToLower(strings.TrimSpace(k))
		if len(k) <= 2 {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keywords = append(keywords, k)
	}

	for _, pattern := range skillPatterns {
		if match := pattern.FindString(text); match != "" {
			add(match)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if headerLine.MatchString(line) {
			continue
		}

		lower := strings.ToLower(line)
		if !containsVerb(lower) {
			continue
		}

		for _, word := range strings.Fields(line) {
			if len(word) <= 3 {
				continue
			}
			if _, stop := stopwords[strings.ToLower(word)]; stop {
				continue
			}
			add(nonAlpha.ReplaceAllString(word, ""))
		}
	}

	return keywords
}

func containsVerb(lowerLine string) bool {
	for _, verb := range accomplishmentVerbs {
		if strings.Contains(lowerLine, verb+" ") {
			return true
		}
	}
	return false
}
