package ats

import (
	"math"
	"strings"
)

const (
	relevanceWeight = 70.0
	coverageWeight  = 30.0
	coverageDivisor = 5.0

	// PreviewLimit bounds the matched/missing lists presented to callers.
	// Stored lists keep the full sets.
	PreviewLimit = 15
)

// Assessment is the result of comparing job keywords against a profile.
// It is immutable once computed and the score is always reproducible from
// the matched/missing partition and the weighting formula.
type Assessment struct {
	Score                int      `json:"atsScore"`
	Matched              []string `json:"matchedKeywords"`
	Missing              []string `json:"missingKeywords"`
	TotalJobKeywords     int      `json:"totalJobKeywords"`
	TotalProfileKeywords int      `json:"totalProfileKeywords"`
}

// Score partitions jobKeywords into matched/missing against profileKeywords
// (case-insensitively, preserving job-keyword order) and computes a 0-100 fit
// score: relevance is the matched share weighted at 70, coverage rewards
// profile terms that also appear in the job, capped at 30.
func Score(jobKeywords, profileKeywords []string) *Assessment {
	profileSet := make(map[string]struct{}, len(profileKeywords))
	for _, k := range profileKeywords {
		profileSet[strings.ToLower(k)] = struct{}{}
	}

	jobSet := make(map[string]struct{}, len(jobKeywords))
	for _, k := range jobKeywords {
		jobSet[strings.ToLower(k)] = struct{}{}
	}

	matched := make([]string, 0, len(jobKeywords))
	missing := make([]string, 0, len(jobKeywords))
	for _, k := range jobKeywords {
		if _, ok := profileSet[strings.ToLower(k)]; ok {
			matched = append(matched, k)
		} else {
			missing = append(missing, k)
		}
	}

	overlap := 0
	for _, k := range profileKeywords {
		if _, ok := jobSet[strings.ToLower(k)]; ok {
			overlap++
		}
	}

	relevance := float64(len(matched)) / math.Max(float64(len(jobKeywords)), 1) * relevanceWeight
	coverage := math.Min(float64(overlap)/coverageDivisor*coverageWeight, coverageWeight)

	score := int(math.Round(relevance + coverage))
	if score > 100 {
		score = 100
	}

	return &Assessment{
		Score:                score,
		Matched:              matched,
		Missing:              missing,
		TotalJobKeywords:     len(jobKeywords),
		TotalProfileKeywords: len(profileKeywords),
	}
}

// Preview returns at most limit entries of the provided list without
// modifying it.
func Preview(list []string, limit int) []string {
	if limit < 0 {
		limit = 0
	}
	if len(list) <= limit {
		return list
	}
	return list[:limit]
}
