package profile

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ops-desk/mission-control/internal/ats"

	"go.uber.org/zap"
)

// Experience is one position harvested from the master profile document.
type Experience struct {
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Year     string   `json:"year"`
	Keywords []string `json:"keywords"`
}

// Index is the reusable keyword/skill/experience view of the master profile.
type Index struct {
	Keywords   []string     `json:"keywords"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
}

// Loader reads the master profile document from disk. The index is rebuilt on
// every read so it always reflects the stored document.
type Loader struct {
	path   string
	logger *zap.Logger
}

func NewLoader(path string, logger *zap.Logger) *Loader {
	return &Loader{path: path, logger: logger}
}

// Read returns the raw master profile text.
func (l *Loader) Read() (string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "", fmt.Errorf("reading master profile %q: %w", l.path, err)
	}
	return string(data), nil
}

// Index reads the master profile and builds its keyword index. A missing or
// unreadable document degrades to an empty index rather than failing the
// pipeline.
func (l *Loader) Index() *Index {
	content, err := l.Read()
	if err != nil {
		l.logger.Warn("master profile unavailable, using empty index", zap.Error(err))
		return &Index{}
	}
	return BuildIndex(content)
}

var (
	skillsSection     = regexp.MustCompile(`(?s)## Skills\s*\n(.*?)(?:\n## |$)`)
	experienceHeading = regexp.MustCompile(`^(.+?)\s*[-–]\s*(.+?)\s*(\d{4})`)
)

// BuildIndex runs the extraction engine over the profile document and its
// Skills/Experience sections.
func BuildIndex(content string) *Index {
	index := &Index{
		Keywords: ats.Extract(content),
		Skills:   []string{},
	}

	if match := skillsSection.FindStringSubmatch(content); match != nil {
		index.Skills = ats.Extract(match[1])
	}

	index.Experience = parseExperience(content)

	return index
}

// parseExperience walks the Experience section line by line. An entry starts
// at any "Title - Company YYYY" heading (with or without markdown hashes) and
// collects body lines until the next entry or section.
func parseExperience(content string) []Experience {
	var (
		entries []Experience
		current *Experience
		body    []string
		inside  bool
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Keywords = ats.Extract(strings.Join(body, "\n"))
		entries = append(entries, *current)
		current = nil
		body = nil
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "## ") {
			heading := strings.TrimPrefix(trimmed, "## ")
			if heading == "Experience" {
				inside = true
				continue
			}
			if !inside {
				continue
			}
			if m := experienceHeading.FindStringSubmatch(heading); m != nil {
				flush()
				current = &Experience{
					Title:   strings.TrimSpace(m[1]),
					Company: strings.TrimSpace(m[2]),
					Year:    m[3],
				}
				continue
			}
			// Any other section heading ends the experience block.
			flush()
			inside = false
			continue
		}

		if !inside {
			continue
		}

		if current == nil {
			if m := experienceHeading.FindStringSubmatch(trimmed); m != nil {
				current = &Experience{
					Title:   strings.TrimSpace(m[1]),
					Company: strings.TrimSpace(m[2]),
					Year:    m[3],
				}
			}
			continue
		}

		body = append(body, line)
	}

	flush()
	return entries
}
