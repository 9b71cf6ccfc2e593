package jobposting

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	fetchTimeout = 10 * time.Second
	userAgent    = "mission-control/1.0"

	// Descriptions shorter than this are treated as extraction misses and
	// replaced with the stripped page body.
	minDescriptionLength = 100
)

// Level buckets a posting by seniority, derived from its title.
type Level string

const (
	LevelJunior    Level = "Junior"
	LevelMid       Level = "Mid"
	LevelSenior    Level = "Senior"
	LevelExecutive Level = "Executive"
)

// Posting is a job posting reduced to plain text. Immutable once loaded.
type Posting struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	URL     string `json:"url,omitempty"`
	RawText string `json:"-"`
	Level   Level  `json:"level"`
}

// Loader turns a posting URL or pasted text into a Posting. Network failures
// degrade to whatever text was obtained; the loader never fails a pipeline
// run on its own.
type Loader struct {
	HTTPClient *http.Client
	logger     *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
		},
		logger: logger,
	}
}

var (
	titleTag    = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	titleSuffix = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s*[-|]\s*LinkedIn.*$`),
		regexp.MustCompile(`(?i)\s*[-|]\s*careers.*$`),
	}
	siteNameMeta = regexp.MustCompile(`(?i)<meta[^>]*property=["']og:site_name["'][^>]*content=["']([^"']+)["']`)
	companyMeta  = regexp.MustCompile(`(?i)<meta[^>]*name=["']company["'][^>]*content=["']([^"']+)["']`)

	// Ordered container heuristics for the description body.
	descriptionContainers = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<div[^>]*class="[^"]*description[^"]*"[^>]*>(.*?)</div>`),
		regexp.MustCompile(`(?is)<section[^>]*id="[^"]*job[^"]*description[^"]*"[^>]*>(.*?)</section>`),
		regexp.MustCompile(`(?is)<div[^>]*data-test-id="[^"]*job[^"]*description[^"]*"[^>]*>(.*?)</div>`),
	}

	bodyTag    = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)
	scriptTag  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	anyTag     = regexp.MustCompile(`<[^>]+>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Load builds a Posting from a URL or raw text. When both are given the URL
// is fetched and rawText is used only if the fetch produced nothing.
func (l *Loader) Load(ctx context.Context, url, rawText string) *Posting {
	posting := &Posting{
		Title:   "Unknown Position",
		Company: "Unknown Company",
		URL:     url,
		RawText: strings.TrimSpace(rawText),
	}

	if url != "" {
		l.fill(ctx, posting)
	}

	posting.Level = DeriveLevel(posting.Title)
	return posting
}

func (l *Loader) fill(ctx context.Context, posting *Posting) {
	html, err := l.fetch(ctx, posting.URL)
	if err != nil {
		l.logger.Warn("fetching job posting failed, proceeding with available text",
			zap.String("url", posting.URL),
			zap.Error(err),
		)
		return
	}

	if match := titleTag.FindStringSubmatch(html); match != nil {
		title := strings.TrimSpace(match[1])
		for _, suffix := range titleSuffix {
			title = suffix.ReplaceAllString(title, "")
		}
		if title != "" {
			posting.Title = title
		}
	}

	if match := siteNameMeta.FindStringSubmatch(html); match != nil {
		posting.Company = strings.TrimSpace(match[1])
	} else if match := companyMeta.FindStringSubmatch(html); match != nil {
		posting.Company = strings.TrimSpace(match[1])
	}

	for _, container := range descriptionContainers {
		if match := container.FindStringSubmatch(html); match != nil {
			posting.RawText = stripTags(match[1])
			break
		}
	}

	// No container matched or it held boilerplate. Fall back to full body
	// text with script/style removed.
	if len(posting.RawText) < minDescriptionLength {
		if match := bodyTag.FindStringSubmatch(html); match != nil {
			body := scriptTag.ReplaceAllString(match[1], " ")
			body = styleTag.ReplaceAllString(body, " ")
			if text := stripTags(body); text != "" {
				posting.RawText = text
			}
		}
	}
}

func (l *Loader) fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func stripTags(html string) string {
	text := anyTag.ReplaceAllString(html, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// DeriveLevel buckets a job title into a seniority level.
func DeriveLevel(title string) Level {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "vp"),
		strings.Contains(lower, "vice president"),
		strings.Contains(lower, "director"),
		strings.Contains(lower, "head of"):
		return LevelExecutive
	case strings.Contains(lower, "senior"), strings.Contains(lower, "sr."):
		return LevelSenior
	case strings.Contains(lower, "junior"), strings.Contains(lower, "jr."):
		return LevelJunior
	default:
		return LevelMid
	}
}
