package tailoring

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RenderedCV points at a CV document written under the public directory.
type RenderedCV struct {
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
	HTML        string `json:"html"`
}

// Renderer wraps CV content in a fixed single-column document and writes it
// where the HTTP server can serve it for download.
type Renderer struct {
	publicDir string
	logger    *zap.Logger
}

func NewRenderer(publicDir string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{publicDir: publicDir, logger: logger}
}

// Styles are deliberately plain: single column, standard fonts, no tables,
// so resume parsers read the document the same way a human does.
const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s - %s</title>
<style>
  body { font-family: Georgia, "Times New Roman", serif; font-size: 11pt; color: #1a1a1a; max-width: 800px; margin: 40px auto; line-height: 1.45; }
  h1 { font-size: 18pt; margin-bottom: 2px; }
  h2 { font-size: 13pt; border-bottom: 1px solid #1a1a1a; padding-bottom: 2px; margin-top: 18px; }
  ul { margin: 6px 0; padding-left: 20px; }
  p { margin: 6px 0; }
</style>
</head>
<body>
%s
</body>
</html>
`

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9]+`)

func sanitizeFilename(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, "-"))
	cleaned := unsafeFilenameChars.ReplaceAllString(joined, "-")
	return strings.Trim(cleaned, "-")
}

// Render writes the finished document to <publicDir>/cv/ and returns its
// download location alongside the full HTML.
func (r *Renderer) Render(jobTitle, company, content string) (*RenderedCV, error) {
	if jobTitle == "" || company == "" {
		return nil, errors.New("job title and company are required")
	}

	html := fmt.Sprintf(documentTemplate, jobTitle, company, content)
	filename := fmt.Sprintf("cv-%s-%d.html", sanitizeFilename(company, jobTitle), time.Now().Unix())

	dir := filepath.Join(r.publicDir, "cv")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cv directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(html), 0o644); err != nil {
		return nil, fmt.Errorf("writing cv document: %w", err)
	}

	r.logger.Info("cv rendered",
		zap.String("filename", filename),
		zap.String("company", company),
	)

	return &RenderedCV{
		DownloadURL: "/cv/" + filename,
		Filename:    filename,
		HTML:        html,
	}, nil
}
