package ai

import "context"

// Draft is a tailored CV produced by the drafting delegate.
type Draft struct {
	JobTitle        string
	Company         string
	ATSScore        int
	MatchedKeywords []string
	MissingKeywords []string
	HTML            string
	Raw             string
}

// DraftRequest carries everything the drafting delegate needs.
type DraftRequest struct {
	MasterProfile  string
	JobDescription string
	JobURL         string
}

// Drafter produces a tailored CV draft for a job description.
type Drafter interface {
	Draft(ctx context.Context, req *DraftRequest) (*Draft, error)
}

// Review is the verdict returned by the reviewing delegate.
type Review struct {
	Verdict         string
	Score           int
	Notes           string
	Issues          []string
	Recommendations []string
	Raw             string
}

// ReviewRequest describes a generated CV submitted for quality review.
type ReviewRequest struct {
	CVID            string
	JobTitle        string
	Company         string
	ATSScore        int
	MatchedKeywords []string
	MissingKeywords []string
	PDFURL          string
}

// Reviewer evaluates a generated CV and returns a structured verdict.
type Reviewer interface {
	Review(ctx context.Context, req *ReviewRequest) (*Review, error)
}
