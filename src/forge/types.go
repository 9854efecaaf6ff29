// Package forge integrates with the Git hosting platform: it parses
// incoming webhook payloads into trigger events and reports run status back
// onto the triggering commit.
package forge

// Status is a commit status state understood by the forge API.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusError   Status = "error"
)

// StatusContext is the context label Kiln statuses appear under on the
// forge UI.
const StatusContext = "kiln/pipeline"

// pushPayload is the subset of the push webhook payload we consume.
type pushPayload struct {
	// Ref is the full ref, e.g. "refs/heads/master".
	Ref        string `json:"ref"`
	After      string `json:"after"`
	Compare    string `json:"compare"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// pullRequestPayload is the subset of the pull_request webhook payload we
// consume.
type pullRequestPayload struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		HTMLURL string `json:"html_url"`
		Head    struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		} `json:"head"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
	} `json:"pull_request"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}
