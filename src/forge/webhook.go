package forge

import (
	"encoding/json"
	"fmt"
	"strings"

	"kiln-agent/src/contracts"
)

// Pull request actions that represent new or updated code. Other actions
// (labeled, closed, ...) never schedule runs.
var runnablePRActions = map[string]bool{
	"opened":      true,
	"synchronize": true,
	"reopened":    true,
}

// ParseWebhook converts a webhook delivery into a trigger event.
// eventType is the value of the X-Forge-Event header ("push" or
// "pull_request"). Deliveries that carry no branch reference (tag pushes,
// non-code PR actions) and unknown event types return ErrIgnoredEvent.
func ParseWebhook(eventType string, payload []byte) (*contracts.TriggerEvent, error) {
	switch eventType {
	case "push":
		return parsePush(payload)
	case "pull_request":
		return parsePullRequest(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrIgnoredEvent, eventType)
	}
}

func parsePush(payload []byte) (*contracts.TriggerEvent, error) {
	var p pushPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to parse push payload: %w", err)
	}

	branch, ok := strings.CutPrefix(p.Ref, "refs/heads/")
	if !ok {
		// Tag or other ref kind; not a branch push
		return nil, fmt.Errorf("%w: push to %s", ErrIgnoredEvent, p.Ref)
	}

	return &contracts.TriggerEvent{
		Kind:   contracts.EventPush,
		Repo:   p.Repository.FullName,
		Branch: branch,
		SHA:    p.After,
		URL:    p.Compare,
	}, nil
}

func parsePullRequest(payload []byte) (*contracts.TriggerEvent, error) {
	var p pullRequestPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to parse pull_request payload: %w", err)
	}

	if !runnablePRActions[p.Action] {
		return nil, fmt.Errorf("%w: pull_request action %s", ErrIgnoredEvent, p.Action)
	}

	// The branch filter applies to the base branch the PR targets, the
	// way hosted CI branch filters behave; the run itself checks out the
	// head commit.
	return &contracts.TriggerEvent{
		Kind:   contracts.EventPullRequest,
		Repo:   p.Repository.FullName,
		Branch: p.PullRequest.Base.Ref,
		SHA:    p.PullRequest.Head.SHA,
		URL:    p.PullRequest.HTMLURL,
		Number: p.Number,
	}, nil
}
