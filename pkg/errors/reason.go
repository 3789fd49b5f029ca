package errors

import (
	"context"
	"errors"
	"strings"
)

// Reason names why a single classification failed. It labels logs and
// metrics; it never changes how the failure is handled.
type Reason string

const (
	ReasonTimeout          Reason = "timeout"
	ReasonCanceled         Reason = "canceled"
	ReasonRateLimit        Reason = "rate_limit"
	ReasonAuth             Reason = "auth"
	ReasonModelUnavailable Reason = "model_unavailable"
	ReasonInvalidResponse  Reason = "invalid_response"
	ReasonUnknown          Reason = "unknown"
)

// reasonInfo holds the metadata of a Reason.
type reasonInfo struct {
	Retryable   bool
	Description string
}

var reasonRegistry = map[Reason]reasonInfo{
	ReasonTimeout:          {Retryable: true, Description: "Classifier call exceeded its deadline"},
	ReasonCanceled:         {Retryable: false, Description: "Run was interrupted"},
	ReasonRateLimit:        {Retryable: true, Description: "Classifier API rate limit or quota reached"},
	ReasonAuth:             {Retryable: false, Description: "Classifier API rejected the credentials"},
	ReasonModelUnavailable: {Retryable: true, Description: "Classifier API could not be reached"},
	ReasonInvalidResponse:  {Retryable: false, Description: "Classifier returned output that could not be decoded"},
	ReasonUnknown:          {Retryable: false, Description: "Unclassified failure"},
}

// patterns are checked in order against the lowercased error text.
var patterns = []struct {
	reason Reason
	any    []string
}{
	{ReasonTimeout, []string{"deadline exceeded", "timeout", "timed out"}},
	{ReasonCanceled, []string{"context canceled"}},
	{ReasonRateLimit, []string{"rate limit", "429", "too many requests", "quota"}},
	{ReasonAuth, []string{"401", "403", "unauthorized", "invalid api key", "incorrect api key"}},
	{ReasonModelUnavailable, []string{"connection refused", "no such host", "unavailable", "502", "503", "504"}},
	{ReasonInvalidResponse, []string{"unmarshal", "no json object", "unexpected eof", "invalid character"}},
}

// ReasonOf inspects err and returns the best matching Reason. A nil err
// returns "".
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}

	lower := strings.ToLower(err.Error())
	for _, p := range patterns {
		for _, s := range p.any {
			if strings.Contains(lower, s) {
				return p.reason
			}
		}
	}
	return ReasonUnknown
}

// IsRetryable reports whether the failure is likely transient.
func (r Reason) IsRetryable() bool {
	return reasonRegistry[r].Retryable
}

// Description returns a short human description of the reason.
func (r Reason) Description() string {
	if info, ok := reasonRegistry[r]; ok {
		return info.Description
	}
	return reasonRegistry[ReasonUnknown].Description
}
