package client

import (
	"fmt"
)

// GenerateResponse is the proxy's answer to a configuration submission.
type GenerateResponse struct {
	// GeneratedURL is the playback URL to use as the stream entry point.
	GeneratedURL string `json:"generatedUrl"`
}

// SubmissionFailedError is returned for any submission that did not yield a
// playback URL. StatusCode is zero when no response was received.
type SubmissionFailedError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *SubmissionFailedError) Error() string {
	msg := "submission failed: " + e.Reason
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SubmissionFailedError) Unwrap() error {
	return e.Err
}
