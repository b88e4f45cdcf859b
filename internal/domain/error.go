package domain

import (
	"errors"
	"fmt"
)

// ErrLockHeld means another owner holds a coordination lock.
var ErrLockHeld = errors.New("lock is held by another owner")

// UpstreamReason tells which check at the encyclopedia boundary failed.
type UpstreamReason string

const (
	ReasonTransport  UpstreamReason = "transport"
	ReasonHTTPStatus UpstreamReason = "http_status"
	ReasonAPI        UpstreamReason = "api"
	ReasonMalformed  UpstreamReason = "malformed"
	ReasonRedirect   UpstreamReason = "redirect"
)

// UpstreamError is the only error the wiki client produces.
// Status/StatusText are set for HTTP failures, Code/Info for API error payloads.
type UpstreamError struct {
	Reason     UpstreamReason
	Status     int
	StatusText string
	Code       string
	Info       string
	Detail     string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch e.Reason {
	case ReasonHTTPStatus:
		return fmt.Sprintf("wiki: HTTP error: %d %s", e.Status, e.StatusText)
	case ReasonAPI:
		msg := fmt.Sprintf("wiki: API error: code='%s', info='%s'", e.Code, e.Info)
		if e.Status != 0 && e.Status != 200 {
			msg += fmt.Sprintf(" (HTTP %d)", e.Status)
		}
		return msg
	case ReasonTransport:
		return fmt.Sprintf("wiki: request failed: %v", e.Err)
	}
	msg := fmt.Sprintf("wiki: %s", e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrorKind is the closed set of failure classes the bot boundary distinguishes.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindUpstream   ErrorKind = "upstream"
	KindUnexpected ErrorKind = "unexpected"
)

// KindOf classifies err for logging and metrics.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return KindUpstream
	}
	return KindUnexpected
}
