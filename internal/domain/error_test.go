//go:build !integration

package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUpstreamErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *UpstreamError
		want []string
	}{
		{
			name: "http status",
			err:  &UpstreamError{Reason: ReasonHTTPStatus, Status: 503, StatusText: "Service Unavailable"},
			want: []string{"503", "Service Unavailable"},
		},
		{
			name: "api error",
			err:  &UpstreamError{Reason: ReasonAPI, Code: "badvalue", Info: "Unrecognized value"},
			want: []string{"code='badvalue'", "info='Unrecognized value'"},
		},
		{
			name: "transport",
			err:  &UpstreamError{Reason: ReasonTransport, Err: context.DeadlineExceeded},
			want: []string{"request failed", "deadline exceeded"},
		},
		{
			name: "redirect",
			err:  &UpstreamError{Reason: ReasonRedirect, Status: 302, Detail: "unexpected location"},
			want: []string{"redirect", "unexpected location", "302"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("message %q does not contain %q", msg, w)
				}
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	up := &UpstreamError{Reason: ReasonHTTPStatus, Status: 500}
	if got := KindOf(nil); got != KindNone {
		t.Errorf("KindOf(nil) = %q", got)
	}
	if got := KindOf(fmt.Errorf("search: %w", up)); got != KindUpstream {
		t.Errorf("wrapped upstream error classified as %q", got)
	}
	if got := KindOf(errors.New("boom")); got != KindUnexpected {
		t.Errorf("plain error classified as %q", got)
	}
	if !errors.Is(&UpstreamError{Reason: ReasonTransport, Err: context.Canceled}, context.Canceled) {
		t.Error("UpstreamError should unwrap to its cause")
	}
}
