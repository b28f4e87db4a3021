package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyAndUserMessage(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantMsg  string
	}{
		{"no internet", NewNetworkError(KindNoInternet, cause), KindNoInternet, "No internet connection"},
		{"server", NewNetworkError(KindServerError, cause), KindServerError, "Server error. Please try again."},
		{"timeout", NewNetworkError(KindRequestTimeout, nil), KindRequestTimeout, "Request timed out. Please try again."},
		{"other", NewNetworkError(KindOther, cause), KindOther, "Failed to load cooking steps: connection reset"},
		{"wrapped", fmt.Errorf("fetch: %w", NewNetworkError(KindServerError, cause)), KindServerError, "Server error. Please try again."},
		{"plain", cause, KindOther, "Failed to load cooking steps: connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.wantKind {
				t.Fatalf("Classify = %s, want %s", got, tt.wantKind)
			}
			if got := UserMessage(tt.err); got != tt.wantMsg {
				t.Fatalf("UserMessage = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewNetworkError(KindOther, cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to reach the cause")
	}
	if err.Error() != "OTHER: boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
