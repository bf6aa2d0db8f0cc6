package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorMessageFormat(t *testing.T) {
	err := NewNotFound("Document", "01ABC")
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("Error() = %q, want code prefix", err.Error())
	}
	if !strings.Contains(err.Error(), "Document not found: 01ABC") {
		t.Errorf("Error() = %q, want kind and identifier", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewInvalidRequest("bad"), ErrInvalidRequest, true},
		{"different code", NewInvalidRequest("bad"), ErrNotFound, false},
		{"invalid state", NewInvalidState("not tombstoned"), ErrInvalidState, true},
		{"invariant maps to internal", NewInvariantViolation("no offsets", nil), ErrInternal, true},
		{"plain error", stderrors.New("plain"), ErrInternal, false},
		{"nil error", nil, ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestNewInvalidSpanDetails(t *testing.T) {
	err := NewInvalidSpan(5, 3, 10)
	if err.Details["start"] != 5 || err.Details["end"] != 3 || err.Details["text_length"] != 10 {
		t.Errorf("Details = %v, want start/end/text_length preserved", err.Details)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
}

func TestNewInternalNilError(t *testing.T) {
	err := NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want fallback message", err.Message)
	}
}
