package shared

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewID(t *testing.T) {
	for _, prefix := range []string{"ws_", "tr_", ""} {
		t.Run("prefix_"+prefix, func(t *testing.T) {
			id := NewID(prefix)
			if !strings.HasPrefix(id, prefix) {
				t.Fatalf("expected ID to start with %q, got %q", prefix, id)
			}
			if _, err := uuid.Parse(strings.TrimPrefix(id, prefix)); err != nil {
				t.Errorf("expected UUID suffix, got %q: %v", id, err)
			}
		})
	}

	if NewID("test_") == NewID("test_") {
		t.Error("expected unique IDs, got duplicates")
	}
}
