package hotkeys

import (
	"log/slog"
	"testing"

	"github.com/1broseidon/tilewm/internal/tiling"
)

// Entries with an empty sequence are disabled bindings and must be
// skipped without touching the X connection, as must unknown input
// names. The nil xu here guarantees the test fails loudly if either
// path ever reaches key registration.
func TestBindSkipsDisabledAndUnknownBindings(t *testing.T) {
	var sent []tiling.Input
	h := &Handler{
		send:   func(in tiling.Input) { sent = append(sent, in) },
		logger: slog.New(slog.DiscardHandler),
	}

	err := h.Bind(map[string]string{
		"down":       "",
		"warp-speed": "mod4-w",
	})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(sent) != 0 {
		t.Fatalf("expected no inputs sent, got %v", sent)
	}
}
