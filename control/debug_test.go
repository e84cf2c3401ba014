package control

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestDebugProbes_DumpAndServe(t *testing.T) {
	dp := NewDebugProbes()
	dp.RegisterProbe("reactor.registered", func() any { return 2 })
	RegisterPlatformProbes(dp)

	state := dp.DumpState()
	if state["reactor.registered"] != 2 {
		t.Errorf("probe value = %v", state["reactor.registered"])
	}
	if n, ok := state["platform.cpus"].(int); !ok || n < 1 {
		t.Errorf("platform.cpus = %v", state["platform.cpus"])
	}

	rec := httptest.NewRecorder()
	dp.ServeHTTP(rec, httptest.NewRequest("GET", "/debug/state", nil))
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["reactor.registered"] != float64(2) {
		t.Errorf("served value = %v", decoded["reactor.registered"])
	}
}
