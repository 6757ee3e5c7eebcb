package observ

import (
	"encoding/json"
	"fmt"
	"time"
)

// Log emits a single-line JSON event to stdout. Logging is a side effect of
// the simulation, never a correctness dependency, so marshal errors are
// swallowed.
func Log(event string, kv map[string]any) {
	if kv == nil {
		kv = map[string]any{}
	}
	kv["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	kv["event"] = event
	b, _ := json.Marshal(kv)
	fmt.Println(string(b))
}
