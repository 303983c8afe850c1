// Package observability holds opt-in diagnostics switches.
package observability

// Config toggles diagnostics that stay off unless asked for.
type Config struct {
	// EnablePprofTrace mounts net/http/pprof under /debug/pprof/.
	EnablePprofTrace bool
}
