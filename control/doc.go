// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, logging, metrics and debug introspection layer around the
// reactor.
//
// Provides:
//   - YAML configuration with defaults and validation
//   - Snapshot config store with reload listeners and an fsnotify watcher
//   - Prometheus collectors fed by the reactor loop
//   - Debug probe registration and JSON state export
package control
