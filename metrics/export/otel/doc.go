// Package otel bridges engine counters into an OpenTelemetry meter via
// observable instruments. Counters are read lazily at collection time; no
// per-request work happens in the engine.
package otel
