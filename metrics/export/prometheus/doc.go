// Package prometheus renders engine counters in the Prometheus text
// exposition format without pulling in the client library.
package prometheus
