// Package internaldefs holds the shared counter definitions used by the
// Prometheus and OTel exporters. Not for use outside metrics/export.
package internaldefs
