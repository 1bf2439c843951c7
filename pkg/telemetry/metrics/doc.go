// Package metrics records Prometheus metrics for API traffic and baseline
// enforcement.
//
// Short-lived CLI runs write the registry to a node_exporter textfile with
// WriteTextfile; long-running enforcement exposes it over HTTP with Handler.
// Every recording method accepts a nil receiver, so a disabled collector is
// simply a nil *Collector.
package metrics
