// Package metrics summarises a running network.
//
// Every metric observes one network.Snapshot plus the network.TickReport
// that produced it and exposes a single scalar Value. Metrics are not safe
// for concurrent use; the experiment driver feeds them from one goroutine.
package metrics
