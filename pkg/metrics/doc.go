// Package metrics defines Prometheus metrics for form-relay, covering
// submission outcomes and mail delivery.
package metrics
