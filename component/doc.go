// Package component defines the lifecycle contract for managed
// livefeed components.
//
// A component is anything that needs explicit startup, shutdown, and
// health reporting. In this module that is the feed client itself. Hosts
// register components into a Registry, which starts them in
// registration order, stops them in reverse, and aggregates health.
package component
