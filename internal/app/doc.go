// Package app wires configuration, logging, telemetry, the batch pipeline
// and the HTTP front end into one Application.
//
// The CLI builds an Application per invocation and calls the orchestrator
// directly; the serve command runs Serve, which drives phases through the
// job queue and streams pipeline events to websocket clients.
package app
