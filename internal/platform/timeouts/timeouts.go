// Package timeouts defines shared timeout constants used across the bridge.
package timeouts

import "time"

// UpstreamRequest caps a single call to the twhelp directory, a world
// snapshot host or the Discord emoji registry.
const UpstreamRequest = 10 * time.Second

// HealthCheck caps one gRPC health check.
const HealthCheck = time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// GRPCDial caps connecting to a gRPC endpoint and waiting for it to report
// SERVING.
const GRPCDial = 5 * time.Second
