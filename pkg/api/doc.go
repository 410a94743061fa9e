// Package api hosts the HTTP surface of the form relay.
//
// Server wraps a gin engine with request IDs, zap access logging, panic
// recovery and optional CORS. Controllers implementing APIController are
// mounted under their BasePath:
//
//	POST /submit   relay a JSON payload by mail
//	GET  /health   liveness check
//
// Every error is returned as the apiresponses.APIError envelope.
package api
