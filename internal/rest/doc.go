// Package rest implements the HTTP client for the ksqlDB REST control plane.
//
// Two endpoints are consumed: POST /ksql for statement submission and
// GET /status/{commandId} for asynchronous command tracking, plus GET /info
// for server identity. Credentials are held per client instance; nothing is
// process-global.
package rest
