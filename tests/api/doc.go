// Package api contains tests that run against a real catchmail server.
//
// These tests require the server to be running before execution.
//
// Usage:
//
//	# Start the server first
//	go run ./cmd/server
//
//	# Then run the API tests
//	go test -tags=api ./tests/api/... -v
//
// Environment Variables:
//
//	API_BASE_URL - Base URL of the HTTP server (default: http://localhost:8080)
//	API_KEY      - API key for authentication (default: test-api-key-for-development-only-32chars)
//	TARGET_EMAIL - Inbox address the server accepts (default: inbox@example.com)
package api
