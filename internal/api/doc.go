// Package api contains the HTTP handlers, request/response models, and
// error mapping for the validation, consensus, ledger, and auth endpoints.
// Handlers decode and validate requests, delegate to the services, and map
// internal errors to sanitized HTTP responses.
package api
