// Package api holds the HTTP handlers of the review engine: card creation,
// deletion and import, review submission and statistics. Handlers decode and
// validate requests, call the services and map service errors to status
// codes through HandleAPIError.
package api
