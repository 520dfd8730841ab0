// Package api translates errors from the core engine into HTTP terms: the
// status code to return and a message that is safe to show a client.
// Routing and handlers live in package httpapi.
package api
