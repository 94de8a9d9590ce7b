// Package client talks to the jobhub server on behalf of the command-line
// client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): Register,
//     Login, Me, PresignLogo and Listen.
//  2. A concrete HTTP implementation (see HTTPClient) that speaks JSON to the
//     REST routes and holds a gorilla websocket open on /ws for Listen.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrAlreadyExists, ErrBadRequest.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; cancelling the context given to
// Listen closes the websocket cleanly.
package client
