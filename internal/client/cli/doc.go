// Package cli provides the jobhub command-line client.
//
// It wires configuration and the HTTP API client into either a one-shot
// subcommand (`client listen`) or an interactive REPL.
//
// Key features:
//   - Register / Login (password read without echo)
//   - Me: show the identity behind the current token
//   - Logo: upload a company logo through a presigned URL
//   - Listen: hold the websocket open and print every pushed message
package cli
