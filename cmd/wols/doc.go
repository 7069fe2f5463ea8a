// Package main hosts the wols CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the record lifecycle end to end:
// creating, validating, and inspecting specimen documents, encoding and
// decoding compact label URLs, migrating outdated records, encrypting and
// decrypting envelopes, rendering QR labels, and browsing the issuance
// archive. It centralizes configuration resolution and structured logging
// setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality to pkg/wols, pkg/label, or
// the internal services first, then surface it through dedicated commands or
// flags here.
package main
