// Package service orchestrates the device: it owns the lifecycle machine,
// drives it from a single runner goroutine, executes the side effects each
// transition asks for (access point, network join, endpoint activation,
// control plane pushes), and backs the HTTP API.
//
// Inbound handlers never transition the machine directly; they update
// configuration and schedule work, and the runner's next tick performs the
// transition. This keeps state changes, and the notifications they emit,
// strictly ordered.
package service
