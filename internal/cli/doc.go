// Package cli is the interactive terminal frontend of the tetatet client.
// It is a thin dispatch layer: every command calls into the services that
// own the cache and the optimistic mutation pipeline.
package cli
