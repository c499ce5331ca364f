// Package cli constructs the promptsync command-line interface, wiring the
// Cobra command hierarchy, the layered configuration loader, and the zap
// loggers shared by the copy and link commands.
package cli
