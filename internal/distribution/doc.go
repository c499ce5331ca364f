// Package distribution synchronizes the canonical prompt tree into target projects.
//
// The Copier mirrors the guidelines directory and copies individual prompt
// files, skipping destinations whose bytes already match. The Linker replaces
// the distribution directory with a symbolic link to the canonical source.
// Service runs the per-target procedure: ensure the ignore-list marker, commit
// it when the tree is dirty, distribute the material, and optionally commit the
// copied prompts.
package distribution
