// Package ui renders git lifecycle events as short human-readable console lines
// while diagnostic detail continues to flow through the structured logger.
package ui
