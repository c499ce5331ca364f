// Package flags provides yes/no toggle and fixed-choice flag values for Cobra commands.
package flags
