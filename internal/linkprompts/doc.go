// Package linkprompts exposes the link command, which points each listed project's
// .cursor/rules/global_prompts entry at the canonical prompts directory through a symbolic link.
package linkprompts
