// Package cmdregistry defines pg's closed set of actions and the registry
// mapping each of them to a handler. Handlers live in the commands/...
// packages; main parses the global flags, resolves the action token and
// dispatches through the registry.
package cmdregistry
