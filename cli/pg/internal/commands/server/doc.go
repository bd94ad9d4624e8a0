// Package server contains the runtime actions of a pg_venv: start, stop,
// restart, status and log.
package server
