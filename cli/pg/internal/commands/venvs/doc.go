// Package venvs contains the actions creating, listing and deleting pg_venvs:
// create_virtualenv, list, rm_data and rm_virtualenv.
package venvs
