// Package testutil holds fakes and fixtures shared by the command tests:
// a recording execx.Runner and stub PostgreSQL executables.
package testutil
