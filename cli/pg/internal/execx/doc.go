// Package execx runs the external commands every pg action is made of:
// git, ./configure, make, initdb, pg_ctl, createdb.
//
// Commands are complete shell lines run through /bin/sh so that the `cd dir &&`
// and pipe forms used by the actions work unchanged. Callers pick per command
// whether output is streamed or captured, whether a progress line is printed,
// and whether a failure terminates the whole tool (ExitOnFail), which is how
// multi-step flows such as create_virtualenv fail fast.
package execx
