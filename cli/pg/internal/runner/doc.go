// Package runner holds the alternative execx.Runner used by --dry-run.
//
// A dry run walks through exactly the same action code as a real run, so the
// printed command lines are the ones that would have been executed. Commands
// whose output feeds a later decision (git describe, pg_config --version, du)
// report success with empty output.
package runner
