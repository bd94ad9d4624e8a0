// Package shellcmd contains the actions whose output is meant for the
// calling shell: workon prints export statements to be sourced and
// get_shell_function prints the pg() wrapper that sources them.
//
// Nothing but shell code may be written to stdout here.
package shellcmd
