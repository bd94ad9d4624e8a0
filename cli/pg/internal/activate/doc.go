// Package activate produces the shell statements of `pg workon` and the pg()
// wrapper function that evaluates them.
//
// Nothing here touches the process environment: the caller's variables come
// in as a map and the result is text for the invoking shell to source.
package activate
