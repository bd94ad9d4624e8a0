// Package build contains the source-tree actions: fetch_pg_source,
// configure, make, make_check, make_clean, install and initdb.
//
// configure and make forward their arguments to the underlying tool
// untouched, so they accept no flags of their own.
package build
