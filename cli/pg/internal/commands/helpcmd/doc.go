// Package helpcmd prints the usage text for `pg help`.
package helpcmd
