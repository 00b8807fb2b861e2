// Package flags holds global command line flag values that are referenced
// across packages.
package flags

var (
	DumpHeaders bool
	DumpBody    bool
	Proxy       string
)
