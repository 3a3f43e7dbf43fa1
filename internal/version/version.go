// Package version contains information on the current version of the
// program. It is split from the main program for easy use by any cmd/
// binary without pulling in the rest of main.
package version

// Current is the string representing the current version of grouper.
const Current = "0.1.0"
