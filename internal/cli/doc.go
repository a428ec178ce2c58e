// Package cli defines the optiflow command tree. It validates user input,
// configures logging for the process, and translates domain failures into
// exit codes.
package cli
