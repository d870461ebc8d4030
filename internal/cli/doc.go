// Package cli implements memberctl, the operator command line used to
// bootstrap admin accounts and toggle account activity without going
// through the HTTP API.
package cli
