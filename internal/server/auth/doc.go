// Package auth verifies credentials, issues and validates access tokens, and
// resolves tokens into accounts with role checks on top.
package auth
