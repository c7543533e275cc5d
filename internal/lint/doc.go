// Package lint hosts sniffs: it wraps a lexed file in a token context
// (File) and dispatches tokens to registered sniffs (Ruleset).
package lint
