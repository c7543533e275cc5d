// Package sniff defines the contract between a rule and the host that runs it.
//
// A rule ("sniff") registers the token kinds it wants to see and is then
// handed a File and a token index for every occurrence of those kinds, in
// file order. The File gives read access to the token stream, accepts
// diagnostics, and exposes an EditQueue for fixes.
//
// Per-call values a rule needs across helper methods are held in a Slot,
// which turns a read-before-bind into a typed error instead of a zero value.
package sniff
