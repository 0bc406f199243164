// Package ref parses and resolves template references.
//
// A parameter string that is exactly one reference has the form
//
//	{{__<owner><key>}}
//
// where owner is a run of word characters naming the step that produces the
// value and key is the rest of an output key, e.g. "{{__3.source.id}}".
// References whose owner is not a decimal number address the global scope.
//
// Resolution matches the reference against a symbol table of
// "__"+owner+outputKey entries and picks the longest matching key, so that
// "{{__31.x}}" binds to owner "31" even when owner "3" also exists.
package ref
