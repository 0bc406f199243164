/*
Package validate checks an indexed step tree before it is allowed to run.

A Validator walks the tree the same way the graph indexer does. For every
executable step it checks the operator, resolves every template reference
in the parameters against the index and applies the scope rules, then calls
the operator's external validate hook. Branch conditions are checked group
by group and stop at the first failing condition.

Siblings are validated concurrently and every started check is awaited, even
after a failure. Hook errors and panics never escape: they only mark the step
as INVALID_PARAMETERS. Validate therefore returns a Result, not an error.

In-flight hooks are not cancelled when a newer pass starts; callers discard
stale results. The context given to Validate is passed to hooks unchanged.
*/
package validate
