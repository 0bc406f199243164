/*
Package observability turns validator lifecycle events into structured
logs and Prometheus metrics.

Both helpers return validate.Hooks, so they compose with validate.ComposeHooks
and with any caller-provided hooks.
*/
package observability
