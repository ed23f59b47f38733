// Package extcmd is the single boundary where external multimedia tools are
// invoked. Every invocation carries an explicit argument array (never a
// shell-interpreted string), a bounded timeout, and process-group isolation
// so cancellation can never orphan child processes.
//
// Stages depend on the Runner type rather than calling Run directly, which
// keeps subprocess behaviour injectable in tests.
package extcmd
