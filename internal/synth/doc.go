// Package synth turns one container declaration into the values the emitter
// renders: the tag table, the construct-dispatch and bind-dispatch case lists
// and the generated type around them.
//
// Every function here is pure. It reads the snapshot, returns a fragment and
// the diagnostics found while building it, and never writes shared state, so
// containers can be synthesized in any order or in parallel and produce the
// same fragments.
//
// Broken cases are kept rather than dropped: a construct case whose
// parameters cannot be bound becomes a panic naming the problem, a bind case
// without a usable bind routine has no invocation. Tag values therefore stay
// dense and identical to the declared order whatever the diagnostics.
package synth
