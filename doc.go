// Package kflow composes kblock stages into hierarchical, reusable flows.
//
// A Flow owns children, which are leaf blocks or other flows. It reports one
// completion for the whole tree and propagates faults into it:
//
//   - The completion of a flow succeeds once every child succeeded, every
//     post-completion task succeeded and the cleanup function ran.
//   - The first failing child determines the outcome of the flow. Its
//     remaining children are faulted with a PropagatedError of kind
//     KindSiblingFailed or KindSiblingCanceled.
//   - A PropagatedError is forwarded unchanged, so a fault is wrapped exactly
//     once however deep the tree is.
//
// # Typed flows
//
// InFlow adds a typed input and IOFlow a typed output. Output is routed
// between flows by bridges:
//
//	parse, _ := kflow.FromPropagator(kblock.NewTransformBlock(parseLine))
//	store, _ := kflow.FromTarget(kblock.NewActionBlock(storeRecord))
//
//	_ = kflow.TransformAndLink(parse, store, toRecord, isValid)
//	_ = parse.LinkUnmatchedToSink()
//
//	done := parse.DrainAndComplete(ctx, lines)
//
// A bridge does not propagate completion blindly. The input of the target is
// completed when both the source and its flow succeeded, the target is
// faulted with KindLinkedFailed or KindLinkedCanceled when they did not, and
// the source flow is faulted when the target fails first.
//
// # Monitoring
//
// WithFlowMonitor and WithBlockMonitor start a loop that logs buffer depths
// until the flow finishes. WithMonitorHook runs custom code on every tick,
// see kmetrics.GaugeHook.
package kflow
