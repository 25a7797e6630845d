// Package engine is the incremental rendering runtime.
//
// A render starts from the root descriptor and builds a work-in-progress
// tree one work node at a time. Component nodes are evaluated, which
// produces their single child; host and fragment nodes reconcile their
// virtual children against the children of the matching node in the
// committed tree. Between units the engine checks the scheduler's deadline
// and yields when the slice is spent.
//
// When the last unit finishes, the committer applies the tree to the host
// in one step: queued deletions first (cleanups, then host detachment),
// then a pre-order walk creating, updating and placing host nodes. The
// work tree then becomes the committed tree and changed effects run.
//
// Components keep state in slots matched by declaration order:
//
//	func Counter(s vdom.Scope, props vdom.Props) *vdom.VNode {
//		count, setCount := engine.UseState(s, 0)
//		engine.UseEffect(s, func() vdom.Cleanup {
//			log.Println("count is", count)
//			return nil
//		}, count)
//		return vdom.Button(vdom.OnClick(func() { setCount.Set(count + 1) }), count)
//	}
//
// Children are matched by position unless WithKeyedReconciliation is set.
package engine
