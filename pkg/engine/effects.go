package engine

import (
	"runtime/debug"

	"github.com/vango-dev/weft/pkg/vdom"
)

// flushEffects runs the changed effects of a commit in pre-order: for each
// slot, its previous cleanup and then its callback. It returns the number
// of callbacks run.
func (e *Engine) flushEffects(effects []pendingEffect) int {
	ran := 0
	for _, p := range effects {
		e.safeEffect(p.comp, true, p.slot.runCleanup)
		if e.safeEffect(p.comp, false, p.slot.runEffect) {
			ran++
		}
	}
	return ran
}

// safeEffect runs fn, converting a panic into a reported *EffectError.
// It reports whether fn returned normally.
func (e *Engine) safeEffect(comp vdom.Component, cleanup bool, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err := &EffectError{
				Component: componentName(comp),
				Cleanup:   cleanup,
				Panic:     r,
			}
			e.logger.Warn("effect panic",
				"component", err.Component,
				"cleanup", cleanup,
				"panic", r,
				"stack", string(debug.Stack()))
			e.observer.EffectFailed(err)
			e.report(err)
		}
	}()
	fn()
	return true
}
