package errors

import (
	stderrors "errors"

	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/export"
	"github.com/vango-dev/weft/pkg/protocol"
)

// Classify returns err as a WeftError, choosing a code from the
// sentinel it wraps. Unrecognized errors are returned uncoded.
func Classify(err error) *WeftError {
	if err == nil {
		return nil
	}
	var we *WeftError
	if stderrors.As(err, &we) {
		return we
	}

	var slot *engine.SlotError
	var effect *engine.EffectError
	switch {
	case stderrors.As(err, &slot):
		return New("W001").Wrap(err).
			WithSuggestion("Move " + slot.Component + "'s slot declarations out of conditions and loops")
	case stderrors.Is(err, engine.ErrComponentPanic):
		return New("W002").Wrap(err)
	case stderrors.Is(err, engine.ErrRenderLoop):
		return New("W003").Wrap(err).
			WithSuggestion("Only call setters from event handlers, effects, or behind a condition")
	case stderrors.Is(err, engine.ErrNoContainer):
		return New("W004").Wrap(err)
	case stderrors.Is(err, engine.ErrHostAdapter):
		return New("W010").Wrap(err)
	case stderrors.As(err, &effect):
		return New("W020").Wrap(err)
	case stderrors.Is(err, protocol.ErrUnknownNode):
		return New("W031").Wrap(err)
	case isProtocolError(err):
		return New("W030").Wrap(err)
	case stderrors.Is(err, export.ErrInvalidName):
		return New("W061").Wrap(err)
	case stderrors.Is(err, export.ErrTooLarge):
		return New("W060").Wrap(err)
	}
	return &WeftError{Message: err.Error()}
}

func isProtocolError(err error) bool {
	for _, target := range []error{
		protocol.ErrFrameTooLarge,
		protocol.ErrInvalidFrameType,
		protocol.ErrUnknownPatchOp,
		protocol.ErrVarintOverflow,
		protocol.ErrAllocationTooLarge,
		protocol.ErrCollectionTooLarge,
	} {
		if stderrors.Is(err, target) {
			return true
		}
	}
	return false
}
