package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/rs/zerolog"
)

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger zerolog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			logger.Debug().
				Str("user_id", e.UserID).
				Str("from", string(e.From)).
				Str("to", string(e.To)).
				Str("action", string(e.Action)).
				Msg("screen changed")
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			logger.Debug().
				Str("user_id", e.UserID).
				Str("screen", string(e.Screen)).
				Str("outcome", string(e.Outcome)).
				Dur("duration", e.Duration).
				Msg("action handled")
		},
		OnRenderFailure: func(_ context.Context, e *domain.RenderFailureEvent) {
			logger.Debug().Err(e.Err).Str("content", string(e.Content)).Msg("render failed")
		},
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
