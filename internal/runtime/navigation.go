package runtime

import (
	"context"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/transition"
)

// moveTo applies a resolved transition to s.
func (e *Engine) moveTo(ctx context.Context, s *domain.Session, from domain.ScreenID, label domain.ActionLabel, res transition.Resolution) (*Result, error) {
	target := res.Target
	if res.Return {
		if prev, rest, ok := e.popHistory(s.History, from); ok {
			target = prev
			s.History = rest
		} else {
			s.History = nil
		}
	} else {
		s.History = pushHistory(s.History, from, e.maxHistory)
	}

	next, err := e.table.Screen(target)
	if err != nil {
		return nil, err
	}

	s.Screen = next.ID
	s.AwaitingText = next.EffectiveKind() == domain.KindInput

	e.logger.Debug().
		Str("user_id", s.UserID).
		Str("from", string(from)).
		Str("to", string(next.ID)).
		Str("action", string(label)).
		Msg("transition")
	e.emitTransition(ctx, s.UserID, from, next.ID, label)

	return &Result{
		Outcome:     domain.OutcomeMoved,
		Instruction: instructionFor(next, s),
		From:        from,
	}, nil
}

// popHistory finds the most recent breadcrumb a history-aware Back can return to.
// Entries that are not content screens, no longer registered, or equal to the
// current screen are discarded along the way.
func (e *Engine) popHistory(history []domain.ScreenID, current domain.ScreenID) (domain.ScreenID, []domain.ScreenID, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		id := history[i]
		if id == current {
			continue
		}
		screen, err := e.table.Screen(id)
		if err != nil || screen.EffectiveKind() != domain.KindContent {
			continue
		}
		return id, history[:i:i], true
	}
	return "", nil, false
}

// pushHistory appends id, dropping the oldest entries beyond limit.
func pushHistory(history []domain.ScreenID, id domain.ScreenID, limit int) []domain.ScreenID {
	out := append(history, id)
	if len(out) > limit {
		out = append([]domain.ScreenID(nil), out[len(out)-limit:]...)
	}
	return out
}
