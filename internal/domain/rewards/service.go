package rewards

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nekoden/nekoden/nekoden/config"
)

// Service ties the cooldown guard, prize catalogue and ledger into the
// spin flow exposed over HTTP.
type Service struct {
	guard     *CooldownGuard
	ledger    *Ledger
	catalogue *Catalogue
	handlers  map[string]PrizeHandler
}

// NewService registers a ledger grant handler for every prize with an effect.
func NewService(guard *CooldownGuard, ledger *Ledger, catalogue *Catalogue) *Service {
	s := &Service{
		guard:     guard,
		ledger:    ledger,
		catalogue: catalogue,
		handlers:  make(map[string]PrizeHandler),
	}
	grant := GrantHandler(ledger)
	for _, name := range catalogue.Names() {
		if p, _ := catalogue.Lookup(name); p.Effect != "" {
			s.handlers[name] = grant
		}
	}
	return s
}

// Handle replaces the handler for an exact prize name.
func (s *Service) Handle(prizeName string, h PrizeHandler) {
	s.handlers[prizeName] = h
}

func (s *Service) Ledger() *Ledger { return s.ledger }

// Spin records a spin for userID if the cooldown allows it, then applies the
// prize. A failing prize handler never undoes the recorded spin. Check and
// Record are separate store calls, so concurrent spins by one user can both
// pass the check.
func (s *Service) Spin(ctx context.Context, userID, reward string) (*SpinResult, error) {
	reward = strings.TrimSpace(reward)
	prize, ok := s.catalogue.Lookup(reward)
	if !ok {
		return nil, &UnknownPrizeError{Name: reward, Suggestions: s.catalogue.Suggest(reward)}
	}

	status, err := s.guard.Check(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return nil, &CooldownError{RemainingSeconds: status.RemainingSeconds}
	}

	spin, err := s.guard.Record(ctx, userID, prize.Name)
	if err != nil {
		return nil, err
	}

	if h, ok := s.handlers[prize.Name]; ok {
		if err := h(ctx, userID, prize); err != nil {
			slog.Error("Prize handler failed",
				slog.String("type", "error"),
				slog.String("user_id", userID),
				slog.String("prize", prize.Name),
				slog.Any("error", err))
		}
	}

	result := &SpinResult{Spin: *spin}
	if s.guard.Bypasses(prize.Name) {
		result.CanSpinAgain = true
	} else {
		result.CooldownRemaining = remainingSeconds(s.guard.Window())
	}
	return result, nil
}

func (s *Service) History(ctx context.Context, userID string) ([]Spin, error) {
	spins, err := s.guard.repo.SpinHistory(ctx, userID, config.SpinHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load spin history: %w", err)
	}
	return spins, nil
}

func (s *Service) Cooldown(ctx context.Context, userID string) (CooldownStatus, error) {
	return s.guard.Check(ctx, userID)
}
