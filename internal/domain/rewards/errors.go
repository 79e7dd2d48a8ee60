package rewards

import "fmt"

// CooldownError rejects a spin attempted inside the cooldown window.
type CooldownError struct {
	RemainingSeconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("spin cooldown active, %ds remaining", e.RemainingSeconds)
}

// UnknownPrizeError rejects a spin for a prize outside the catalogue.
type UnknownPrizeError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownPrizeError) Error() string {
	return fmt.Sprintf("unknown prize %q", e.Name)
}
