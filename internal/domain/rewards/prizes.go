package rewards

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/nekoden/nekoden/nekoden/config"
)

const maxSuggestions = 3

// Prize is one entry of the wheel. Prizes with an Effect grant that effect
// for Duration when won.
type Prize struct {
	Name     string
	Effect   string
	Value    map[string]string
	Duration time.Duration
}

// PrizeHandler applies the side effect of winning a prize.
type PrizeHandler func(ctx context.Context, userID string, prize Prize) error

func DefaultPrizes() []Prize {
	return []Prize{
		{Name: config.FreeSpinPrize},
		{
			Name:     "Party Cat Avatar",
			Effect:   EffectAvatar,
			Value:    map[string]string{ValueAvatar: "/avatars/party-cat.png"},
			Duration: time.Hour,
		},
		{
			Name:     "Rainbow Name",
			Effect:   "name_style",
			Value:    map[string]string{"style": "rainbow"},
			Duration: 30 * time.Minute,
		},
		{
			Name:     "Golden Frame",
			Effect:   "frame",
			Value:    map[string]string{"frame": "gold"},
			Duration: 30 * time.Minute,
		},
		{Name: "Cat Treat"},
		{Name: "Try Again"},
	}
}

// Catalogue is the fixed set of prizes, looked up by exact name.
type Catalogue struct {
	prizes map[string]Prize
	names  []string
}

func NewCatalogue(prizes []Prize) *Catalogue {
	c := &Catalogue{prizes: make(map[string]Prize, len(prizes))}
	for _, p := range prizes {
		c.prizes[p.Name] = p
		c.names = append(c.names, p.Name)
	}
	sort.Strings(c.names)
	return c
}

func (c *Catalogue) Lookup(name string) (Prize, bool) {
	p, ok := c.prizes[name]
	return p, ok
}

func (c *Catalogue) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Suggest returns the closest prize names to a misspelt one.
func (c *Catalogue) Suggest(name string) []string {
	lowered := make([]string, len(c.names))
	for i, n := range c.names {
		lowered[i] = strings.ToLower(n)
	}
	matches := fuzzy.Find(strings.ToLower(strings.TrimSpace(name)), lowered)
	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, c.names[m.Index])
	}
	return out
}

// GrantHandler applies a prize's effect through the ledger.
func GrantHandler(ledger *Ledger) PrizeHandler {
	return func(ctx context.Context, userID string, prize Prize) error {
		_, err := ledger.Grant(ctx, userID, prize.Effect, prize.Value, prize.Duration)
		return err
	}
}
