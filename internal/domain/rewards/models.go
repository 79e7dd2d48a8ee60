package rewards

import "time"

// Effect types with special handling.
const (
	EffectAvatar = "avatar"
)

// Keys inside an avatar reward value.
const (
	ValueAvatar        = "avatar"
	ValueDefaultAvatar = "default_avatar"
)

type Spin struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Reward    string    `json:"reward"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActiveReward is a time-boxed effect; at most one exists per (UserID, RewardType).
type ActiveReward struct {
	UserID     string            `json:"userId"`
	RewardType string            `json:"rewardType"`
	Value      map[string]string `json:"value"`
	ExpiresAt  time.Time         `json:"expiresAt"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func (r ActiveReward) ActiveAt(now time.Time) bool {
	return r.ExpiresAt.After(now)
}

type CooldownStatus struct {
	Allowed          bool `json:"canSpin"`
	RemainingSeconds int  `json:"remainingSeconds"`
}

type SpinResult struct {
	Spin              Spin `json:"spin"`
	CanSpinAgain      bool `json:"canSpinAgain"`
	CooldownRemaining int  `json:"cooldownRemaining"`
}

type AvatarView struct {
	Avatar    string     `json:"avatar"`
	Temporary bool       `json:"temporary"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
