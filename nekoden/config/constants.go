package config

import "time"

// Pet lifecycle
const (
	DefaultTickInterval = 10 * time.Second
	DefaultTickTimeout  = 5 * time.Second
	DefaultRestDuration = time.Minute
	DefaultWakeDwell    = 10 * time.Second
)

// Action log
const (
	DefaultLogRetention     = time.Hour
	DefaultLogSweepInterval = time.Hour
	DefaultLogPageSize      = 50
	MaxLogPageSize          = 100
)

// Rewards
const (
	DefaultSpinCooldown        = 30 * time.Second
	DefaultRewardSweepInterval = time.Hour
	SpinHistoryLimit           = 50
	FreeSpinPrize              = "Free Spin"
)

// Database and transport
const (
	DefaultQueryTimeout    = 5 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	SocketWriteTimeout     = 10 * time.Second
	SocketPongTimeout      = 60 * time.Second
	SocketPingInterval     = 50 * time.Second
	SocketSendBuffer       = 32
	SocketMaxMessageBytes  = 4096
	IdentityCacheSize      = 1024
)
