package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/doorwarden.db"

	// Messaging transport credentials.  Required in prod; in dev the daemon
	// falls back to a log-only notification sink when they are absent.
	ChannelSecret string
	ChannelToken  string
	NotifyUserID  string

	// Password is the shared static door secret.
	Password string

	// DoorKind selects the door output: "servo" (continuous ramp) or
	// "relay" (on/off).
	DoorKind string

	// Pin assignments, BCM numbering.
	PIRPin    int
	GreenPin  int
	RedPin    int
	BuzzerPin int
	ServoPin  int
	RelayPin  int
	LCDAddr   int // I2C address of the display backpack

	// Sequence timing.
	RampDuration time.Duration
	RampSteps    int
	OpenHold     time.Duration
	DenyHold     time.Duration
	SettleDelay  time.Duration

	// WatchdogDeadline is how long a grant/deny sequence may run before the
	// coordinator logs a warning.  0 disables the watchdog.
	WatchdogDeadline time.Duration

	// Audit retention.
	RetentionDays      int // 0 = keep forever
	PruneIntervalHours int // how often the pruner runs (default 6)
}

func FromEnv() Config {
	addr := getenvDefault("DOORWARDEN_HTTP_ADDR", ":5000")

	env := strings.ToLower(getenvDefault("DOORWARDEN_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	doorKind := strings.ToLower(getenvDefault("DOORWARDEN_DOOR_KIND", "servo"))
	if doorKind != "servo" && doorKind != "relay" {
		doorKind = "servo"
	}

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   getenvDefault("DOORWARDEN_DB_PATH", "./data/doorwarden.db"),

		ChannelSecret: os.Getenv("LINE_CHANNEL_SECRET"),
		ChannelToken:  os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		NotifyUserID:  os.Getenv("LINE_NOTIFY_USER_ID"),

		Password: getenvDefault("DOORWARDEN_PASSWORD", "1234"),

		DoorKind: doorKind,

		PIRPin:    getenvInt("DOORWARDEN_PIR_PIN", 17),
		GreenPin:  getenvInt("DOORWARDEN_GREEN_PIN", 16),
		RedPin:    getenvInt("DOORWARDEN_RED_PIN", 21),
		BuzzerPin: getenvInt("DOORWARDEN_BUZZER_PIN", 20),
		ServoPin:  getenvInt("DOORWARDEN_SERVO_PIN", 12),
		RelayPin:  getenvInt("DOORWARDEN_RELAY_PIN", 12),
		LCDAddr:   getenvInt("DOORWARDEN_LCD_ADDR", 0x27),

		RampDuration: getenvDuration("DOORWARDEN_RAMP_DURATION", time.Second),
		RampSteps:    getenvInt("DOORWARDEN_RAMP_STEPS", 20),
		OpenHold:     getenvDuration("DOORWARDEN_OPEN_HOLD", 5*time.Second),
		DenyHold:     getenvDuration("DOORWARDEN_DENY_HOLD", 3*time.Second),
		SettleDelay:  getenvDuration("DOORWARDEN_SETTLE_DELAY", 500*time.Millisecond),

		WatchdogDeadline: getenvDuration("DOORWARDEN_WATCHDOG_DEADLINE", 30*time.Second),

		RetentionDays:      getenvInt("DOORWARDEN_RETENTION_DAYS", 30),
		PruneIntervalHours: getenvInt("DOORWARDEN_PRUNE_INTERVAL_HOURS", 6),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
