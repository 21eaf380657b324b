package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", MemoryDatabase)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_CHAT_IDS", "1,2")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8000" || cfg.JWTExpiry() != 24*time.Hour || !cfg.AuthRequired {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CashReportSpec != "0 21 * * *" || cfg.Location().String() != "Europe/Moscow" {
		t.Fatalf("report defaults: %q %s", cfg.CashReportSpec, cfg.Location())
	}
	if len(cfg.AdminChatIDs) != 2 || cfg.TelegramEnabled() {
		t.Fatalf("telegram needs a bot token: %+v", cfg.AdminChatIDs)
	}
	if cfg.KafkaEnabled() || cfg.TwilioEnabled() {
		t.Fatal("optional transports should be off by default")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", MemoryDatabase)
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected missing JWT_SECRET to fail")
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Config{
		DatabaseURL:    MemoryDatabase,
		JWTSecret:      "",
		JWTExpiryHours: 0,
		DBMaxIdle:      10,
		DBMaxOpen:      5,
		NotifyTimeout:  time.Second,
		RateLimitRPS:   1,
		RateLimitBurst: 1,
		CashReportSpec: "every day",
		Timezone:       "Mars/Olympus",
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"JWT_SECRET", "JWT_EXPIRY_HOURS", "DB_MAX_OPEN", "CASH_REPORT_SPEC", "TIMEZONE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %s in %v", want, err)
		}
	}
}
