package timeouts

import (
	"testing"
	"time"
)

func restoreDefaults(t *testing.T) {
	t.Cleanup(func() {
		Configure(Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium})
	})
}

func TestConfigure(t *testing.T) {
	restoreDefaults(t)

	Configure(Config{Medium: 3 * time.Second})

	if got := Medium(); got != 3*time.Second {
		t.Errorf("Medium() = %v, want 3s", got)
	}
	if got := Ping(); got != DefaultPing {
		t.Errorf("Ping() = %v, want default %v", got, DefaultPing)
	}
	if got := Short(); got != DefaultShort {
		t.Errorf("Short() = %v, want default %v", got, DefaultShort)
	}
}

func TestConfigure_ZeroKeepsCurrent(t *testing.T) {
	restoreDefaults(t)

	Configure(Config{Ping: time.Minute, Short: time.Minute, Medium: time.Minute})
	Configure(Config{})

	if Ping() != time.Minute || Short() != time.Minute || Medium() != time.Minute {
		t.Errorf("zero config changed values: %v %v %v", Ping(), Short(), Medium())
	}
}
