package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "test")

	cfg := LoadConfig()
	require.Equal(t, 8080, cfg.ServerPort)
	require.Equal(t, "bible.ac.kr", cfg.EmailDomain)
	require.Equal(t, "web/app.html", cfg.ShellPath)
	require.Equal(t, "log", cfg.Mail.Provider)
	require.Equal(t, "none", cfg.Events.Backend)
	require.Equal(t, "none", cfg.Storage.Backend)
	require.Equal(t, "localhost", cfg.Database.Host)
	require.False(t, cfg.Database.UseSSL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("EMAIL_DOMAIN", "example.ac.kr")
	t.Setenv("APP_URL", "https://hub.example.ac.kr/")
	t.Setenv("DB_USE_SSL", "yes")
	t.Setenv("MAIL_PROVIDER", "brevo")

	cfg := LoadConfig()
	require.Equal(t, 9090, cfg.ServerPort)
	require.Equal(t, "example.ac.kr", cfg.EmailDomain)
	// trailing slash is trimmed so verification links stay well-formed
	require.Equal(t, "https://hub.example.ac.kr", cfg.AppURL)
	require.True(t, cfg.Database.UseSSL)
	require.Equal(t, "brevo", cfg.Mail.Provider)
}
