package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "SERVER_PORT=9090\nDB_DRIVER=sqlite\nSESSION_TTL=2h\nKAFKA_BROKERS=a:9092, b:9092 ,\nUSE_STRIPE=true\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", envFile)

	config_singleton = &ConfigSingleTon{}
	cf, err := loadConfig()
	require.NoError(t, err)

	require.Equal(t, "9090", cf.ServerPort)
	require.Equal(t, "sqlite", cf.DbDriver)
	require.Equal(t, 2*time.Hour, cf.SessionTTL)
	require.Equal(t, []string{"a:9092", "b:9092"}, cf.KafkaBrokerList())
	require.Equal(t, "bgn", cf.Currency)
	// 沒有 secret key 時金流強制關閉
	require.False(t, cf.UseStripe)
	require.False(t, cf.PaymentsEnabled())
}

func TestPaymentsEnabled(t *testing.T) {
	cf := &Config{UseStripe: true, StripeSecretKey: "sk_test_x"}
	require.True(t, cf.PaymentsEnabled())
	cf.UseStripe = false
	require.False(t, cf.PaymentsEnabled())
}
