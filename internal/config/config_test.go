package config

import (
	"testing"

	"wompicol-be/internal/wompicol"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DB_NAME", "wompicol")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("APP_ENV", "development")
	t.Setenv("BASE_URL", "https://mitienda.com.co")
	t.Setenv("WOMPICOL_PUBLIC_KEY", "pub_prod_key")
	t.Setenv("WOMPICOL_TEST_PUBLIC_KEY", "pub_test_key")
	t.Setenv("SECRET_KEY", "op-secret")

	cfg := LoadConfig()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "https://mitienda.com.co", cfg.BaseURL)
	assert.Equal(t, "op-secret", cfg.OperatorSecret)
}

func TestConfig_PublicKeyPerEnvironment(t *testing.T) {
	cfg := &Config{
		WompicolPublicKey:     "pub_prod_key",
		WompicolTestPublicKey: "pub_test_key",
	}

	assert.Equal(t, "pub_prod_key", cfg.PublicKey(wompicol.EnvProd))
	assert.Equal(t, "pub_test_key", cfg.PublicKey(wompicol.EnvTest))
}
