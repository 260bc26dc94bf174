package config

import (
	"log"
	"os"

	"wompicol-be/internal/wompicol"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// BaseURL is the public base URL of this host, used to build the
	// client-return redirect URL handed to the checkout form.
	BaseURL string

	WompicolPublicKey     string
	WompicolTestPublicKey string

	// OperatorSecret signs the bearer tokens for the admin endpoints.
	OperatorSecret string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:                os.Getenv("DB_HOST"),
		DBUser:                os.Getenv("DB_USER"),
		DBPassword:            os.Getenv("DB_PASSWORD"),
		DBName:                os.Getenv("DB_NAME"),
		DBPort:                os.Getenv("DB_PORT"),
		AppPort:               os.Getenv("APP_PORT"),
		AppEnv:                os.Getenv("APP_ENV"),
		BaseURL:               os.Getenv("BASE_URL"),
		WompicolPublicKey:     os.Getenv("WOMPICOL_PUBLIC_KEY"),
		WompicolTestPublicKey: os.Getenv("WOMPICOL_TEST_PUBLIC_KEY"),
		OperatorSecret:        os.Getenv("SECRET_KEY"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// PublicKey returns the checkout public key matching the environment.
func (c *Config) PublicKey(env wompicol.Environment) string {
	if env == wompicol.EnvProd {
		return c.WompicolPublicKey
	}
	return c.WompicolTestPublicKey
}
