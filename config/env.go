package config

import "os"

var Envs = struct {
	FRONTEND_ORIGIN string
	JWT_KEY         []byte
	POSTGRES_URL    string
	GIN_MODE        string
	LISTEN_ADDR     string
}{
	FRONTEND_ORIGIN: os.Getenv("FRONTEND_ORIGIN"),
	JWT_KEY:         []byte(os.Getenv("JWT_KEY")),
	POSTGRES_URL:    os.Getenv("POSTGRES_URL"),
	GIN_MODE:        os.Getenv("GIN_MODE"),
	LISTEN_ADDR:     os.Getenv("LISTEN_ADDR"),
}

// Reload re-reads the environment. Called after godotenv has loaded .env,
// since the package-level literal runs before main.
func Reload() {
	Envs.FRONTEND_ORIGIN = os.Getenv("FRONTEND_ORIGIN")
	Envs.JWT_KEY = []byte(os.Getenv("JWT_KEY"))
	Envs.POSTGRES_URL = os.Getenv("POSTGRES_URL")
	Envs.GIN_MODE = os.Getenv("GIN_MODE")
	Envs.LISTEN_ADDR = os.Getenv("LISTEN_ADDR")
}
