package config

import (
	"os"
	"strings"
)

type EnvVars struct {
	Port          string `env:"PORT" envDefault:"5000"`
	AppName       string `env:"APP_NAME" envDefault:"GA Dashboard"`
	Env           string `env:"ENV" envDefault:"DEV"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	FrontendURL   string `env:"FRONTEND_URL" envDefault:"http://localhost:3000" validate:"url"`
	DashboardPath string `env:"DASHBOARD_PATH" envDefault:"/dashboard"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "5000"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetFrontendURL() string {
	return strings.TrimSuffix(e.FrontendURL, "/")
}

// GetDashboardURL is where the browser lands after a successful login.
func (e EnvVars) GetDashboardURL() string {
	path := e.DashboardPath
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return e.GetFrontendURL() + path
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
