package config

import "github.com/Skotchmaster/storefront/pkg/config"

type ServiceConfig struct {
	config.Config
}

func Load() (ServiceConfig, error) {
	cfg := config.Load()

	var req config.Required
	req.String("DATABASE_URL", cfg.DatabaseURL).
		Bytes("JWT_SECRET", cfg.JWTAccessSecret).
		Bytes("JWT_REFRESH_SECRET", cfg.JWTRefreshSecret)
	if cfg.SeedData {
		req.String("ADMIN_PASSWORD", cfg.AdminPassword)
	}
	if err := req.Err(); err != nil {
		return ServiceConfig{}, err
	}

	return ServiceConfig{Config: cfg}, nil
}
