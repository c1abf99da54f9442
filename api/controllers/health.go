package controllers

import (
	"context"
	"net/http"

	"github.com/aion-commerce/aion-backend/api/responses"
	"github.com/aion-commerce/aion-backend/pkg/config"
	"github.com/aion-commerce/aion-backend/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Aion-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Aion-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		checks["database"] = checkDependency(r.Context(), logg, "database", dbP, &healthy)
		checks["redis"] = checkDependency(r.Context(), logg, "redis", redisP, &healthy)

		status := http.StatusOK
		state := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": state,
			"checks": checks,
		})
	}
}

func checkDependency(ctx context.Context, logg *logger.Logger, name string, p pinger, healthy *bool) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		*healthy = false
		if logg != nil {
			logg.Error(ctx, "health."+name+".unreachable", err)
		}
		return "down"
	}
	return "ok"
}
