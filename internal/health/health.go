// Package health backs the liveness/readiness probes. Readiness hinges on
// the database: a replica that cannot reach Postgres must not be handed
// lifecycle commands, since every guard check reads the customer row.
package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pingTimeout bounds the readiness check so a hung database turns into
// "unhealthy" instead of a stalled probe.
const pingTimeout = 2 * time.Second

type HealthChecker struct {
	db *pgxpool.Pool
}

type HealthStatus struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

func NewHealthChecker(db *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{db: db}
}

// CheckBasic reports overall health. The service has exactly one hard
// dependency, so overall status mirrors the database's.
func (h *HealthChecker) CheckBasic() HealthStatus {
	dbHealth := h.checkDatabase()

	status := dbHealth.Status
	if status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
	}
}

func (h *HealthChecker) checkDatabase() DatabaseHealth {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)

	health := DatabaseHealth{
		Status:       "healthy",
		ResponseTime: time.Since(start).Milliseconds(),
	}
	if err != nil {
		health.Status = "unhealthy"
	}
	return health
}
