package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

type readyCheck struct {
	name     string
	required bool
	probe    func(context.Context) error
}

// ReadyHandler reports readiness: the database and state store must
// answer, NATS only degrades the answer when it is wired but down.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := []readyCheck{
		{"database", true, func(ctx context.Context) error {
			if deps.DB == nil {
				return fmt.Errorf("not configured")
			}
			return deps.DB.Pool.Ping(ctx)
		}},
		{"nats", false, func(ctx context.Context) error {
			if deps.NATS == nil {
				return fmt.Errorf("not configured")
			}
			if !deps.NATS.IsConnected() {
				return fmt.Errorf("disconnected")
			}
			return nil
		}},
		// A missing probe key is a healthy answer from the state store.
		{"state_store", true, func(ctx context.Context) error {
			if deps.State == nil {
				return fmt.Errorf("not configured")
			}
			_, err := deps.State.Get(ctx, "__health_check__")
			return err
		}},
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for _, chk := range checks {
			if err := chk.probe(ctx); err != nil {
				results[chk.name] = err.Error()
				if chk.required {
					ready = false
				}
				continue
			}
			results[chk.name] = "ok"
		}

		code := 200
		status := "ready"
		if !ready {
			code = 503
			status = "not ready"
		}
		return c.Status(code).JSON(fiber.Map{"status": status, "checks": results})
	}
}
