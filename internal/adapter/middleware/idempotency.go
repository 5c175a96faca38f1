package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the middleware uses. Tests substitute
// a mock pool through it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Idempotency replays a cached response when the client repeats a request
// with the same Idempotency-Key header. Requests without the header pass
// through untouched.
func Idempotency(db DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("Idempotency-Key")
		if key == "" {
			return c.Next()
		}

		var status int
		var body []byte
		err := db.QueryRow(c.Context(),
			"SELECT response_status, response_body FROM idempotency_keys WHERE key_id = $1",
			key).Scan(&status, &body)
		if err == nil {
			c.Set("X-Idempotency-Hit", "true")
			c.Set("Content-Type", "application/json")
			return c.Status(status).Send(body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		resStatus := c.Response().StatusCode()
		resBody := c.Response().Body()

		// Only deterministic outcomes get cached. A 5xx is a transient
		// store failure; pinning it to the key would serve the error to
		// every retry, and retrying is exactly what the header is for.
		if resStatus >= fiber.StatusInternalServerError {
			return nil
		}

		// ON CONFLICT DO NOTHING: a concurrent duplicate keeps the first
		// recorded response.
		if _, insertErr := db.Exec(c.Context(),
			"INSERT INTO idempotency_keys (key_id, response_status, response_body) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
			key, resStatus, resBody); insertErr != nil {
			slog.Error("Failed to save idempotency key", "error", insertErr, "key", key)
		}

		return nil
	}
}
