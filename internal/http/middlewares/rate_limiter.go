package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter allows each client IP limit requests per window, refilled
// smoothly. Limiters idle for longer than a window are dropped.
func RateLimiter(limit int, window time.Duration) echo.MiddlewareFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*client)
		lastPrune = time.Now()
		every     = rate.Every(window / time.Duration(limit))
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			key := c.RealIP()

			mu.Lock()
			if now.Sub(lastPrune) > window {
				for k, cl := range clients {
					if now.Sub(cl.lastSeen) > window {
						delete(clients, k)
					}
				}
				lastPrune = now
			}

			cl, ok := clients[key]
			if !ok {
				cl = &client{limiter: rate.NewLimiter(every, limit)}
				clients[key] = cl
			}
			cl.lastSeen = now
			allowed := cl.limiter.AllowN(now, 1)
			mu.Unlock()

			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
