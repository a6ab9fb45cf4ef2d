package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/safezone/internal/config"
	"github.com/magabrotheeeer/safezone/internal/http/response"
)

const defaultIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters хранит лимитеры клиентов. Лимитеры, к которым не обращались
// дольше idleTTL, удаляются при очередном обходе, не чаще раза в idleTTL.
type clientLimiters struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiters(cfg config.RateLimit, now func() time.Time) *clientLimiters {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}
	return &clientLimiters{
		limiters:  make(map[string]*clientLimiter),
		limit:     rate.Limit(cfg.RPS),
		burst:     cfg.Burst,
		idleTTL:   ttl,
		lastSweep: now(),
		now:       now,
	}
}

func (c *clientLimiters) get(key string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) >= c.idleTTL {
		c.sweep(now)
	}

	l, ok := c.limiters[key]
	if !ok {
		l = &clientLimiter{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.limiters[key] = l
	}
	l.lastSeen = now
	return l.limiter
}

func (c *clientLimiters) sweep(now time.Time) {
	for key, l := range c.limiters {
		if now.Sub(l.lastSeen) >= c.idleTTL {
			delete(c.limiters, key)
		}
	}
	c.lastSweep = now
}

func (c *clientLimiters) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.limiters)
}

// RateLimitMiddleware ограничивает частоту запросов отдельно для каждого клиента.
// Клиент определяется по адресу; за прокси перед ним нужен middleware.RealIP.
func RateLimitMiddleware(log *slog.Logger, cfg config.RateLimit) func(http.Handler) http.Handler {
	return rateLimit(log, newClientLimiters(cfg, time.Now))
}

func rateLimit(log *slog.Logger, clients *clientLimiters) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientKey(r)
			if !clients.get(client).Allow() {
				log.Warn("too many requests", slog.String("client", client))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("Muitas requisições. Tente novamente em instantes."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
