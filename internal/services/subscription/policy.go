package subscription

import (
	"time"

	"github.com/magabrotheeeer/safezone/internal/config"
)

// DateLayout — формат дат в ответах о статусе подписки.
const DateLayout = "02/01/2006"

// Policy задаёт длительности жизненного цикла подписки.
type Policy struct {
	TrialPeriod  time.Duration
	BillingCycle time.Duration
	// GracePeriod общий для пробного и оплаченного периода.
	GracePeriod time.Duration
	Amount      float64
}

// DefaultPolicy — 30 дней бесплатно, ежемесячная оплата, 5 дней на оплату.
var DefaultPolicy = Policy{
	TrialPeriod:  30 * 24 * time.Hour,
	BillingCycle: 30 * 24 * time.Hour,
	GracePeriod:  5 * 24 * time.Hour,
	Amount:       30,
}

// PolicyFromConfig строит Policy из конфигурации, подставляя значения
// по умолчанию для незаданных полей.
func PolicyFromConfig(cfg config.Billing) Policy {
	p := DefaultPolicy
	if cfg.TrialPeriod > 0 {
		p.TrialPeriod = cfg.TrialPeriod
	}
	if cfg.BillingCycle > 0 {
		p.BillingCycle = cfg.BillingCycle
	}
	if cfg.GracePeriod > 0 {
		p.GracePeriod = cfg.GracePeriod
	}
	if cfg.Amount > 0 {
		p.Amount = cfg.Amount
	}
	return p
}

func (p Policy) trialDays() int {
	return wholeDays(p.TrialPeriod)
}

func wholeDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
