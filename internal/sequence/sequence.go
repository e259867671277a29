// Package sequence issues human-readable ids numbered per calendar day,
// such as "direct-refund-08.28-3" for the third refund of August 28th.
package sequence

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"
)

const (
	dayKeyLayout   = "2006-01-02"
	datePartLayout = "01.02"
)

// CounterStore provides the persistent per-day counters backing a Generator.
type CounterStore interface {
	IncrementDailyCounter(ctx context.Context, day string) (int, error)
}

type Generator struct {
	counters CounterStore
}

func NewGenerator(counters CounterStore) *Generator {
	return &Generator{counters: counters}
}

// Next allocates the next id for the scope on the given day. Counters reset
// implicitly because each day has its own key. If the counter store fails,
// Next falls back to a random suffix so the caller can still proceed; the
// fallback id carries an "err" marker and is logged.
func (g *Generator) Next(ctx context.Context, scope string, now time.Time) string {
	datePart := now.Format(datePartLayout)
	n, err := g.counters.IncrementDailyCounter(ctx, now.Format(dayKeyLayout))
	if err != nil {
		log.Printf("sequence: counter increment failed for scope %s: %v", scope, err)
		return fmt.Sprintf("%s-%s-err-%s", scope, datePart, randomSuffix(6))
	}
	return fmt.Sprintf("%s-%s-%d", scope, datePart, n)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomSuffix(length int) string {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(base36)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			buf[i] = base36[time.Now().UnixNano()%int64(len(base36))]
			continue
		}
		buf[i] = base36[n.Int64()]
	}
	return string(buf)
}
