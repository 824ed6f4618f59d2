// Package autorelease периодически закрывает просроченные заказы: доставленные
// без подтверждения покупателя рассчитываются в пользу продавца, зависшие
// дольше абсолютного потолка закрываются с возвратом средств.
package autorelease

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/savelyev-an/packmart/internal/domain"
)

const (
	defaultSweepInterval      = 5 * time.Minute
	defaultPerOrderTimeout    = 3 * time.Second
	defaultProduceTimeout     = 3 * time.Second
	defaultLimitPerSweep uint = 100
)

// Processor обходит просроченные заказы. Каждый заказ обрабатывается
// независимо: ошибка одного не останавливает проход, сам переход race-safe
// и идемпотентен на стороне сервиса.
type Processor struct {
	svs           Servicer
	l             *logrus.Entry
	sweepInterval time.Duration
	limitPerSweep uint
}

// New создает новый экземпляр процессора авторелиза.
func New(svs Servicer, l *logrus.Logger) *Processor {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "autorelease",
		"module":    "processor",
	})

	return &Processor{
		svs:           svs,
		l:             loggerEntry,
		sweepInterval: defaultSweepInterval,
		limitPerSweep: defaultLimitPerSweep,
	}
}

// SetSweepInterval устанавливает период между проходами. Период должен быть
// существенно меньше окна авторелиза.
func (p *Processor) SetSweepInterval(interval time.Duration) *Processor {
	p.sweepInterval = interval
	return p
}

// SetLimitPerSweep устанавливает кол-во заказов, обрабатываемых за один проход.
func (p *Processor) SetLimitPerSweep(limit uint) *Processor {
	p.limitPerSweep = limit
	return p
}

// Run запускает циклы проходов до отмены контекста. Первый проход выполняется
// сразу, не дожидаясь первого тика.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"sweepInterval": p.sweepInterval.String(),
		"limitPerSweep": p.limitPerSweep,
	}).Info("Starting")

	ticker := time.NewTicker(p.sweepInterval)
	defer ticker.Stop()

	p.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

// sweep один проход: авторелиз доставленных заказов с истекшим окном, затем
// закрытие заказов старше абсолютного потолка. Неудачные заказы логируются
// и откладываются до следующего прохода.
func (p *Processor) sweep(ctx context.Context) {
	due, dueErr := p.produceDue(ctx)
	if dueErr != nil {
		if !errors.Is(dueErr, ErrNoOrders) {
			p.l.WithError(dueErr).Error("listing orders due for auto-release")
		}
	} else {
		p.processEach(ctx, due, "auto-release", p.svs.AutoRelease)
	}

	expired, expErr := p.produceExpired(ctx)
	if expErr != nil {
		if !errors.Is(expErr, ErrNoOrders) {
			p.l.WithError(expErr).Error("listing expired orders")
		}
		return
	}
	p.processEach(ctx, expired, "timeout", p.svs.Timeout)
}

// processEach прогоняет fn по заказам с ограничением времени на заказ.
func (p *Processor) processEach(
	ctx context.Context,
	orders []domain.Order,
	action string,
	fn func(ctx context.Context, orderID int64) error,
) {
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		default:
		}

		orderCtx, cancel := context.WithTimeout(ctx, defaultPerOrderTimeout)
		err := fn(orderCtx, order.ID)
		cancel()

		l := p.l.WithFields(logrus.Fields{
			"action":  action,
			"orderID": order.ID,
		})
		if err != nil {
			// заказ вернется в выборку следующего прохода.
			l.WithError(err).Error("processing order")
			continue
		}
		l.Debug("processed")
	}
}

func (p *Processor) produceDue(ctx context.Context) ([]domain.Order, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultProduceTimeout)
	defer cancel()

	orders, err := p.svs.DueForAutoRelease(produceCtx, p.limitPerSweep)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}
	return orders, nil
}

func (p *Processor) produceExpired(ctx context.Context) ([]domain.Order, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultProduceTimeout)
	defer cancel()

	orders, err := p.svs.ExpiredOrders(produceCtx, p.limitPerSweep)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}
	return orders, nil
}
