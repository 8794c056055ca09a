package data

import (
	"context"
	"errors"

	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// multiNotifier fans a counterpart event out to every configured channel
type multiNotifier struct {
	notifiers []repo.Notifier
}

// NewMultiNotifier combines notifiers; nil entries are skipped
func NewMultiNotifier(notifiers ...repo.Notifier) repo.Notifier {
	m := &multiNotifier{}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// NotifyCounterpart delivers to every channel and joins the failures
func (m *multiNotifier) NotifyCounterpart(ctx context.Context, event repo.CounterpartEvent) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.NotifyCounterpart(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
