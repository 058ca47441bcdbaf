// Package services implements the clinic's package ledger, order and
// discount workflows on top of gorm. Every mutating operation runs in a
// single transaction and takes the acting staff member as an argument.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/Govind-619/InfuseDesk/events"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Actor is the authenticated staff member performing an operation
type Actor struct {
	ID       uint
	Username string
	Role     models.Role
}

// ActorFromUser builds an Actor from a staff account
func ActorFromUser(u models.User) Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role}
}

// Name is how the actor appears in audit notes
func (a Actor) Name() string {
	if a.Username != "" {
		return a.Username
	}
	return "system"
}

// Clock returns the current time
type Clock func() time.Time

type base struct {
	db     *gorm.DB
	events events.Publisher
	now    Clock
}

func newBase(db *gorm.DB, pub events.Publisher) base {
	if pub == nil {
		pub = events.Noop{}
	}
	return base{db: db, events: pub, now: time.Now}
}

// SetClock replaces the time source, for tests
func (b *base) SetClock(c Clock) {
	b.now = c
}

// publish sends evs after commit. Delivery failures are logged, never returned.
func (b *base) publish(ctx context.Context, evs ...events.Event) {
	for _, ev := range evs {
		if err := b.events.Publish(ctx, ev); err != nil {
			utils.LogError("Failed to publish %s event: %v", ev.Type, err)
		}
	}
}

// lockForUpdate adds a row lock where the database supports one
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// paginate counts the rows matched by query into page and limits query to
// the requested page. A nil page returns query unchanged.
func paginate(query *gorm.DB, page *utils.Pagination) (*gorm.DB, error) {
	if page == nil {
		return query, nil
	}
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	page.SetTotal(total)
	return query.Offset(page.Offset).Limit(page.Limit), nil
}

// notFound maps gorm's missing-row error to sentinel
func notFound(err error, sentinel *Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
