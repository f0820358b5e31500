// Package team manages the organisation's member roster.
package team

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/eventbus"
)

var (
	ErrNotFound          = errors.New("member not found")
	ErrInvitesDisabled   = errors.New("plan does not allow inviting members")
	ErrDuplicateEmail    = errors.New("a member with this email already exists")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrOwner             = errors.New("the account owner cannot be changed")
	ErrInvalidTransition = errors.New("member status does not allow this action")
)

// Role is a member's permission level.
type Role string

const (
	Owner  Role = "owner"
	Admin  Role = "admin"
	Member Role = "member"
)

// Status is a member's lifecycle state.
type Status string

const (
	Active    Status = "active"
	Invited   Status = "invited"
	Suspended Status = "suspended"
)

// User is one team member and their usage this period.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	Status      Status    `json:"status"`
	TokensUsed  int64     `json:"tokens_used"`
	CreditsUsed float64   `json:"credits_used"`
	LastActive  time.Time `json:"last_active,omitzero"`
}

// Roster is the member list. Seat checks use the billing seat policy; an
// outstanding invite holds a seat.
type Roster struct {
	mu      sync.RWMutex
	members []User
	bus     *eventbus.Bus
	logger  *slog.Logger
}

// NewRoster copies members into a roster.
func NewRoster(members []User, bus *eventbus.Bus, logger *slog.Logger) *Roster {
	return &Roster{
		members: slices.Clone(members),
		bus:     bus,
		logger:  logger.With("component", "team"),
	}
}

// List returns a copy of all members.
func (r *Roster) List() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.members)
}

// Get returns the member with id.
func (r *Roster) Get(id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return User{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.members[i], nil
}

// SeatsUsed counts active and invited members.
func (r *Roster) SeatsUsed() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seatsUsedLocked()
}

func (r *Roster) seatsUsedLocked() int {
	n := 0
	for _, m := range r.members {
		if m.Status != Suspended {
			n++
		}
	}
	return n
}

// FitSeats returns members trimmed to what sub allows. Plans without
// invites keep the owner and suspended members only; other plans keep
// everyone, billing extra seats where needed.
func FitSeats(sub billing.Subscription, members []User) []User {
	if billing.SeatPolicy(sub, 0).CanInvite {
		return slices.Clone(members)
	}
	out := make([]User, 0, len(members))
	for _, m := range members {
		if m.Role == Owner || m.Status == Suspended {
			out = append(out, m)
		}
	}
	return out
}

// Invite adds an invited member if the plan allows it.
func (r *Roster) Invite(sub billing.Subscription, name, email string, role Role) (User, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return User{}, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if role == "" || role == Owner {
		role = Member
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if strings.EqualFold(m.Email, addr.Address) {
			return User{}, fmt.Errorf("%w: %s", ErrDuplicateEmail, addr.Address)
		}
	}
	seat := billing.SeatPolicy(sub, r.seatsUsedLocked())
	if !seat.CanInvite {
		return User{}, ErrInvitesDisabled
	}

	u := User{
		ID:     "usr_" + uuid.NewString()[:8],
		Name:   cmp.Or(strings.TrimSpace(name), addr.Name, addr.Address),
		Email:  addr.Address,
		Role:   role,
		Status: Invited,
	}
	r.members = append(r.members, u)
	r.logger.Info("member invited", "email", u.Email, "role", u.Role, "extra_seat", seat.NextIsPaid)
	r.bus.PublishType(eventbus.MemberChanged, u)
	return u, nil
}

// Suspend blocks an active or invited member.
func (r *Roster) Suspend(id string) (User, error) {
	return r.transition(id, "member suspended", func(u *User) error {
		if u.Status == Suspended {
			return ErrInvalidTransition
		}
		u.Status = Suspended
		return nil
	})
}

// Reactivate restores a suspended member. The member takes a seat again, so
// the plan must allow one more like an invite does.
func (r *Roster) Reactivate(sub billing.Subscription, id string) (User, error) {
	return r.transition(id, "member reactivated", func(u *User) error {
		if u.Status != Suspended {
			return ErrInvalidTransition
		}
		if !billing.SeatPolicy(sub, r.seatsUsedLocked()).CanInvite {
			return ErrInvitesDisabled
		}
		u.Status = Active
		return nil
	})
}

// Accept marks an invite as accepted.
func (r *Roster) Accept(id string, at time.Time) (User, error) {
	return r.transition(id, "invite accepted", func(u *User) error {
		if u.Status != Invited {
			return ErrInvalidTransition
		}
		u.Status = Active
		u.LastActive = at
		return nil
	})
}

// SetRole changes a member's role.
func (r *Roster) SetRole(id string, role Role) (User, error) {
	return r.transition(id, "member role changed", func(u *User) error {
		if role == Owner {
			return ErrOwner
		}
		u.Role = role
		return nil
	})
}

// Remove deletes a member.
func (r *Roster) Remove(id string) error {
	r.mu.Lock()
	i := r.index(id)
	if i < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	u := r.members[i]
	if u.Role == Owner {
		r.mu.Unlock()
		return ErrOwner
	}
	r.members = slices.Delete(r.members, i, i+1)
	r.mu.Unlock()

	r.logger.Info("member removed", "email", u.Email)
	r.bus.PublishType(eventbus.MemberChanged, map[string]string{"id": u.ID, "removed": "true"})
	return nil
}

func (r *Roster) transition(id, msg string, fn func(*User) error) (User, error) {
	r.mu.Lock()
	i := r.index(id)
	if i < 0 {
		r.mu.Unlock()
		return User{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	u := r.members[i]
	if u.Role == Owner {
		r.mu.Unlock()
		return User{}, ErrOwner
	}
	if err := fn(&u); err != nil {
		r.mu.Unlock()
		return User{}, fmt.Errorf("%s %s: %w", msg, id, err)
	}
	r.members[i] = u
	r.mu.Unlock()

	r.logger.Info(msg, "email", u.Email, "status", u.Status, "role", u.Role)
	r.bus.PublishType(eventbus.MemberChanged, u)
	return u, nil
}

func (r *Roster) index(id string) int {
	return slices.IndexFunc(r.members, func(u User) bool { return u.ID == id })
}

// Usage is the team's consumption total and each member's share.
type Usage struct {
	Tokens  int64              `json:"tokens"`
	Credits float64            `json:"credits"`
	Shares  map[string]float64 `json:"shares"` // member id → fraction of credits
}

// Consumption totals usage across members.
func (r *Roster) Consumption() Usage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u := Usage{Shares: make(map[string]float64, len(r.members))}
	for _, m := range r.members {
		u.Tokens += m.TokensUsed
		u.Credits += m.CreditsUsed
	}
	for _, m := range r.members {
		if u.Credits > 0 {
			u.Shares[m.ID] = m.CreditsUsed / u.Credits
		}
	}
	return u
}
