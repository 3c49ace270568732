package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/loan-service/internal/domain"
	"github.com/spec-kit/loan-service/internal/repository"
)

// memStore is an in-memory stand-in for the Postgres repositories.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]domain.User
	invites map[int64]domain.InviteCode
	apps    map[int64]domain.LoanApplication
	notes   []domain.LoanApplicationNote

	// beforeTransition runs just before a conditional status write.
	beforeTransition func()
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[int64]domain.User{},
		invites: map[int64]domain.InviteCode{},
		apps:    map[int64]domain.LoanApplication{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) repositories() repository.Repositories {
	return repository.Repositories{
		Users:            memUsers{m},
		InviteCodes:      memInvites{m},
		LoanApplications: memApps{m},
	}
}

func (m *memStore) WithinTx(_ context.Context, fn func(repository.Repositories) error) error {
	return fn(m.repositories())
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	user.ID = r.m.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.m.users[user.ID] = *user
	return nil
}

func (r memUsers) Update(_ context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, u := range r.m.users {
		if u.ID != user.ID && strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now()
	r.m.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memUsers) List(_ context.Context) ([]domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	users := make([]domain.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type memInvites struct{ m *memStore }

func (r memInvites) Create(_ context.Context, invite *domain.InviteCode) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, i := range r.m.invites {
		if strings.EqualFold(i.Email, invite.Email) {
			return repository.ErrDuplicate
		}
	}
	invite.ID = r.m.id()
	invite.CreatedAt = time.Now()
	r.m.invites[invite.ID] = *invite
	return nil
}

func (r memInvites) GetByEmail(_ context.Context, email string) (*domain.InviteCode, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, i := range r.m.invites {
		if strings.EqualFold(i.Email, email) {
			return &i, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memInvites) GetByCodeForUpdate(_ context.Context, code uuid.UUID) (*domain.InviteCode, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, i := range r.m.invites {
		if i.Code == code {
			return &i, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memInvites) MarkUsed(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i, ok := r.m.invites[id]
	if !ok || i.IsUsed {
		return pgx.ErrNoRows
	}
	i.IsUsed = true
	r.m.invites[id] = i
	return nil
}

type memApps struct{ m *memStore }

func (r memApps) Create(_ context.Context, app *domain.LoanApplication) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	app.ID = r.m.id()
	app.AppliedAt = time.Now()
	r.m.apps[app.ID] = *app
	return nil
}

func (r memApps) GetByID(_ context.Context, id int64) (*domain.LoanApplication, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	app, ok := r.m.apps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &app, nil
}

func (r memApps) list(keep func(domain.LoanApplication) bool) []domain.LoanApplication {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := []domain.LoanApplication{}
	for _, app := range r.m.apps {
		if keep(app) {
			result = append(result, app)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}

func (r memApps) ListAll(_ context.Context) ([]domain.LoanApplication, error) {
	return r.list(func(domain.LoanApplication) bool { return true }), nil
}

func (r memApps) ListByUser(_ context.Context, userID int64) ([]domain.LoanApplication, error) {
	return r.list(func(app domain.LoanApplication) bool { return app.UserID == userID }), nil
}

func (r memApps) UpdateFields(_ context.Context, app *domain.LoanApplication) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.apps[app.ID]
	if !ok || stored.UserID != app.UserID || stored.Status != domain.StatusPending {
		return false, nil
	}
	stored.Amount, stored.TermMonths, stored.Purpose = app.Amount, app.TermMonths, app.Purpose
	r.m.apps[app.ID] = stored
	return true, nil
}

func (r memApps) TransitionStatus(_ context.Context, id int64, from, to domain.LoanApplicationStatus) (bool, error) {
	if hook := r.m.beforeTransition; hook != nil {
		hook()
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.apps[id]
	if !ok || stored.Status != from {
		return false, nil
	}
	stored.Status = to
	r.m.apps[id] = stored
	return true, nil
}

func (r memApps) AggregateByStatus(_ context.Context, start, end time.Time) ([]domain.StatusAggregate, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	byStatus := map[domain.LoanApplicationStatus]*domain.StatusAggregate{}
	for _, app := range r.m.apps {
		if app.AppliedAt.Before(start) || app.AppliedAt.After(end) {
			continue
		}
		agg, ok := byStatus[app.Status]
		if !ok {
			agg = &domain.StatusAggregate{Status: app.Status}
			byStatus[app.Status] = agg
		}
		agg.Count++
		agg.Amount += app.Amount
	}
	result := []domain.StatusAggregate{}
	for _, agg := range byStatus {
		result = append(result, *agg)
	}
	return result, nil
}

func (r memApps) AddNote(_ context.Context, note *domain.LoanApplicationNote) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	note.ID = r.m.id()
	note.SentAt = time.Now()
	r.m.notes = append(r.m.notes, *note)
	return nil
}

func (r memApps) ListNotes(_ context.Context, loanApplicationID int64) ([]domain.LoanApplicationNote, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	notes := []domain.LoanApplicationNote{}
	for _, n := range r.m.notes {
		if n.LoanApplicationID == loanApplicationID {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

// memSessions records session markers.
type memSessions struct {
	mu     sync.Mutex
	active map[string]int64
}

func newMemSessions() *memSessions {
	return &memSessions{active: map[string]int64{}}
}

func (s *memSessions) Register(_ context.Context, token domain.IssuedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[token.TokenID] = token.UserID
	return nil
}

func (s *memSessions) IsActive(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[tokenID]
	return ok, nil
}

func (s *memSessions) Revoke(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, tokenID)
	return nil
}

type sentNotification struct {
	LoanApplicationID int64
	RecipientID       int64
	Message           string
}

// recordingNotifier captures notification attempts and can be told to fail.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) SendNotification(_ context.Context, loanApplicationID, recipientID int64, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{loanApplicationID, recipientID, message})
	return n.err
}
