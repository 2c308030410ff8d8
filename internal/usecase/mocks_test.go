package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/repository"
)

type userRepoMock struct {
	user domain.User

	passwordUpdated bool
	updatedHash     string
	recoveryWrites  int
}

func (m *userRepoMock) Create(context.Context, domain.User) error {
	return errors.New("unexpected call: Create")
}

func (m *userRepoMock) GetByID(_ context.Context, id string) (*domain.User, error) {
	if m.user.ID == "" || m.user.ID != id {
		return nil, repository.ErrNotFound
	}
	copy := m.user
	return &copy, nil
}

func (m *userRepoMock) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.user.Email == "" || !strings.EqualFold(m.user.Email, email) {
		return nil, repository.ErrNotFound
	}
	copy := m.user
	return &copy, nil
}

func (m *userRepoMock) List(context.Context, port.UserFilter, port.Page) ([]domain.User, int, error) {
	return nil, 0, errors.New("unexpected call: List")
}

func (m *userRepoMock) Update(context.Context, domain.User) error {
	return errors.New("unexpected call: Update")
}

func (m *userRepoMock) SoftDelete(context.Context, string) error {
	return errors.New("unexpected call: SoftDelete")
}

func (m *userRepoMock) EmailInUse(context.Context, string, string) (bool, error) {
	return false, errors.New("unexpected call: EmailInUse")
}

func (m *userRepoMock) CPFInUse(context.Context, string, string) (bool, error) {
	return false, errors.New("unexpected call: CPFInUse")
}

func (m *userRepoMock) UpdatePassword(_ context.Context, id, passwordHash string) error {
	if m.user.ID != id {
		return repository.ErrNotFound
	}
	m.passwordUpdated = true
	m.updatedHash = passwordHash
	m.user.PasswordHash = passwordHash
	return nil
}

func (m *userRepoMock) UpdateRecoveryState(_ context.Context, user domain.User) error {
	if m.user.ID != user.ID {
		return repository.ErrNotFound
	}
	m.recoveryWrites++
	m.user.RecoverPasswordCode = user.RecoverPasswordCode
	m.user.RecoverPasswordCodeCheck = user.RecoverPasswordCodeCheck
	m.user.RecoverPasswordCodeAttempts = user.RecoverPasswordCodeAttempts
	m.user.RecoverPasswordAttempts = user.RecoverPasswordAttempts
	return nil
}

func (m *userRepoMock) AssignRoles(context.Context, string, []domain.Role) error {
	return errors.New("unexpected call: AssignRoles")
}

type tokenRepoMock struct {
	tokens map[string]domain.AuthToken

	created []domain.AuthToken
	deleted []string
	touched map[string]time.Time
}

func newTokenRepoMock(seed ...domain.AuthToken) *tokenRepoMock {
	m := &tokenRepoMock{
		tokens:  make(map[string]domain.AuthToken),
		touched: make(map[string]time.Time),
	}
	for _, t := range seed {
		m.tokens[t.ID] = t
	}
	return m
}

func (m *tokenRepoMock) GetByKey(_ context.Context, key string) (*domain.AuthToken, error) {
	for _, t := range m.tokens {
		if t.Key == key {
			copy := t
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *tokenRepoMock) GetByUserID(_ context.Context, userID string) (*domain.AuthToken, error) {
	for _, t := range m.tokens {
		if t.UserID == userID {
			copy := t
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *tokenRepoMock) Create(_ context.Context, token domain.AuthToken) error {
	m.tokens[token.ID] = token
	m.created = append(m.created, token)
	return nil
}

func (m *tokenRepoMock) Touch(_ context.Context, id string, createdAt time.Time) error {
	t, ok := m.tokens[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.CreatedAt = createdAt
	m.tokens[id] = t
	m.touched[id] = createdAt
	return nil
}

func (m *tokenRepoMock) Delete(_ context.Context, id string) error {
	if _, ok := m.tokens[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tokens, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *tokenRepoMock) DeleteByUserID(_ context.Context, userID string) error {
	for id, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, id)
			m.deleted = append(m.deleted, id)
		}
	}
	return nil
}

type rateLimitMock struct {
	counts   map[string]int
	recorded map[string]int
}

func newRateLimitMock() *rateLimitMock {
	return &rateLimitMock{
		counts:   make(map[string]int),
		recorded: make(map[string]int),
	}
}

func (m *rateLimitMock) TrimWindow(context.Context, string, time.Duration, time.Time) error {
	return nil
}

func (m *rateLimitMock) CountAttempts(_ context.Context, identifier string, _ time.Duration, _ time.Time) (int, error) {
	return m.counts[identifier], nil
}

func (m *rateLimitMock) RecordAttempt(_ context.Context, identifier string, _ time.Time) error {
	m.recorded[identifier]++
	m.counts[identifier]++
	return nil
}

func (m *rateLimitMock) OldestAttempt(context.Context, string, time.Duration, time.Time) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

type eventPublisherMock struct {
	recoveryRequested []domain.PasswordRecoveryRequestedEvent
	passwordChanged   []domain.PasswordChangedEvent
	producerCreated   []domain.ProducerRegisteredEvent
	archived          []domain.RecordArchivedEvent
}

func (m *eventPublisherMock) PublishPasswordRecoveryRequested(_ context.Context, event domain.PasswordRecoveryRequestedEvent) error {
	m.recoveryRequested = append(m.recoveryRequested, event)
	return nil
}

func (m *eventPublisherMock) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	m.passwordChanged = append(m.passwordChanged, event)
	return nil
}

func (m *eventPublisherMock) PublishProducerRegistered(_ context.Context, event domain.ProducerRegisteredEvent) error {
	m.producerCreated = append(m.producerCreated, event)
	return nil
}

func (m *eventPublisherMock) PublishRecordArchived(_ context.Context, event domain.RecordArchivedEvent) error {
	m.archived = append(m.archived, event)
	return nil
}

type notifierMock struct {
	sent chan string
}

func newNotifierMock() *notifierMock {
	return &notifierMock{sent: make(chan string, 4)}
}

func (m *notifierMock) SendRecoveryCode(_ context.Context, _ domain.User, code string) error {
	m.sent <- code
	return nil
}

type policyMock struct {
	err error
}

func (m *policyMock) Validate(string, domain.PasswordContext) error {
	return m.err
}
