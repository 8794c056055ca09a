package usecase

import (
	"context"
	"sync"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// Mock implementations

type fixedUser struct {
	user *domain.User
}

func (f *fixedUser) CurrentUser() *domain.User {
	if f.user == nil {
		return nil
	}
	u := *f.user
	return &u
}

func expert(id string) *fixedUser {
	return &fixedUser{user: &domain.User{ID: id, Name: "Expert " + id, Role: domain.RoleExpert}}
}

type mockConsultationRepo struct {
	mu      sync.Mutex
	list    []domain.Consultation
	listErr error
	listN   int

	updateErr error
	updates   []domain.ConsultationStatus

	// When gate is set UpdateStatus signals started and blocks until gate is closed
	started chan struct{}
	gate    chan struct{}
}

func (m *mockConsultationRepo) List(ctx context.Context) ([]domain.Consultation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listN++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Consultation, len(m.list))
	copy(out, m.list)
	return out, nil
}

func (m *mockConsultationRepo) UpdateStatus(ctx context.Context, id string, status domain.ConsultationStatus) error {
	m.mu.Lock()
	m.updates = append(m.updates, status)
	started, gate, err := m.started, m.gate, m.updateErr
	m.mu.Unlock()
	if gate != nil {
		started <- struct{}{}
		<-gate
	}
	if err == nil {
		err = ctx.Err()
	}
	return err
}

func (m *mockConsultationRepo) updateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.updates)
}

type mockNotifier struct {
	mu     sync.Mutex
	events []repo.CounterpartEvent
	err    error
}

func (m *mockNotifier) NotifyCounterpart(ctx context.Context, event repo.CounterpartEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

type mockMessageRepo struct {
	mu       sync.Mutex
	history  []domain.Message
	histErr  error
	histN    int
	sendErr  error
	sent     []string
	clientID []string

	// Optional gates for blocking History or Send
	histStarted chan struct{}
	histGate    chan struct{}
	sendStarted chan struct{}
	sendGate    chan struct{}
}

func (m *mockMessageRepo) History(ctx context.Context, consultationID string) ([]domain.Message, error) {
	m.mu.Lock()
	m.histN++
	started, gate := m.histStarted, m.histGate
	m.mu.Unlock()
	if gate != nil {
		started <- struct{}{}
		<-gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.histErr != nil {
		return nil, m.histErr
	}
	out := make([]domain.Message, len(m.history))
	copy(out, m.history)
	return out, nil
}

func (m *mockMessageRepo) Send(ctx context.Context, consultationID, text, clientMsgID string) error {
	m.mu.Lock()
	m.sent = append(m.sent, text)
	m.clientID = append(m.clientID, clientMsgID)
	started, gate, err := m.sendStarted, m.sendGate, m.sendErr
	m.mu.Unlock()
	if gate != nil {
		started <- struct{}{}
		<-gate
	}
	return err
}

func (m *mockMessageRepo) sendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockMessageRepo) historyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.histN
}

type mockDraftRepo struct {
	mu     sync.Mutex
	drafts map[string]string
}

func newMockDraftRepo() *mockDraftRepo {
	return &mockDraftRepo{drafts: make(map[string]string)}
}

func (m *mockDraftRepo) Get(ctx context.Context, consultationID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drafts[consultationID], nil
}

func (m *mockDraftRepo) Put(ctx context.Context, consultationID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if text == "" {
		delete(m.drafts, consultationID)
		return nil
	}
	m.drafts[consultationID] = text
	return nil
}

type mockUnreadRepo struct {
	mu       sync.Mutex
	total    int
	by       map[string]int
	totalErr error
	byErr    error
	calls    int
}

func (m *mockUnreadRepo) Total(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.total, m.totalErr
}

func (m *mockUnreadRepo) ByConsultation(ctx context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byErr != nil {
		return nil, m.byErr
	}
	out := make(map[string]int, len(m.by))
	for k, v := range m.by {
		out[k] = v
	}
	return out, nil
}

type mockAvailabilityRepo struct {
	mu      sync.Mutex
	stored  map[domain.Weekday]domain.PartialDay
	getErr  error
	saveErr error
	saved   []domain.Schedule
}

func (m *mockAvailabilityRepo) Get(ctx context.Context, expertID string) (map[domain.Weekday]domain.PartialDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.stored == nil {
		return nil, domain.ErrNotFound
	}
	return m.stored, nil
}

func (m *mockAvailabilityRepo) Save(ctx context.Context, expertID string, schedule domain.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, schedule.Clone())
	return m.saveErr
}

func (m *mockAvailabilityRepo) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

type mockNotificationRepo struct {
	mu         sync.Mutex
	page       *domain.NotificationPage
	listErr    error
	lastLimit  int
	markErr    error
	marked     []string
	markAllErr error
	markAllN   int
}

func (m *mockNotificationRepo) List(ctx context.Context, limit int) (*domain.NotificationPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	items := make([]domain.Notification, len(m.page.Notifications))
	copy(items, m.page.Notifications)
	return &domain.NotificationPage{Notifications: items, UnreadCount: m.page.UnreadCount}, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marked = append(m.marked, id)
	return m.markErr
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markAllN++
	return m.markAllErr
}

type mockSessionRepo struct {
	mu      sync.Mutex
	session *domain.LocalSession
	cleared int
}

func (m *mockSessionRepo) Load(ctx context.Context) (*domain.LocalSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	s := *m.session
	return &s, nil
}

func (m *mockSessionRepo) Save(ctx context.Context, session *domain.LocalSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *session
	m.session = &s
	return nil
}

func (m *mockSessionRepo) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.cleared++
	return nil
}

type mockAccountRepo struct {
	mu          sync.Mutex
	user        *domain.User
	meErr       error
	passwordErr error
	passwords   []string
	avatarURL   string
	avatars     []string
}

func (m *mockAccountRepo) Me(ctx context.Context) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meErr != nil {
		return nil, m.meErr
	}
	u := *m.user
	return &u, nil
}

func (m *mockAccountRepo) ChangePassword(ctx context.Context, current, next string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passwords = append(m.passwords, next)
	return m.passwordErr
}

func (m *mockAccountRepo) UploadAvatar(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.avatars = append(m.avatars, filename)
	return m.avatarURL, nil
}

type tokenRecorder struct {
	mu    sync.Mutex
	token string
}

func (t *tokenRecorder) SetToken(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
}

func (t *tokenRecorder) get() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}
