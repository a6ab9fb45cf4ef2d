// Package memory реализует хранилище SafeZone в памяти процесса.
//
// Используется в тестах и при запуске с драйвером "memory". Каждая операция
// выполняется под одной блокировкой, что соответствует атомарной записи
// одного документа в основном хранилище.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/magabrotheeeer/safezone/internal/models"
	"github.com/magabrotheeeer/safezone/internal/storage"
)

// Store хранит все коллекции в памяти.
type Store struct {
	mu            sync.RWMutex
	users         map[string]models.User
	subscriptions map[string]models.Subscription
	alerts        map[string]models.Alert
	notifications []models.EmergencyNotification
	helpMessages  map[string]models.HelpMessage
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		users:         make(map[string]models.User),
		subscriptions: make(map[string]models.Subscription),
		alerts:        make(map[string]models.Alert),
		helpMessages:  make(map[string]models.HelpMessage),
	}
}

// Ping всегда успешен.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close ничего не освобождает.
func (s *Store) Close() error { return nil }

// ===== USERS =====

// CreateUser сохраняет пользователя; email должен быть уникальным.
func (s *Store) CreateUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return storage.ErrDuplicate
		}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

// UpdateUserAccess меняет флаги администратора и VIP.
func (s *Store) UpdateUserAccess(_ context.Context, id string, upd models.AccessUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.IsAdmin = upd.IsAdmin
	u.IsVIP = upd.IsVIP
	u.VIPExpiresAt = cloneTime(upd.VIPExpiresAt)
	s.users[id] = u
	return nil
}

// FindNeighbours возвращает ID жителей той же улицы, кроме excludeUserID.
func (s *Store) FindNeighbours(_ context.Context, addr models.Address, excludeUserID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0)
	for _, u := range s.users {
		if u.ID != excludeUserID && u.Address.SameStreet(addr) {
			ids = append(ids, u.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ListUsers возвращает всех пользователей, новые первыми.
func (s *Store) ListUsers(_ context.Context) ([]*models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.UserSummary, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, &models.UserSummary{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Neighborhood: u.Neighborhood,
			IsAdmin:      u.IsAdmin,
			IsVIP:        u.IsVIP,
			CreatedAt:    u.CreatedAt,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// ===== SUBSCRIPTIONS =====

// CreateSubscription сохраняет подписку, если у пользователя нет незавершённой.
func (s *Store) CreateSubscription(_ context.Context, sub models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !sub.Status.Terminal() {
		if _, ok := s.openSubscriptionLocked(sub.UserID); ok {
			return storage.ErrDuplicate
		}
	}
	s.subscriptions[sub.ID] = cloneSubscription(sub)
	return nil
}

// GetOpenSubscription возвращает незавершённую подписку пользователя.
func (s *Store) GetOpenSubscription(_ context.Context, userID string) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.openSubscriptionLocked(userID)
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := cloneSubscription(sub)
	return &c, nil
}

// GetSubscription возвращает подписку по ID, если она принадлежит userID.
func (s *Store) GetSubscription(_ context.Context, id, userID string) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[id]
	if !ok || sub.UserID != userID {
		return nil, storage.ErrNotFound
	}
	c := cloneSubscription(sub)
	return &c, nil
}

// UpdateSubscription применяет изменение к подписке. Условное изменение,
// чьё условие не выполнено, молча пропускается.
func (s *Store) UpdateSubscription(_ context.Context, id string, upd models.SubscriptionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[id]
	if !ok {
		return storage.ErrNotFound
	}
	if !upd.Matches(&sub) {
		return nil
	}
	if upd.Status != "" && !upd.Status.Terminal() && sub.Status.Terminal() {
		if other, ok := s.openSubscriptionLocked(sub.UserID); ok && other.ID != id {
			return storage.ErrDuplicate
		}
	}
	upd.Apply(&sub)
	s.subscriptions[id] = cloneSubscription(sub)
	return nil
}

func (s *Store) openSubscriptionLocked(userID string) (models.Subscription, bool) {
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && !sub.Status.Terminal() {
			return sub, true
		}
	}
	return models.Subscription{}, false
}

// ===== ALERTS =====

// CreateAlert сохраняет тревогу.
func (s *Store) CreateAlert(_ context.Context, alert models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[alert.ID] = alert
	return nil
}

// CreateNotification сохраняет запись рассылки.
func (s *Store) CreateNotification(_ context.Context, n models.EmergencyNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.TargetUsers = slices.Clone(n.TargetUsers)
	s.notifications = append(s.notifications, n)
	return nil
}

// Notifications возвращает копию всех записей рассылки.
func (s *Store) Notifications() []models.EmergencyNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notifications)
}

// ListActiveAlerts возвращает активные тревоги улицы, новые первыми, не более limit.
func (s *Store) ListActiveAlerts(_ context.Context, addr models.Address, limit int) ([]*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.Alert, 0)
	for _, a := range s.alerts {
		if a.IsActive && a.Address.SameStreet(addr) {
			c := a
			result = append(result, &c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// DeactivateAlert выключает активную тревогу, если её создал userID.
func (s *Store) DeactivateAlert(_ context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok || a.UserID != userID || !a.IsActive {
		return false, nil
	}
	a.IsActive = false
	s.alerts[id] = a
	return true, nil
}

// ===== HELP MESSAGES =====

// CreateHelpMessage сохраняет обращение.
func (s *Store) CreateHelpMessage(_ context.Context, m models.HelpMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.helpMessages[m.ID] = m
	return nil
}

// ListHelpMessages возвращает все обращения, новые первыми.
func (s *Store) ListHelpMessages(_ context.Context) ([]*models.HelpMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.HelpMessage, 0, len(s.helpMessages))
	for _, m := range s.helpMessages {
		c := m
		result = append(result, &c)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// RespondHelpMessage сохраняет ответ администратора и закрывает обращение.
func (s *Store) RespondHelpMessage(_ context.Context, id, response string, resolvedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.helpMessages[id]
	if !ok {
		return false, nil
	}
	m.AdminResponse = &response
	m.Status = models.HelpResolved
	m.ResolvedAt = &resolvedAt
	s.helpMessages[id] = m
	return true, nil
}

// ===== STATS =====

// Stats считает сводку для панели администратора.
func (s *Store) Stats(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := models.Stats{
		TotalUsers:         len(s.users),
		TotalSubscriptions: len(s.subscriptions),
		TotalAlerts:        len(s.alerts),
	}
	for _, sub := range s.subscriptions {
		switch sub.Status {
		case models.StatusActive:
			st.ActiveSubscriptions++
		case models.StatusTrial:
			st.TrialSubscriptions++
		case models.StatusBlocked:
			st.BlockedSubscriptions++
		}
	}
	for _, m := range s.helpMessages {
		if m.Status == models.HelpPending {
			st.PendingHelpMessages++
		}
	}
	return st, nil
}

func cloneUser(u models.User) models.User {
	u.ResidentNames = slices.Clone(u.ResidentNames)
	u.VIPExpiresAt = cloneTime(u.VIPExpiresAt)
	return u
}

func cloneSubscription(sub models.Subscription) models.Subscription {
	sub.PaymentDueDate = cloneTime(sub.PaymentDueDate)
	sub.GracePeriodEnd = cloneTime(sub.GracePeriodEnd)
	sub.LastPaymentDate = cloneTime(sub.LastPaymentDate)
	sub.BlockedAt = cloneTime(sub.BlockedAt)
	sub.CancelledAt = cloneTime(sub.CancelledAt)
	return sub
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
