// Package memory is an in-process implementation of the repositories,
// used by the use case and handler tests in place of Postgres.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BruksfildServices01/barber-loyalty/internal/domain"
	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	catalogdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/catalog"
	userdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/user"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/push"
)

type state struct {
	users        map[uint]models.User
	barbers      map[uint]models.Barber
	services     map[uint]models.Service
	products     map[uint]models.Product
	appointments map[uint]models.Appointment
	hours        map[uint][]models.WorkingHours
	blocks       map[uint]models.BlockedSlot
	pushSubs     map[string]models.PushSubscription
	nextID       uint
}

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

func NewStore() *Store {
	return &Store{st: &state{
		users:        map[uint]models.User{},
		barbers:      map[uint]models.Barber{},
		services:     map[uint]models.Service{},
		products:     map[uint]models.Product{},
		appointments: map[uint]models.Appointment{},
		hours:        map[uint][]models.WorkingHours{},
		blocks:       map[uint]models.BlockedSlot{},
		pushSubs:     map[string]models.PushSubscription{},
	}}
}

func (s *Store) id() uint {
	s.st.nextID++
	return s.st.nextID
}

// WithinTx serializes transactions. When fn fails, only the writes fn
// made are undone; writes from outside the transaction are kept.
func (s *Store) WithinTx(ctx context.Context, fn func(tx apdomain.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txStore{Store: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// txStore journals the writes of one transaction so they can be undone.
type txStore struct {
	*Store
	undo []func(*state)
}

func (t *txStore) rollback() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i](t.st)
	}
	t.undo = nil
}

func (t *txStore) journal(fn func(*state)) {
	t.undo = append(t.undo, fn)
}

func restore[V any](m map[uint]V, id uint, prev V, existed bool) {
	if existed {
		m[id] = prev
		return
	}
	delete(m, id)
}

func (t *txStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := t.Store.CreateUser(ctx, u); err != nil {
		return err
	}
	id := u.ID
	t.journal(func(st *state) { delete(st.users, id) })
	return nil
}

func (t *txStore) SaveUser(ctx context.Context, u *models.User) error {
	t.mu.RLock()
	prev, existed := t.st.users[u.ID]
	t.mu.RUnlock()

	if err := t.Store.SaveUser(ctx, u); err != nil {
		return err
	}
	id := u.ID
	t.journal(func(st *state) { restore(st.users, id, prev, existed) })
	return nil
}

func (t *txStore) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	if err := t.Store.CreateAppointment(ctx, ap); err != nil {
		return err
	}
	id := ap.ID
	t.journal(func(st *state) { delete(st.appointments, id) })
	return nil
}

func (t *txStore) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	t.mu.RLock()
	prev, existed := t.st.appointments[ap.ID]
	t.mu.RUnlock()

	if err := t.Store.UpdateAppointment(ctx, ap); err != nil {
		return err
	}
	id := ap.ID
	t.journal(func(st *state) { restore(st.appointments, id, prev, existed) })
	return nil
}

func (t *txStore) DeleteAppointment(ctx context.Context, id uint) error {
	t.mu.RLock()
	prev, existed := t.st.appointments[id]
	t.mu.RUnlock()

	if err := t.Store.DeleteAppointment(ctx, id); err != nil {
		return err
	}
	t.journal(func(st *state) { restore(st.appointments, id, prev, existed) })
	return nil
}

func (t *txStore) CreateBlockedSlot(ctx context.Context, b *models.BlockedSlot) error {
	if err := t.Store.CreateBlockedSlot(ctx, b); err != nil {
		return err
	}
	id := b.ID
	t.journal(func(st *state) { delete(st.blocks, id) })
	return nil
}

func (t *txStore) DeleteBlockedSlot(ctx context.Context, id uint) error {
	t.mu.RLock()
	prev, existed := t.st.blocks[id]
	t.mu.RUnlock()

	if err := t.Store.DeleteBlockedSlot(ctx, id); err != nil {
		return err
	}
	t.journal(func(st *state) { restore(st.blocks, id, prev, existed) })
	return nil
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (s *Store) GetByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.st.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserForUpdate(ctx context.Context, id uint) (*models.User, error) {
	return s.GetByID(ctx, id)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username = strings.TrimSpace(username)
	for _, u := range s.sortedUsers() {
		if username != "" && u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) FindByContact(ctx context.Context, phone, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	phone = strings.TrimSpace(phone)
	email = strings.ToLower(strings.TrimSpace(email))

	users := s.sortedUsers()
	if phone != "" {
		for _, u := range users {
			if u.Phone == phone {
				return &u, nil
			}
		}
	}
	if email != "" {
		for _, u := range users {
			if strings.ToLower(u.Email) == email {
				return &u, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) FindUserByContact(ctx context.Context, phone, email string) (*models.User, error) {
	return s.FindByContact(ctx, phone, email)
}

func (s *Store) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.assertUsernameFree(u); err != nil {
		return err
	}

	u.ID = s.id()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	if u.Role == "" {
		u.Role = models.RoleClient
	}
	s.st.users[u.ID] = *u
	return nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.Create(ctx, u)
}

func (s *Store) Save(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.assertUsernameFree(u); err != nil {
		return err
	}

	u.UpdatedAt = time.Now()
	s.st.users[u.ID] = *u
	return nil
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	return s.Save(ctx, u)
}

func (s *Store) assertUsernameFree(u *models.User) error {
	if u.Username == "" {
		return nil
	}
	for id, other := range s.st.users {
		if id != u.ID && other.Username == u.Username {
			return httperr.ErrBusiness("username_taken")
		}
	}
	return nil
}

func (s *Store) sortedUsers() []models.User {
	out := make([]models.User, 0, len(s.st.users))
	for _, u := range s.st.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --------------------------------------------------
// Services
// --------------------------------------------------

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Service{}
	for _, svc := range s.st.services {
		if svc.Active {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetService(ctx context.Context, id uint) (*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.st.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &svc, nil
}

func (s *Store) GetServices(ctx context.Context, ids []uint) ([]models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Service{}
	for _, id := range ids {
		if svc, ok := s.st.services[id]; ok {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateService(ctx context.Context, svc *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.st.services {
		if other.Name == svc.Name {
			return httperr.ErrBusiness("name_taken")
		}
	}
	svc.ID = s.id()
	s.st.services[svc.ID] = *svc
	return nil
}

func (s *Store) SaveService(ctx context.Context, svc *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.services[svc.ID] = *svc
	return nil
}

func (s *Store) DeleteService(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.st.services[id]
	if !ok {
		return domain.ErrNotFound
	}
	svc.Active = false
	s.st.services[id] = svc
	return nil
}

// --------------------------------------------------
// Barbers
// --------------------------------------------------

func (s *Store) ListBarbers(ctx context.Context) ([]models.Barber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Barber{}
	for _, b := range s.st.barbers {
		if b.Active {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetBarber(ctx context.Context, id uint) (*models.Barber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.st.barbers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (s *Store) CreateBarber(ctx context.Context, b *models.Barber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.id()
	s.st.barbers[b.ID] = *b
	return nil
}

func (s *Store) SaveBarber(ctx context.Context, b *models.Barber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.barbers[b.ID] = *b
	return nil
}

func (s *Store) DeleteBarber(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.st.barbers[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Active = false
	s.st.barbers[id] = b
	return nil
}

// --------------------------------------------------
// Products
// --------------------------------------------------

func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Product{}
	for _, p := range s.st.products {
		if !activeOnly || p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.st.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.id()
	s.st.products[p.ID] = *p
	return nil
}

func (s *Store) SaveProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.products[p.ID] = *p
	return nil
}

// --------------------------------------------------
// Working hours
// --------------------------------------------------

func (s *Store) ListWorkingHours(ctx context.Context, barberID uint) ([]models.WorkingHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.st.hours[barberID]), nil
}

func (s *Store) ReplaceWorkingHours(ctx context.Context, barberID uint, hours []models.WorkingHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]models.WorkingHours, 0, len(hours))
	for _, wh := range hours {
		wh.ID = s.id()
		wh.BarberID = barberID
		stored = append(stored, wh)
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].Weekday < stored[j].Weekday })
	s.st.hours[barberID] = stored
	return nil
}

func (s *Store) GetWorkingHours(ctx context.Context, barberID uint, weekday int) (*models.WorkingHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, wh := range s.st.hours[barberID] {
		if wh.Weekday == weekday {
			return &wh, nil
		}
	}
	return nil, domain.ErrNotFound
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (s *Store) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ap.ID = s.id()
	ap.CreatedAt = time.Now()
	ap.UpdatedAt = ap.CreatedAt
	s.st.appointments[ap.ID] = stripRelations(*ap)
	return nil
}

func (s *Store) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ap, ok := s.st.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := s.withRelations(ap)
	return &out, nil
}

func (s *Store) GetAppointmentForUpdate(ctx context.Context, id uint) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ap, ok := s.st.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	ap.Services = slices.Clone(ap.Services)
	return &ap, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.st.appointments[ap.ID]
	if !ok {
		return domain.ErrNotFound
	}

	next := stripRelations(*ap)
	next.Services = stored.Services
	next.UpdatedAt = time.Now()
	s.st.appointments[ap.ID] = next
	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.appointments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.st.appointments, id)
	return nil
}

func (s *Store) ListActiveOverlapping(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	return s.ListActive(ctx, barberID, start, end)
}

func (s *Store) ListActive(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Appointment{}
	for _, ap := range s.sortedAppointments(false) {
		if ap.BarberID != barberID || !apdomain.Status(ap.Status).IsActive() {
			continue
		}
		if ap.StartTime.Before(end) && ap.EndTime.After(start) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (s *Store) ListAppointments(ctx context.Context, f apdomain.Filter) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(f.Query))

	out := []models.Appointment{}
	for _, ap := range s.sortedAppointments(f.Desc) {
		if f.BarberID != nil && ap.BarberID != *f.BarberID {
			continue
		}
		if f.UserID != nil && (ap.UserID == nil || *ap.UserID != *f.UserID) {
			continue
		}
		if f.From != nil && ap.StartTime.Before(*f.From) {
			continue
		}
		if f.To != nil && !ap.StartTime.Before(*f.To) {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, ap.Status) {
			continue
		}

		full := s.withRelations(ap)
		if term != "" && !matchesCustomer(full.User, term) {
			continue
		}

		out = append(out, full)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) CountUnviewed(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, ap := range s.st.appointments {
		if ap.Status == string(apdomain.StatusBooked) && !ap.AdminViewed {
			n++
		}
	}
	return n, nil
}

// --------------------------------------------------
// Blocked slots
// --------------------------------------------------

func (s *Store) ListBlockedSlots(ctx context.Context, fromDay, toDay string) ([]models.BlockedSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.BlockedSlot{}
	for _, b := range s.st.blocks {
		if b.Day >= fromDay && b.Day <= toDay {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *Store) CreateBlockedSlot(ctx context.Context, b *models.BlockedSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.id()
	b.CreatedAt = time.Now()
	s.st.blocks[b.ID] = *b
	return nil
}

func (s *Store) DeleteBlockedSlot(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.blocks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.st.blocks, id)
	return nil
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func (s *Store) sortedAppointments(desc bool) []models.Appointment {
	out := make([]models.Appointment, 0, len(s.st.appointments))
	for _, ap := range s.st.appointments {
		out = append(out, ap)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		if desc {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func (s *Store) withRelations(ap models.Appointment) models.Appointment {
	ap.Services = slices.Clone(ap.Services)
	if ap.UserID != nil {
		if u, ok := s.st.users[*ap.UserID]; ok {
			ap.User = &u
		}
	}
	if b, ok := s.st.barbers[ap.BarberID]; ok {
		ap.Barber = b
	}
	return ap
}

func stripRelations(ap models.Appointment) models.Appointment {
	ap.User = nil
	ap.Barber = models.Barber{}
	ap.Services = slices.Clone(ap.Services)
	return ap
}

func matchesCustomer(u *models.User, term string) bool {
	if u == nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Name), term) ||
		strings.Contains(u.Phone, term) ||
		strings.Contains(strings.ToLower(u.Email), term)
}

// ======================================================
// PUSH SUBSCRIPTIONS
// ======================================================

func (s *Store) SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if prev, ok := s.st.pushSubs[sub.Endpoint]; ok {
		sub.ID = prev.ID
		sub.CreatedAt = prev.CreatedAt
	} else {
		sub.ID = s.id()
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	s.st.pushSubs[sub.Endpoint] = *sub
	return nil
}

func (s *Store) DeletePushSubscription(ctx context.Context, endpoint string, userID *uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.st.pushSubs[endpoint]
	if !ok || (userID != nil && sub.UserID != *userID) {
		return nil
	}
	delete(s.st.pushSubs, endpoint)
	return nil
}

func (s *Store) ListAdminPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.PushSubscription
	for _, sub := range s.st.pushSubs {
		if u, ok := s.st.users[sub.UserID]; ok && u.IsAdmin() {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var (
	_ push.Store               = (*Store)(nil)
	_ apdomain.Repository      = (*Store)(nil)
	_ userdomain.Repository    = (*Store)(nil)
	_ catalogdomain.Repository = (*Store)(nil)
)
