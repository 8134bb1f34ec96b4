package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"room-booking/internal/data/entity"
	"room-booking/internal/data/repository"
	"room-booking/internal/domain"
	"room-booking/internal/gateway"
	"room-booking/pkg/utils"
)

// memStore is an in-memory stand-in for Postgres. WithinTx runs one
// transaction at a time and restores the previous state when fn fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	rooms    map[uuid.UUID]*entity.Room
	bookings map[uuid.UUID]*entity.Booking
	payments map[uuid.UUID]*entity.Payment
	refunds  []*entity.Refund
}

func newMemStore() *memStore {
	return &memStore{
		rooms:    map[uuid.UUID]*entity.Room{},
		bookings: map[uuid.UUID]*entity.Booking{},
		payments: map[uuid.UUID]*entity.Payment{},
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Room:    &memRooms{m},
		Booking: &memBookings{m},
		Payment: &memPayments{m},
		Refund:  &memRefunds{m},
		Tx:      &memTx{m},
	}
}

type snapshot struct {
	bookings map[uuid.UUID]entity.Booking
	payments map[uuid.UUID]entity.Payment
	refunds  int
}

func (m *memStore) snapshot() snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := snapshot{
		bookings: map[uuid.UUID]entity.Booking{},
		payments: map[uuid.UUID]entity.Payment{},
		refunds:  len(m.refunds),
	}
	for id, b := range m.bookings {
		s.bookings[id] = *b
	}
	for id, p := range m.payments {
		s.payments[id] = *p
	}
	return s
}

func (m *memStore) restore(s snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = map[uuid.UUID]*entity.Booking{}
	for id, b := range s.bookings {
		b := b
		m.bookings[id] = &b
	}
	m.payments = map[uuid.UUID]*entity.Payment{}
	for id, p := range s.payments {
		p := p
		m.payments[id] = &p
	}
	m.refunds = m.refunds[:s.refunds]
}

func (m *memStore) booking(id uuid.UUID) entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.bookings[id]
}

func (m *memStore) payment(bookingID uuid.UUID) *entity.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[bookingID]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (m *memStore) paymentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payments)
}

func (m *memStore) refundCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.refunds)
}

type memTx struct{ m *memStore }

func (t *memTx) WithinTx(ctx context.Context, fn func(repo *repository.Repository) error) error {
	t.m.txMu.Lock()
	defer t.m.txMu.Unlock()

	before := t.m.snapshot()
	repo := t.m.repository()
	repo.Tx = nestedMemTx{repo}
	if err := fn(repo); err != nil {
		t.m.restore(before)
		return err
	}
	return nil
}

type nestedMemTx struct{ repo *repository.Repository }

func (n nestedMemTx) WithinTx(_ context.Context, fn func(repo *repository.Repository) error) error {
	return fn(n.repo)
}

type memRooms struct{ m *memStore }

func (r *memRooms) Create(_ context.Context, room *entity.Room) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *room
	r.m.rooms[room.ID] = &cp
	return nil
}

func (r *memRooms) FindByID(_ context.Context, id uuid.UUID) (*entity.Room, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	room, ok := r.m.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *room
	return &cp, nil
}

func (r *memRooms) list(activeOnly bool) []*entity.Room {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Room
	for _, room := range r.m.rooms {
		if activeOnly && !room.IsActive {
			continue
		}
		cp := *room
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memRooms) FindActive(_ context.Context) ([]*entity.Room, error) {
	return r.list(true), nil
}

func (r *memRooms) FindAll(_ context.Context) ([]*entity.Room, error) {
	return r.list(false), nil
}

func (r *memRooms) Update(_ context.Context, room *entity.Room) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.rooms[room.ID]; !ok {
		return fmt.Errorf("room %s not found", room.ID)
	}
	cp := *room
	r.m.rooms[room.ID] = &cp
	return nil
}

func (r *memRooms) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	room, ok := r.m.rooms[id]
	if !ok {
		return fmt.Errorf("room %s not found", id)
	}
	room.IsActive = active
	return nil
}

func (r *memRooms) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.rooms, id)
	return nil
}

func (r *memRooms) CountActive(_ context.Context) (int64, error) {
	return int64(len(r.list(true))), nil
}

type memBookings struct{ m *memStore }

func (r *memBookings) filter(keep func(b *entity.Booking) bool) []*entity.Booking {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.m.bookings {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartMinute < out[j].StartMinute
	})
	return out
}

func (r *memBookings) withRoom(bookings []*entity.Booking) []*entity.BookingWithRoom {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*entity.BookingWithRoom, 0, len(bookings))
	for _, b := range bookings {
		bw := &entity.BookingWithRoom{Booking: *b}
		if room, ok := r.m.rooms[b.RoomID]; ok {
			bw.RoomName = room.Name
		}
		out = append(out, bw)
	}
	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func inStatuses(s entity.BookingStatus, statuses []entity.BookingStatus) bool {
	for _, want := range statuses {
		if s == want {
			return true
		}
	}
	return false
}

func (r *memBookings) Create(_ context.Context, b *entity.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *b
	r.m.bookings[b.ID] = &cp
	return nil
}

func (r *memBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *memBookings) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *memBookings) FindBySessionIDForUpdate(_ context.Context, sessionID string) (*entity.Booking, error) {
	found := r.filter(func(b *entity.Booking) bool {
		return b.CheckoutSessionID != nil && *b.CheckoutSessionID == sessionID
	})
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *memBookings) FindByUser(_ context.Context, userID string, limit, offset int) ([]*entity.BookingWithRoom, error) {
	found := r.filter(func(b *entity.Booking) bool { return b.UserID == userID })
	return r.withRoom(page(found, limit, offset)), nil
}

func (r *memBookings) CountByUser(_ context.Context, userID string) (int64, error) {
	return int64(len(r.filter(func(b *entity.Booking) bool { return b.UserID == userID }))), nil
}

func matchesFilter(b *entity.Booking, f repository.BookingFilter) bool {
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if f.RoomID != nil && b.RoomID != *f.RoomID {
		return false
	}
	if f.StartDate != nil && b.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && b.Date.After(*f.EndDate) {
		return false
	}
	return true
}

func (r *memBookings) FindAll(_ context.Context, f repository.BookingFilter, limit, offset int) ([]*entity.BookingWithRoom, error) {
	found := r.filter(func(b *entity.Booking) bool { return matchesFilter(b, f) })
	return r.withRoom(page(found, limit, offset)), nil
}

func (r *memBookings) CountAll(_ context.Context, f repository.BookingFilter) (int64, error) {
	return int64(len(r.filter(func(b *entity.Booking) bool { return matchesFilter(b, f) }))), nil
}

func (r *memBookings) Update(_ context.Context, b *entity.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.bookings[b.ID]; !ok {
		return fmt.Errorf("booking %s not found", b.ID)
	}
	cp := *b
	r.m.bookings[b.ID] = &cp
	return nil
}

func (r *memBookings) UpdateStatus(_ context.Context, id uuid.UUID, status entity.BookingStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s not found", id)
	}
	b.Status = status
	return nil
}

func (r *memBookings) LockSlot(context.Context, uuid.UUID, time.Time) error { return nil }

func (r *memBookings) FindConflicting(_ context.Context, roomID uuid.UUID, slot domain.Slot, excludeID *uuid.UUID) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool {
		if excludeID != nil && b.ID == *excludeID {
			return false
		}
		return b.RoomID == roomID && b.Status.IsSlotHolding() && b.Slot().Overlaps(slot)
	}), nil
}

func (r *memBookings) FindByRoomInRange(_ context.Context, roomID uuid.UUID, from, to time.Time, statuses []entity.BookingStatus) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool {
		return b.RoomID == roomID && !b.Date.Before(from) && !b.Date.After(to) && inStatuses(b.Status, statuses)
	}), nil
}

func (r *memBookings) CountByRoom(_ context.Context, roomID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(b *entity.Booking) bool { return b.RoomID == roomID }))), nil
}

func (r *memBookings) CountUpcomingByRoom(_ context.Context, roomID uuid.UUID, from time.Time) (int64, error) {
	return int64(len(r.filter(func(b *entity.Booking) bool {
		return b.RoomID == roomID && !b.Date.Before(from) && b.Status.IsSlotHolding()
	}))), nil
}

func (r *memBookings) CountByStatuses(_ context.Context, statuses []entity.BookingStatus) (int64, error) {
	return int64(len(r.filter(func(b *entity.Booking) bool {
		return len(statuses) == 0 || inStatuses(b.Status, statuses)
	}))), nil
}

func (r *memBookings) CountUpcoming(_ context.Context, from time.Time, statuses []entity.BookingStatus) (int64, error) {
	return int64(len(r.filter(func(b *entity.Booking) bool {
		return !b.Date.Before(from) && inStatuses(b.Status, statuses)
	}))), nil
}

func (r *memBookings) SumRevenue(_ context.Context, statuses []entity.BookingStatus) (float64, error) {
	var total float64
	for _, b := range r.filter(func(b *entity.Booking) bool { return inStatuses(b.Status, statuses) }) {
		total += b.TotalPrice
	}
	return total, nil
}

func (r *memBookings) MostBookedRoom(_ context.Context, statuses []entity.BookingStatus) (*repository.RoomBookingCount, error) {
	counts := map[uuid.UUID]int64{}
	for _, b := range r.filter(func(b *entity.Booking) bool { return inStatuses(b.Status, statuses) }) {
		counts[b.RoomID]++
	}
	var top *repository.RoomBookingCount
	for id, n := range counts {
		if top == nil || n > top.Count {
			top = &repository.RoomBookingCount{RoomID: id, Count: n}
		}
	}
	if top != nil {
		r.m.mu.Lock()
		top.RoomName = r.m.rooms[top.RoomID].Name
		r.m.mu.Unlock()
	}
	return top, nil
}

func (r *memBookings) FindStale(_ context.Context, status entity.BookingStatus, createdBefore, now time.Time) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool {
		if b.CheckoutExpiresAt != nil && b.CheckoutExpiresAt.After(now) {
			return false
		}
		return b.Status == status && b.PaymentDate == nil && b.CreatedAt.Before(createdBefore)
	}), nil
}

func (r *memBookings) FindEndedBy(_ context.Context, status entity.BookingStatus, date time.Time, minute int) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool {
		return b.Status == status && (b.Date.Before(date) || (b.Date.Equal(date) && b.EndMinute <= minute))
	}), nil
}

type memPayments struct{ m *memStore }

func (r *memPayments) Create(_ context.Context, p *entity.Payment) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.payments[p.BookingID]; ok {
		return false, nil
	}
	cp := *p
	r.m.payments[p.BookingID] = &cp
	return true, nil
}

func (r *memPayments) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	return r.m.payment(bookingID), nil
}

func (r *memPayments) UpdateStatus(_ context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.payments {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return fmt.Errorf("payment %s not found", id)
}

type memRefunds struct{ m *memStore }

func (r *memRefunds) Create(_ context.Context, refund *entity.Refund) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *refund
	r.m.refunds = append(r.m.refunds, &cp)
	return nil
}

func (r *memRefunds) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.Refund, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Refund
	for _, refund := range r.m.refunds {
		if refund.BookingID == bookingID {
			cp := *refund
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeProvider struct {
	mu        sync.Mutex
	sessions  map[string]*gateway.Session
	checkouts []gateway.CheckoutRequest
	refunds   []gateway.RefundRequest
	refundIDs map[string]string
	refundErr error
	event     *gateway.Event
	eventErr  error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		sessions:  map[string]*gateway.Session{},
		refundIDs: map[string]string{},
	}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkouts = append(p.checkouts, req)
	id := fmt.Sprintf("cs_test_%d", len(p.checkouts))
	p.sessions[id] = &gateway.Session{
		ID:            id,
		BookingID:     req.BookingID,
		Status:        gateway.SessionOpen,
		PaymentStatus: gateway.PaymentUnpaid,
		AmountTotal:   req.Amount,
		Currency:      req.Currency,
		URL:           "https://pay.example/" + id,
	}
	return &gateway.CheckoutSession{ID: id, URL: "https://pay.example/" + id}, nil
}

func (p *fakeProvider) GetSession(_ context.Context, sessionID string) (*gateway.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[sessionID]
	if !ok {
		return nil, gateway.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (p *fakeProvider) pay(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.sessions[sessionID]
	s.Status = gateway.SessionComplete
	s.PaymentStatus = gateway.PaymentPaid
	s.PaymentRef = "pi_" + sessionID
	s.Method = "card"
	s.URL = ""
}

func (p *fakeProvider) expire(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[sessionID].Status = gateway.SessionExpired
	p.sessions[sessionID].URL = ""
}

func (p *fakeProvider) CreateRefund(_ context.Context, req gateway.RefundRequest) (*gateway.Refund, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refundErr != nil {
		return nil, p.refundErr
	}
	if id, ok := p.refundIDs[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return &gateway.Refund{ID: id, Status: gateway.RefundSucceeded}, nil
	}
	p.refunds = append(p.refunds, req)
	id := fmt.Sprintf("re_%d", len(p.refunds))
	p.refundIDs[req.IdempotencyKey] = id
	return &gateway.Refund{ID: id, Status: gateway.RefundSucceeded}, nil
}

func (p *fakeProvider) ParseWebhook(_ context.Context, _ []byte, _ http.Header) (*gateway.Event, error) {
	if p.eventErr != nil {
		return nil, p.eventErr
	}
	if p.event == nil {
		return nil, errors.New("no event queued")
	}
	return p.event, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *fakePublisher) count(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, k := range p.keys {
		if k == key {
			n++
		}
	}
	return n
}

// Monday 2 June 2025, 08:00 UTC.
var testNow = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

var (
	customer = domain.Actor{UserID: "user-1", Role: domain.RoleCustomer}
	stranger = domain.Actor{UserID: "user-2", Role: domain.RoleCustomer}
	admin    = domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
)

type fixture struct {
	svc      *Service
	store    *memStore
	provider *fakeProvider
	events   *fakePublisher
	config   *utils.Config

	clockMu sync.Mutex
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	config := &utils.Config{
		App: utils.AppConfig{
			Name:        "room-booking",
			Timezone:    "UTC",
			FrontendURL: "http://localhost:3000",
		},
		Payment: utils.PaymentConfig{
			Provider:       "stripe",
			Currency:       "eur",
			CheckoutExpiry: 30 * time.Minute,
		},
	}
	f := &fixture{
		store:    newMemStore(),
		provider: newFakeProvider(),
		events:   &fakePublisher{},
		config:   config,
		clock:    testNow,
	}
	f.svc = newService(f.store.repository(), f.provider, f.events, config, f.now, zap.NewNop())
	return f
}

func (f *fixture) now() time.Time {
	f.clockMu.Lock()
	defer f.clockMu.Unlock()
	return f.clock
}

// advance moves the service clock forward by d.
func (f *fixture) advance(d time.Duration) {
	f.clockMu.Lock()
	defer f.clockMu.Unlock()
	f.clock = f.clock.Add(d)
}

func (f *fixture) addRoom(t *testing.T, name string, price float64, active bool) *entity.Room {
	t.Helper()
	room := &entity.Room{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		Name:         name,
		Capacity:     8,
		PricePerHour: price,
		Equipments:   []string{"screen"},
		IsActive:     active,
	}
	require.NoError(t, f.store.repository().Room.Create(context.Background(), room))
	return room
}

func (f *fixture) addBooking(t *testing.T, room *entity.Room, userID, date, start, end string, status entity.BookingStatus) *entity.Booking {
	t.Helper()
	slot, err := domain.ParseSlot(date, start, end)
	require.NoError(t, err)

	b := &entity.Booking{
		Base:           entity.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		RoomID:         room.ID,
		UserID:         userID,
		CustomerName:   "Ada Lovelace",
		CustomerEmail:  "ada@example.com",
		NumberOfPeople: 2,
		TotalPrice:     domain.TotalPrice(slot, room.PricePerHour),
		Status:         status,
	}
	b.SetSlot(slot)
	if status != entity.BookingStatusPendingPayment {
		paid := testNow.Add(-time.Hour)
		b.PaymentDate = &paid
	}
	require.NoError(t, f.store.repository().Booking.Create(context.Background(), b))
	return b
}

func (f *fixture) addPayment(t *testing.T, b *entity.Booking) *entity.Payment {
	t.Helper()
	ref := "pi_" + b.ID.String()
	p := &entity.Payment{
		Base:               entity.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		BookingID:          b.ID,
		Amount:             b.TotalPrice,
		Currency:           "eur",
		ProviderPaymentRef: &ref,
		Status:             entity.PaymentStatusSucceeded,
	}
	_, err := f.store.repository().Payment.Create(context.Background(), p)
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
