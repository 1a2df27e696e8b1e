package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	lotserrors "parkproof/internal/lots/errors"
	sessionserrors "parkproof/internal/sessions/errors"
	ticketserrors "parkproof/internal/tickets/errors"
	userserrors "parkproof/internal/users/errors"
	mongotx "parkproof/pkg/db/mongo"
	"parkproof/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// store is an in-memory stand-in for the Mongo collections the gate touches.
// Transactions are serialized by txMu, which is what the admission_seq
// write conflict achieves against a real replica set.
type store struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	tickets  map[string]*model.Ticket
	sessions map[string]*model.Session
	lots     map[string]*model.ParkingLot
	users    map[string]*model.User
}

func newStore() *store {
	return &store{
		tickets:  map[string]*model.Ticket{},
		sessions: map[string]*model.Session{},
		lots:     map[string]*model.ParkingLot{},
		users:    map[string]*model.User{},
	}
}

func newID() string { return primitive.NewObjectID().Hex() }

func (s *store) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(mongo.NewSessionContext(ctx, nil))
}

type ticketRepo struct{ *store }

func (r ticketRepo) Create(_ context.Context, t *model.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = newID()
	cp := *t
	r.tickets[t.ID] = &cp
	return nil
}

func (r ticketRepo) FindByID(_ context.Context, id string) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ticketserrors.ErrNotFound, id)
	}
	cp := *t
	return &cp, nil
}

func (r ticketRepo) FindLatestLiveForVehicle(_ context.Context, plate string, now time.Time) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Ticket
	for _, t := range r.tickets {
		if t.VehicleNumber != plate || t.Status == model.TicketExpired || !t.ValidTill.After(now) {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, ticketserrors.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r ticketRepo) MarkUsed(_ context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok || t.Status != model.TicketCreated {
		return ticketserrors.ErrNotCreated
	}
	t.Status = model.TicketUsed
	t.UsedAt = &now
	return nil
}

func (r ticketRepo) ExpireIfPastDue(_ context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok || t.Status != model.TicketCreated || !t.ValidTill.Before(now) {
		return false, nil
	}
	t.Status = model.TicketExpired
	t.ExpiredAt = &now
	return true, nil
}

func (r ticketRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, id := range r.ids() {
		if ok, _ := r.ExpireIfPastDue(ctx, id, now); ok {
			n++
		}
	}
	return n, nil
}

func (r ticketRepo) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.tickets))
	for id := range r.tickets {
		ids = append(ids, id)
	}
	return ids
}

func (r ticketRepo) countReserved(lotID string, now time.Time) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tickets {
		if (lotID == "" || t.ParkingLotID == lotID) && t.Status == model.TicketCreated && !t.ValidTill.Before(now) {
			n++
		}
	}
	return n
}

func (r ticketRepo) CountReservedByLot(_ context.Context, lotID string, now time.Time) (int64, error) {
	return r.countReserved(lotID, now), nil
}

func (r ticketRepo) CountReserved(_ context.Context, now time.Time) (int64, error) {
	return r.countReserved("", now), nil
}

func (r ticketRepo) CountIssuedSince(_ context.Context, lotID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tickets {
		if t.ParkingLotID == lotID && !t.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r ticketRepo) SumAmountSince(_ context.Context, lotID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, t := range r.tickets {
		if t.ParkingLotID == lotID && !t.CreatedAt.Before(since) {
			sum += int64(t.Amount)
		}
	}
	return sum, nil
}

type sessionRepo struct{ *store }

func (r sessionRepo) Create(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.VehicleNumber == s.VehicleNumber && existing.Status == model.SessionActive {
			return sessionserrors.ErrDuplicateActive
		}
	}
	s.ID = newID()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r sessionRepo) find(match func(*model.Session) bool) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if match(s) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, sessionserrors.ErrNotFound
}

func (r sessionRepo) FindByID(_ context.Context, id string) (*model.Session, error) {
	return r.find(func(s *model.Session) bool { return s.ID == id })
}

func (r sessionRepo) FindActiveByVehicle(_ context.Context, plate string) (*model.Session, error) {
	return r.find(func(s *model.Session) bool { return s.VehicleNumber == plate && s.IsActive() })
}

func (r sessionRepo) FindActiveByUser(_ context.Context, userID string) (*model.Session, error) {
	return r.find(func(s *model.Session) bool { return s.UserID == userID && s.IsActive() })
}

func (r sessionRepo) Close(_ context.Context, id string, exit time.Time, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status != model.SessionActive {
		return sessionserrors.ErrNotActive
	}
	s.Status = model.SessionClosed
	s.ExitTime = &exit
	s.AmountCharged = &amount
	return nil
}

func (r sessionRepo) count(lotID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if (lotID == "" || s.ParkingLotID == lotID) && s.IsActive() {
			n++
		}
	}
	return n
}

func (r sessionRepo) CountActiveByLot(_ context.Context, lotID string) (int64, error) {
	return r.count(lotID), nil
}

func (r sessionRepo) CountActive(context.Context) (int64, error) { return r.count(""), nil }

func (r sessionRepo) FindByLot(_ context.Context, lotID string, status model.SessionStatus, limit int, offset int64) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Session
	for _, s := range r.sessions {
		if s.ParkingLotID == lotID && (status == "" || s.Status == status) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r sessionRepo) CountByLot(ctx context.Context, lotID string, status model.SessionStatus) (int64, error) {
	all, _ := r.FindByLot(ctx, lotID, status, 1<<30, 0)
	return int64(len(all)), nil
}

func (r sessionRepo) SumChargedSince(_ context.Context, lotID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, s := range r.sessions {
		if s.ParkingLotID == lotID && s.ExitTime != nil && !s.ExitTime.Before(since) && s.AmountCharged != nil {
			sum += int64(*s.AmountCharged)
		}
	}
	return sum, nil
}

type lotRepo struct{ *store }

func (r lotRepo) Create(_ context.Context, lot *model.ParkingLot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot.ID = newID()
	cp := *lot
	r.lots[lot.ID] = &cp
	return nil
}

func (r lotRepo) FindByID(_ context.Context, id string) (*model.ParkingLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !primitive.IsValidObjectID(id) {
		return nil, lotserrors.ErrInvalidID
	}
	lot, ok := r.lots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", lotserrors.ErrNotFound, id)
	}
	cp := *lot
	return &cp, nil
}

func (r lotRepo) FindAll(context.Context, int, int64) ([]*model.ParkingLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ParkingLot
	for _, l := range r.lots {
		out = append(out, l)
	}
	return out, nil
}

func (r lotRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.lots)), nil
}

func (r lotRepo) SumCapacity(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, l := range r.lots {
		sum += int64(l.Capacity)
	}
	return sum, nil
}

func (r lotRepo) BumpAdmissionSeq(ctx context.Context, id string) (*model.ParkingLot, error) {
	r.mu.Lock()
	if lot, ok := r.lots[id]; ok {
		lot.AdmissionSeq++
	}
	r.mu.Unlock()
	return r.FindByID(ctx, id)
}

type userRepo struct{ *store }

func (r userRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, userserrors.ErrNotFound
}

func (r userRepo) FindByPhone(_ context.Context, phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, userserrors.ErrNotFound
}
