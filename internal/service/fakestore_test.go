package service

import (
	"context"
	"sort"
	"sync"

	"github.com/orcabay/sail-reservation/internal/model"
	"github.com/orcabay/sail-reservation/internal/repository"
)

// fakeStore is an in-memory repository.Store for service tests.  The
// single mutex held for the whole of ExecTx mirrors the sail row lock
// in MySQL: transactions against the store serialize, reads outside a
// transaction see the last committed state.
type fakeStore struct {
	mu        sync.Mutex
	sails     map[uint64]*model.SailOccupancy // occupancy fields ignored; recomputed from bookings
	bookings  []model.BookingDetail
	customers map[string]model.Customer // keyed by phone number
	boats     []model.Boat
	links     map[[2]uint64]uint64 // (boat, activity) -> boat_activity id
	nextID    uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sails:     map[uint64]*model.SailOccupancy{},
		customers: map[string]model.Customer{},
		links:     map[[2]uint64]uint64{},
		nextID:    1000,
	}
}

func (f *fakeStore) id() uint64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addBoat(id uint64, name string, capacity int) {
	f.boats = append(f.boats, model.Boat{ID: id, Name: name, MaxPassengers: capacity, IsActive: true})
}

func (f *fakeStore) addLink(baID, boatID, activityID uint64) {
	f.links[[2]uint64{boatID, activityID}] = baID
}

// addSail registers a sail; the caller fills the base fields, the
// fake recomputes occupancy on every read.
func (f *fakeStore) addSail(s *model.SailOccupancy) {
	f.sails[s.ID] = s
}

func (f *fakeStore) addBooking(b model.BookingDetail) {
	f.bookings = append(f.bookings, b)
}

// snapshot returns a deep copy of all mutable state for rollback.
func (f *fakeStore) snapshot() (map[uint64]*model.SailOccupancy, []model.BookingDetail, map[string]model.Customer) {
	sails := make(map[uint64]*model.SailOccupancy, len(f.sails))
	for id, s := range f.sails {
		cp := *s
		sails[id] = &cp
	}
	bookings := append([]model.BookingDetail(nil), f.bookings...)
	customers := make(map[string]model.Customer, len(f.customers))
	for k, v := range f.customers {
		customers[k] = v
	}
	return sails, bookings, customers
}

func (f *fakeStore) ExecTx(ctx context.Context, fn func(repository.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sails, bookings, customers := f.snapshot()
	if err := fn(&fakeTx{store: f}); err != nil {
		f.sails, f.bookings, f.customers = sails, bookings, customers
		return err
	}
	return nil
}

// withOccupancy copies a sail and fills the occupancy aggregates from
// the current bookings.  Callers must hold the mutex.
func (f *fakeStore) withOccupancy(s *model.SailOccupancy) *model.SailOccupancy {
	cp := *s
	cp.Occupancy = model.Occupancy{}
	cp.PhoneBookings = 0
	cp.HasUnder16 = false
	for i := range f.bookings {
		b := &f.bookings[i]
		if b.SailID != s.ID {
			continue
		}
		cp.Occupancy.Sail += b.NumPeopleSail
		cp.Occupancy.Activity += b.NumPeopleActivity
		if b.IsPhoneBooking {
			cp.PhoneBookings++
		}
		if b.UpTo16Year {
			cp.HasUnder16 = true
		}
	}
	return &cp
}

func sortByPlanned(out []model.SailOccupancy) {
	sort.Slice(out, func(i, j int) bool { return out[i].PlannedStartTime < out[j].PlannedStartTime })
}

func (f *fakeStore) CandidateSails(ctx context.Context, q repository.CandidateFilter) ([]model.SailOccupancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SailOccupancy
	for _, s := range f.sails {
		if s.Date != q.Date || s.ActivityID != q.ActivityID || s.PopulationTypeID != q.PopulationTypeID {
			continue
		}
		if s.PlannedStartTime < q.From || s.PlannedStartTime > q.To {
			continue
		}
		if s.IsPrivateGroup || s.ActualStartTime != nil || s.EndTime != nil {
			continue
		}
		if s.Status == model.StatusCancelled || s.Status == model.StatusTransferredLate {
			continue
		}
		out = append(out, *f.withOccupancy(s))
	}
	sortByPlanned(out)
	return out, nil
}

func (f *fakeStore) SailsForBoatDay(ctx context.Context, boatID uint64, date string) ([]model.SailOccupancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SailOccupancy
	for _, s := range f.sails {
		if s.BoatID == boatID && s.Date == date {
			out = append(out, *f.withOccupancy(s))
		}
	}
	sortByPlanned(out)
	return out, nil
}

func (f *fakeStore) OverdueSails(ctx context.Context, date string, cutoff model.ClockTime) ([]model.SailOccupancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SailOccupancy
	for _, s := range f.sails {
		if s.Date != date || s.PlannedStartTime > cutoff {
			continue
		}
		if s.ActualStartTime != nil || s.EndTime != nil || s.Status.Terminal() {
			continue
		}
		oc := f.withOccupancy(s)
		if oc.PhoneBookings == 0 {
			continue
		}
		out = append(out, *oc)
	}
	sortByPlanned(out)
	return out, nil
}

func (f *fakeStore) SailWithOccupancy(ctx context.Context, sailID uint64) (*model.SailOccupancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sails[sailID]
	if !ok {
		return nil, repository.ErrSailNotFound
	}
	return f.withOccupancy(s), nil
}

func (f *fakeStore) BookingsBySail(ctx context.Context, sailID uint64) ([]model.BookingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookingsBySailLocked(sailID), nil
}

func (f *fakeStore) bookingsBySailLocked(sailID uint64) []model.BookingDetail {
	out := []model.BookingDetail{}
	for _, b := range f.bookings {
		if b.SailID == sailID {
			out = append(out, b)
		}
	}
	return out
}

func (f *fakeStore) ActiveBoats(ctx context.Context) ([]model.Boat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Boat(nil), f.boats...), nil
}

// fakeTx runs against the store under the mutex ExecTx already holds.
type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) SailWithOccupancyForUpdate(ctx context.Context, sailID uint64) (*model.SailOccupancy, error) {
	s, ok := t.store.sails[sailID]
	if !ok {
		return nil, repository.ErrSailNotFound
	}
	return t.store.withOccupancy(s), nil
}

func (t *fakeTx) SailByID(ctx context.Context, sailID uint64) (*model.Sail, error) {
	s, ok := t.store.sails[sailID]
	if !ok {
		return nil, repository.ErrSailNotFound
	}
	cp := s.Sail
	return &cp, nil
}

func (t *fakeTx) ResolveBoatActivity(ctx context.Context, boatID, activityID uint64) (uint64, error) {
	id, ok := t.store.links[[2]uint64{boatID, activityID}]
	if !ok {
		return 0, repository.ErrInvalidCombination
	}
	return id, nil
}

func (t *fakeTx) InsertSail(ctx context.Context, ns model.NewSail) (uint64, error) {
	id := t.store.id()
	s := &model.SailOccupancy{}
	s.ID = id
	s.Date = ns.Date
	s.PlannedStartTime = ns.PlannedStartTime
	s.BoatActivityID = ns.BoatActivityID
	s.PopulationTypeID = ns.PopulationTypeID
	s.IsPrivateGroup = ns.IsPrivateGroup
	s.RequiresOrcaEscort = ns.RequiresOrcaEscort
	s.Notes = ns.Notes
	s.Status = model.StatusPending
	// Resolve the boat side of the link for boat-scoped reads.
	for key, baID := range t.store.links {
		if baID == ns.BoatActivityID {
			s.BoatID = key[0]
			s.ActivityID = key[1]
		}
	}
	for _, b := range t.store.boats {
		if b.ID == s.BoatID {
			s.BoatName = b.Name
			s.BoatCapacity = b.MaxPassengers
		}
	}
	t.store.sails[id] = s
	return id, nil
}

func (t *fakeTx) UpsertCustomer(ctx context.Context, in model.CustomerInput) (uint64, error) {
	if c, ok := t.store.customers[in.PhoneNumber]; ok {
		c.Name = in.Name
		c.Email = in.Email
		c.WantsWhatsapp = in.WantsWhatsapp
		c.Notes = in.Notes
		t.store.customers[in.PhoneNumber] = c
		return c.ID, nil
	}
	c := model.Customer{
		ID:            t.store.id(),
		Name:          in.Name,
		PhoneNumber:   in.PhoneNumber,
		Email:         in.Email,
		WantsWhatsapp: in.WantsWhatsapp,
		Notes:         in.Notes,
	}
	t.store.customers[in.PhoneNumber] = c
	return c.ID, nil
}

func (t *fakeTx) InsertBooking(ctx context.Context, nb model.NewBooking) (uint64, error) {
	id := t.store.id()
	t.store.bookings = append(t.store.bookings, model.BookingDetail{
		Booking: model.Booking{
			ID:                id,
			SailID:            nb.SailID,
			CustomerID:        nb.CustomerID,
			NumPeopleSail:     nb.NumPeopleSail,
			NumPeopleActivity: nb.NumPeopleActivity,
			FinalPriceCents:   nb.FinalPriceCents,
			PaymentTypeID:     nb.PaymentTypeID,
			IsPhoneBooking:    nb.IsPhoneBooking,
			UpTo16Year:        nb.UpTo16Year,
			Notes:             nb.Notes,
		},
	})
	return id, nil
}

func (t *fakeTx) BookingsBySail(ctx context.Context, sailID uint64) ([]model.BookingDetail, error) {
	return t.store.bookingsBySailLocked(sailID), nil
}

func (t *fakeTx) ReassignBookings(ctx context.Context, fromSailID, toSailID uint64) (int64, error) {
	var n int64
	for i := range t.store.bookings {
		if t.store.bookings[i].SailID == fromSailID {
			t.store.bookings[i].SailID = toSailID
			n++
		}
	}
	return n, nil
}

func (t *fakeTx) UpdateSailStatus(ctx context.Context, sailID uint64, status model.SailStatus, transferredTo *uint64) error {
	s, ok := t.store.sails[sailID]
	if !ok {
		return repository.ErrSailNotFound
	}
	s.Status = status
	s.TransferredToSailID = transferredTo
	return nil
}

func (t *fakeTx) SetActualStart(ctx context.Context, sailID uint64, at model.ClockTime) error {
	s, ok := t.store.sails[sailID]
	if !ok {
		return repository.ErrSailNotFound
	}
	s.ActualStartTime = &at
	return nil
}

func (t *fakeTx) SetEndTime(ctx context.Context, sailID uint64, at model.ClockTime) error {
	s, ok := t.store.sails[sailID]
	if !ok {
		return repository.ErrSailNotFound
	}
	s.EndTime = &at
	return nil
}
