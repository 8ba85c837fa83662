package service

import (
	"context"
	"sort"
	"time"

	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/repository"
)

// memStore is an in-memory repository.Store for lifecycle tests. The
// fakes never fail, so InTx simply runs the function against the same
// store; rollback behavior is not modeled.
type memStore struct {
	nextID int64

	users      map[int64]*models.User
	donors     map[int64]*models.DonorProfile
	recipients map[int64]*models.RecipientProfile
	needs      map[int64][]models.RecipientNeed
	volunteers map[int64]*models.VolunteerProfile
	categories map[int64]*models.FoodCategory
	items      map[int64]*models.FoodItem
	donations  map[int64]*models.Donation
	claims     []models.DonationItem
	requests   map[int64]*models.DeliveryRequest
	notes      []*models.Notification
	impact     map[int64]*models.ImpactMetrics
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[int64]*models.User{},
		donors:     map[int64]*models.DonorProfile{},
		recipients: map[int64]*models.RecipientProfile{},
		needs:      map[int64][]models.RecipientNeed{},
		volunteers: map[int64]*models.VolunteerProfile{},
		categories: map[int64]*models.FoodCategory{},
		items:      map[int64]*models.FoodItem{},
		donations:  map[int64]*models.Donation{},
		requests:   map[int64]*models.DeliveryRequest{},
		impact:     map[int64]*models.ImpactMetrics{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) Users() repository.UserRepository                   { return memUsers{s} }
func (s *memStore) Donors() repository.DonorRepository                 { return memDonors{s} }
func (s *memStore) Recipients() repository.RecipientRepository         { return memRecipients{s} }
func (s *memStore) Volunteers() repository.VolunteerRepository         { return memVolunteers{s} }
func (s *memStore) Categories() repository.CategoryRepository          { return memCategories{s} }
func (s *memStore) FoodItems() repository.FoodItemRepository           { return memItems{s} }
func (s *memStore) Donations() repository.DonationRepository           { return memDonations{s} }
func (s *memStore) DeliveryRequests() repository.DeliveryRequestRepository {
	return memRequests{s}
}
func (s *memStore) Notifications() repository.NotificationRepository { return memNotes{s} }
func (s *memStore) Impact() repository.ImpactRepository              { return memImpact{s} }

func (s *memStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	u.ID = r.s.id()
	r.s.users[u.ID] = u
	return u, nil
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.s.users[id], nil
}

func (r memUsers) AdminUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for _, u := range r.s.users {
		if u.IsAdmin && u.IsActive {
			ids = append(ids, u.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type memDonors struct{ s *memStore }

func (r memDonors) Create(ctx context.Context, d *models.DonorProfile) (*models.DonorProfile, error) {
	d.ID = r.s.id()
	r.s.donors[d.ID] = d
	return d, nil
}

func (r memDonors) GetByID(ctx context.Context, id int64) (*models.DonorProfile, error) {
	return r.s.donors[id], nil
}

func (r memDonors) Update(ctx context.Context, d *models.DonorProfile) (*models.DonorProfile, error) {
	r.s.donors[d.ID] = d
	return d, nil
}

type memRecipients struct{ s *memStore }

func (r memRecipients) Create(ctx context.Context, p *models.RecipientProfile) (*models.RecipientProfile, error) {
	p.ID = r.s.id()
	r.s.recipients[p.ID] = p
	return p, nil
}

func (r memRecipients) GetByID(ctx context.Context, id int64) (*models.RecipientProfile, error) {
	return r.s.recipients[id], nil
}

func (r memRecipients) Update(ctx context.Context, p *models.RecipientProfile) (*models.RecipientProfile, error) {
	r.s.recipients[p.ID] = p
	return p, nil
}

func (r memRecipients) ListVerifiedWithCapacity(ctx context.Context) ([]*models.RecipientProfile, error) {
	var out []*models.RecipientProfile
	for _, p := range r.s.recipients {
		if p.IsVerified && p.Capacity > 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memRecipients) AddNeed(ctx context.Context, need *models.RecipientNeed) (*models.RecipientNeed, error) {
	need.ID = r.s.id()
	r.s.needs[need.RecipientID] = append(r.s.needs[need.RecipientID], *need)
	return need, nil
}

func (r memRecipients) ActiveNeeds(ctx context.Context, recipientID int64) ([]models.RecipientNeed, error) {
	var out []models.RecipientNeed
	for _, n := range r.s.needs[recipientID] {
		if n.IsActive {
			out = append(out, n)
		}
	}
	return out, nil
}

type memVolunteers struct{ s *memStore }

func (r memVolunteers) Create(ctx context.Context, v *models.VolunteerProfile) (*models.VolunteerProfile, error) {
	v.ID = r.s.id()
	r.s.volunteers[v.ID] = v
	return v, nil
}

func (r memVolunteers) GetByID(ctx context.Context, id int64) (*models.VolunteerProfile, error) {
	return r.s.volunteers[id], nil
}

func (r memVolunteers) GetByIDForUpdate(ctx context.Context, id int64) (*models.VolunteerProfile, error) {
	return r.s.volunteers[id], nil
}

func (r memVolunteers) Update(ctx context.Context, v *models.VolunteerProfile) (*models.VolunteerProfile, error) {
	r.s.volunteers[v.ID] = v
	return v, nil
}

func (r memVolunteers) ListDispatchable(ctx context.Context, exclude []int64) ([]*models.VolunteerProfile, error) {
	skip := map[int64]bool{}
	for _, id := range exclude {
		skip[id] = true
	}
	var out []*models.VolunteerProfile
	for _, v := range r.s.volunteers {
		if v.IsAvailable && v.IsVerified && !skip[v.ID] {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memCategories struct{ s *memStore }

func (r memCategories) Create(ctx context.Context, c *models.FoodCategory) (*models.FoodCategory, error) {
	c.ID = r.s.id()
	r.s.categories[c.ID] = c
	return c, nil
}

func (r memCategories) GetByID(ctx context.Context, id int64) (*models.FoodCategory, error) {
	return r.s.categories[id], nil
}

func (r memCategories) List(ctx context.Context) ([]*models.FoodCategory, error) {
	var out []*models.FoodCategory
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memItems struct{ s *memStore }

func (r memItems) Create(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error) {
	item.ID = r.s.id()
	r.s.items[item.ID] = item
	return item, nil
}

func (r memItems) GetByID(ctx context.Context, id int64) (*models.FoodItem, error) {
	return r.s.items[id], nil
}

func (r memItems) GetByIDForUpdate(ctx context.Context, id int64) (*models.FoodItem, error) {
	return r.s.items[id], nil
}

func (r memItems) Update(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error) {
	r.s.items[item.ID] = item
	return item, nil
}

func (r memItems) ListAvailable(ctx context.Context) ([]*models.FoodItem, error) {
	var out []*models.FoodItem
	for _, item := range r.s.items {
		if item.IsAvailable {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}

func (r memItems) ListUrgent(ctx context.Context) ([]*models.FoodItem, error) {
	var out []*models.FoodItem
	for _, item := range r.s.items {
		if item.IsAvailable && (item.UrgencyLevel == models.UrgencyCritical || item.UrgencyLevel == models.UrgencyHigh) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}

type memDonations struct{ s *memStore }

func (r memDonations) withItems(d *models.Donation) *models.Donation {
	if d == nil {
		return nil
	}
	d.Items = nil
	for _, claim := range r.s.claims {
		if claim.DonationID == d.ID {
			d.Items = append(d.Items, claim)
		}
	}
	return d
}

func (r memDonations) Create(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	d.ID = r.s.id()
	d.CreatedAt = time.Now()
	r.s.donations[d.ID] = d
	return d, nil
}

func (r memDonations) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	return r.withItems(r.s.donations[id]), nil
}

func (r memDonations) GetByIDForUpdate(ctx context.Context, id int64) (*models.Donation, error) {
	return r.withItems(r.s.donations[id]), nil
}

func (r memDonations) Update(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	d.UpdatedAt = time.Now()
	r.s.donations[d.ID] = d
	return r.withItems(d), nil
}

func (r memDonations) List(ctx context.Context, filters repository.DonationFilters) ([]*models.Donation, error) {
	var out []*models.Donation
	for _, d := range r.s.donations {
		if filters.Status != nil && d.Status != *filters.Status {
			continue
		}
		if filters.DonorID != nil && d.DonorID != *filters.DonorID {
			continue
		}
		if filters.RecipientID != nil && d.RecipientID != *filters.RecipientID {
			continue
		}
		if filters.VolunteerID != nil && (d.VolunteerID == nil || *d.VolunteerID != *filters.VolunteerID) {
			continue
		}
		out = append(out, r.withItems(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memDonations) AddItem(ctx context.Context, claim *models.DonationItem) (*models.DonationItem, error) {
	claim.ID = r.s.id()
	r.s.claims = append(r.s.claims, *claim)
	return claim, nil
}

func (r memDonations) ListManualAssignmentDue(ctx context.Context, cutoff time.Time) ([]*models.Donation, error) {
	var out []*models.Donation
	for _, d := range r.s.donations {
		if d.Status == models.DonationStatusManualAssignment && d.ScheduledPickupTime.Before(cutoff) {
			out = append(out, r.withItems(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memDonations) HasOpenClaim(ctx context.Context, foodItemID int64) (bool, error) {
	for _, claim := range r.s.claims {
		d := r.s.donations[claim.DonationID]
		if claim.FoodItemID == foodItemID && d != nil && d.Status == models.DonationStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r memDonations) HasOpenClaimByRecipient(ctx context.Context, foodItemID, recipientID int64) (bool, error) {
	open := map[models.DonationStatus]bool{
		models.DonationStatusPending:   true,
		models.DonationStatusConfirmed: true,
		models.DonationStatusInTransit: true,
	}
	for _, claim := range r.s.claims {
		d := r.s.donations[claim.DonationID]
		if claim.FoodItemID == foodItemID && d != nil && d.RecipientID == recipientID && open[d.Status] {
			return true, nil
		}
	}
	return false, nil
}

type memRequests struct{ s *memStore }

func (r memRequests) Create(ctx context.Context, req *models.DeliveryRequest) (*models.DeliveryRequest, error) {
	req.ID = r.s.id()
	req.CreatedAt = time.Now()
	r.s.requests[req.ID] = req
	return req, nil
}

func (r memRequests) GetByID(ctx context.Context, id int64) (*models.DeliveryRequest, error) {
	return r.s.requests[id], nil
}

func (r memRequests) GetByIDForUpdate(ctx context.Context, id int64) (*models.DeliveryRequest, error) {
	return r.s.requests[id], nil
}

func (r memRequests) Update(ctx context.Context, req *models.DeliveryRequest) (*models.DeliveryRequest, error) {
	r.s.requests[req.ID] = req
	return req, nil
}

func (r memRequests) ListByDonation(ctx context.Context, donationID int64) ([]*models.DeliveryRequest, error) {
	var out []*models.DeliveryRequest
	for _, req := range r.s.requests {
		if req.DonationID == donationID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memRequests) ListByVolunteer(ctx context.Context, volunteerID int64) ([]*models.DeliveryRequest, error) {
	var out []*models.DeliveryRequest
	for _, req := range r.s.requests {
		if req.VolunteerID == volunteerID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memRequests) ContactedVolunteerIDs(ctx context.Context, donationID int64) ([]int64, error) {
	var ids []int64
	for _, req := range r.s.requests {
		if req.DonationID == donationID {
			ids = append(ids, req.VolunteerID)
		}
	}
	return ids, nil
}

func (r memRequests) ExpirePendingExcept(ctx context.Context, donationID, acceptedID int64) error {
	for _, req := range r.s.requests {
		if req.DonationID == donationID && req.ID != acceptedID && req.Status == models.RequestStatusPending {
			req.Status = models.RequestStatusExpired
		}
	}
	return nil
}

func (r memRequests) MarkAllCompleted(ctx context.Context, donationID int64) error {
	for _, req := range r.s.requests {
		if req.DonationID == donationID {
			req.Status = models.RequestStatusCompleted
		}
	}
	return nil
}

type memNotes struct{ s *memStore }

func (r memNotes) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	n.ID = r.s.id()
	n.CreatedAt = time.Now()
	r.s.notes = append(r.s.notes, n)
	return n, nil
}

func (r memNotes) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, n := range r.s.notes {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r memNotes) MarkRead(ctx context.Context, id int64) error {
	for _, n := range r.s.notes {
		if n.ID == id {
			n.IsRead = true
		}
	}
	return nil
}

type memImpact struct{ s *memStore }

func (r memImpact) Create(ctx context.Context, m *models.ImpactMetrics) (*models.ImpactMetrics, error) {
	m.ID = r.s.id()
	r.s.impact[m.DonationID] = m
	return m, nil
}

func (r memImpact) GetByDonation(ctx context.Context, donationID int64) (*models.ImpactMetrics, error) {
	return r.s.impact[donationID], nil
}
