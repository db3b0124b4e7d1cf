package service

import (
	"context"
	"sync"

	"mindgym-api/internal/client"
	"mindgym-api/internal/model"
	"mindgym-api/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// In-memory fakes for the repository and client interfaces. Mutex-protected so
// the concurrency tests can hammer them from multiple goroutines.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[bson.ObjectID]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	user.ID = bson.NewObjectID()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id bson.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) MarkPaid(_ context.Context, id bson.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if u.HasPaid {
		return false, nil
	}
	u.HasPaid = true
	return true, nil
}

func (r *fakeUserRepo) delete(id bson.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[bson.ObjectID]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[bson.ObjectID]*model.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = bson.NewObjectID()
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id bson.ObjectID) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type fakePaymentRepo struct {
	mu          sync.Mutex
	payments    map[string]*model.Payment
	completions int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[string]*model.Payment{}}
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.ID = bson.NewObjectID()
	if payment.Status == "" {
		payment.Status = model.PaymentStatusPending
	}
	cp := *payment
	r.payments[payment.CheckoutSessionID] = &cp
	return nil
}

func (r *fakePaymentRepo) FindByCheckoutID(_ context.Context, checkoutSessionID string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[checkoutSessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) MarkCompleted(_ context.Context, checkoutSessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[checkoutSessionID]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = model.PaymentStatusCompleted
	r.completions++
	return true, nil
}

type fakeStripeClient struct {
	mu sync.Mutex

	createdFor  []string
	nextSession *client.CheckoutSession
	createErr   error

	getSession *client.CheckoutSession
	getErr     error

	verifyEvent *client.CheckoutEvent
	verifyErr   error
}

func (c *fakeStripeClient) CreateCheckoutSession(_ context.Context, userID string) (*client.CheckoutSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.createdFor = append(c.createdFor, userID)
	return c.nextSession, nil
}

func (c *fakeStripeClient) GetCheckoutSession(_ context.Context, _ string) (*client.CheckoutSession, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.getSession, nil
}

func (c *fakeStripeClient) VerifyWebhook(_ []byte, _ string) (*client.CheckoutEvent, error) {
	if c.verifyErr != nil {
		return nil, c.verifyErr
	}
	return c.verifyEvent, nil
}
