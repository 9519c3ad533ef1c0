package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accessflow/internal/common"
	"github.com/dmitrijs2005/accessflow/internal/credentials"
	"github.com/dmitrijs2005/accessflow/internal/logging"
	"github.com/dmitrijs2005/accessflow/internal/metrics"
	"github.com/dmitrijs2005/accessflow/internal/models"
	"github.com/dmitrijs2005/accessflow/internal/storage"
)

// Demo account seeded on first start.
const (
	DemoEmail    = "demo@accessflow.com"
	DemoPassword = "Demo1234!"
	DemoName     = "Demo User"
)

var demoCreatedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// SessionStore manages the account directory and the active session.
//
// Contract:
//   - Register: create an account and log it in; ErrDuplicateEmail if taken.
//   - Login: ErrInvalidCredentials for unknown email and wrong password alike.
//   - Logout: always succeeds, never touches the directory.
//   - UpdateProfile, DeleteAccount, AddOrder: ErrUnauthorized without a
//     session, ErrNotFound when the session's account no longer exists.
//
// Returned accounts never carry the password.
type SessionStore interface {
	Current(ctx context.Context) (*models.Account, error)
	Register(ctx context.Context, in models.NewAccountInput) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*models.Account, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Account, error)
	DeleteAccount(ctx context.Context) error
	AddOrder(ctx context.Context, in models.OrderInput) (*models.Order, error)
	Subscribe(fn func(*models.Account)) (unsubscribe func())
}

// AccountService is the SessionStore backed by a Store.
type AccountService struct {
	store    Store
	verifier credentials.Verifier
	log      logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	subs     notifier[*models.Account]
}

var _ SessionStore = (*AccountService)(nil)

// NewAccountService wires the service to its store and password verifier.
func NewAccountService(store Store, verifier credentials.Verifier, log logging.Logger, opts ...Option) *AccountService {
	o := buildOptions(opts)
	return &AccountService{
		store:    store,
		verifier: verifier,
		log:      log.With("component", "accounts"),
		metrics:  o.metrics,
		now:      o.now,
	}
}

func (s *AccountService) observe(op string, start time.Time, err error) {
	s.metrics.ObserveOp("session", op, start, err)
}

func (s *AccountService) loadAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if _, err := s.store.Read(ctx, storage.KeyAccounts, &accounts); err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) loadSession(ctx context.Context) (*models.Account, error) {
	var acc models.Account
	found, err := s.store.Read(ctx, storage.KeySession, &acc)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &acc, nil
}

func (s *AccountService) requireSession(ctx context.Context) (*models.Account, error) {
	cur, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, common.ErrUnauthorized
	}
	return cur, nil
}

func indexByID(accounts []models.Account, id int64) int {
	for i := range accounts {
		if accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func indexByEmail(accounts []models.Account, email string) int {
	for i := range accounts {
		if accounts[i].Email == email {
			return i
		}
	}
	return -1
}

// saveWithSession persists the directory and the session in one batch.
func (s *AccountService) saveWithSession(ctx context.Context, accounts []models.Account, session *models.Account) error {
	err := s.store.WriteMany(ctx,
		storage.Record{Key: storage.KeyAccounts, Value: accounts},
		storage.Record{Key: storage.KeySession, Value: session},
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (s *AccountService) publish(session *models.Account) {
	s.metrics.SetLoggedIn(session != nil)
	if session == nil {
		s.subs.emit(nil)
		return
	}
	s.subs.emit(session.Clone())
}

// Current returns the persisted session, or nil when logged out.
func (s *AccountService) Current(ctx context.Context) (*models.Account, error) {
	return s.loadSession(ctx)
}

// Register creates an account with a fresh id and makes it the session.
func (s *AccountService) Register(ctx context.Context, in models.NewAccountInput) (acc *models.Account, err error) {
	defer func(start time.Time) { s.observe("register", start, err) }(time.Now())

	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", common.ErrInvalidInput)
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	if indexByEmail(accounts, in.Email) >= 0 {
		s.log.Info(ctx, "registration rejected", "reason", "duplicate email")
		return nil, common.ErrDuplicateEmail
	}

	sealed, err := s.verifier.Seal(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to seal password: %w", err)
	}

	now := s.now()
	record := models.Account{
		ID:        nextID(now, maxAccountID(accounts)),
		Name:      in.Name,
		Email:     in.Email,
		Password:  sealed,
		CreatedAt: now,
		Orders:    []models.Order{},
	}

	accounts = append(accounts, record)
	session := record.Stripped()

	if err := s.saveWithSession(ctx, accounts, session); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "account registered", "id", record.ID)
	s.publish(session)
	return session.Clone(), nil
}

// Login checks the credentials against the directory and starts a session.
func (s *AccountService) Login(ctx context.Context, email, password string) (acc *models.Account, err error) {
	defer func(start time.Time) { s.observe("login", start, err) }(time.Now())

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	i := indexByEmail(accounts, email)
	if i < 0 || !s.verifier.Verify(accounts[i].Password, password) {
		s.log.Info(ctx, "login failed")
		return nil, common.ErrInvalidCredentials
	}

	session := accounts[i].Stripped()
	if err := s.store.Write(ctx, storage.KeySession, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.log.Info(ctx, "logged in", "id", session.ID)
	s.publish(session)
	return session.Clone(), nil
}

// Logout clears the session.
func (s *AccountService) Logout(ctx context.Context) (err error) {
	defer func(start time.Time) { s.observe("logout", start, err) }(time.Now())

	if err := s.store.Remove(ctx, storage.KeySession); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.log.Info(ctx, "logged out")
	s.publish(nil)
	return nil
}

// UpdateProfile merges the non-nil fields of upd into the session's account.
func (s *AccountService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (acc *models.Account, err error) {
	defer func(start time.Time) { s.observe("update_profile", start, err) }(time.Now())

	cur, err := s.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	i := indexByID(accounts, cur.ID)
	if i < 0 {
		return nil, common.ErrNotFound
	}
	record := accounts[i]

	if upd.Name != nil {
		record.Name = *upd.Name
	}

	if upd.Email != nil && *upd.Email != record.Email {
		if *upd.Email == "" {
			return nil, fmt.Errorf("email must not be empty: %w", common.ErrInvalidInput)
		}
		if indexByEmail(accounts, *upd.Email) >= 0 {
			return nil, common.ErrDuplicateEmail
		}
		record.Email = *upd.Email
	}

	if upd.Password != nil {
		if *upd.Password == "" {
			return nil, fmt.Errorf("password must not be empty: %w", common.ErrInvalidInput)
		}
		sealed, err := s.verifier.Seal(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to seal password: %w", err)
		}
		record.Password = sealed
	}

	accounts[i] = record
	session := record.Stripped()

	if err := s.saveWithSession(ctx, accounts, session); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "profile updated", "id", record.ID)
	s.publish(session)
	return session.Clone(), nil
}

// DeleteAccount ends the session and removes its account from the
// directory. Nothing changes when the account is already gone.
func (s *AccountService) DeleteAccount(ctx context.Context) (err error) {
	defer func(start time.Time) { s.observe("delete_account", start, err) }(time.Now())

	cur, err := s.requireSession(ctx)
	if err != nil {
		return err
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return err
	}

	i := indexByID(accounts, cur.ID)
	if i < 0 {
		return common.ErrNotFound
	}

	// The session goes first: a failure in between leaves a logged-out user
	// with an intact account, never a session for a deleted one.
	if err := s.store.Remove(ctx, storage.KeySession); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.publish(nil)

	accounts = append(accounts[:i], accounts[i+1:]...)
	if err := s.store.Write(ctx, storage.KeyAccounts, accounts); err != nil {
		s.log.Warn(ctx, "logged out but account not deleted", "id", cur.ID, "error", err)
		return fmt.Errorf("failed to save accounts: %w", err)
	}

	s.log.Info(ctx, "account deleted", "id", cur.ID)
	return nil
}

// AddOrder appends an order to the session's account.
func (s *AccountService) AddOrder(ctx context.Context, in models.OrderInput) (order *models.Order, err error) {
	defer func(start time.Time) { s.observe("add_order", start, err) }(time.Now())

	cur, err := s.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	i := indexByID(accounts, cur.ID)
	if i < 0 {
		return nil, common.ErrNotFound
	}

	now := s.now()
	o := models.Order{
		ID:        nextID(now, maxOrderID(accounts)),
		Date:      now,
		Reference: in.Reference,
		Items:     in.Items,
		Total:     in.Total,
		Shipping:  in.Shipping,
	}.Clone()

	accounts[i].Orders = append(accounts[i].Orders, o)
	session := accounts[i].Stripped()

	if err := s.saveWithSession(ctx, accounts, session); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "order added", "account", cur.ID, "order", o.ID)
	s.publish(session)

	out := o.Clone()
	return &out, nil
}

// SeedDemoAccount adds the demo account unless its email is already taken.
// The session is left untouched.
func (s *AccountService) SeedDemoAccount(ctx context.Context) error {
	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return err
	}
	if indexByEmail(accounts, DemoEmail) >= 0 {
		return nil
	}

	sealed, err := s.verifier.Seal(DemoPassword)
	if err != nil {
		return fmt.Errorf("failed to seal password: %w", err)
	}

	id := int64(1)
	if indexByID(accounts, id) >= 0 {
		id = nextID(s.now(), maxAccountID(accounts))
	}

	accounts = append(accounts, models.Account{
		ID:        id,
		Name:      DemoName,
		Email:     DemoEmail,
		Password:  sealed,
		CreatedAt: demoCreatedAt,
		Orders:    []models.Order{},
	})

	if err := s.store.Write(ctx, storage.KeyAccounts, accounts); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}

	s.log.Debug(ctx, "demo account seeded", "id", id)
	return nil
}

// Subscribe registers fn for session changes. fn receives a copy of the new
// session, or nil after logout and account deletion.
func (s *AccountService) Subscribe(fn func(*models.Account)) (unsubscribe func()) {
	return s.subs.subscribe(fn)
}
