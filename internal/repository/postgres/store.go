package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shareeat/shareeat/internal/repository"
)

// querier is satisfied by both *sql.DB and *sql.Tx, letting one
// repository implementation serve plain and transactional access.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the postgres-backed repository.Store.
type Store struct {
	db *sql.DB // nil when the store is transaction-scoped
	q  querier
}

// NewStore creates the root store over a connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// InTx runs fn against a transaction-scoped Store. Nested calls reuse
// the enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Store{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Users() repository.UserRepository { return &userRepository{q: s.q} }

func (s *Store) Donors() repository.DonorRepository { return &donorRepository{q: s.q} }

func (s *Store) Recipients() repository.RecipientRepository { return &recipientRepository{q: s.q} }

func (s *Store) Volunteers() repository.VolunteerRepository { return &volunteerRepository{q: s.q} }

func (s *Store) Categories() repository.CategoryRepository { return &categoryRepository{q: s.q} }

func (s *Store) FoodItems() repository.FoodItemRepository { return &foodItemRepository{q: s.q} }

func (s *Store) Donations() repository.DonationRepository { return &donationRepository{q: s.q} }

func (s *Store) DeliveryRequests() repository.DeliveryRequestRepository {
	return &deliveryRequestRepository{q: s.q}
}

func (s *Store) Notifications() repository.NotificationRepository {
	return &notificationRepository{q: s.q}
}

func (s *Store) Impact() repository.ImpactRepository { return &impactRepository{q: s.q} }
