package store

import "context"

// Repository is the persistence contract every entity controller is built on.
// FindByID reports absence through the boolean, never through an error.
type Repository[K comparable, E any] interface {
	FindAll(ctx context.Context) ([]E, error)
	FindByID(ctx context.Context, key K) (E, bool, error)
	Save(ctx context.Context, entity E) (E, error)
	Delete(ctx context.Context, entity E) error
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Schema describes how one entity type maps onto a table and its key.
type Schema[K comparable, E any] struct {
	// Name is the entity type name used in user-facing messages.
	Name      string
	Table     string
	KeyColumn string
	// Columns lists the non-key columns in the order Values returns them.
	Columns []string
	// Surrogate keys are assigned by the store when the entity's key is zero.
	Surrogate bool
	KeyOf     func(E) K
	WithKey   func(E, K) E
	Values    func(E) []any
	// Scan reads the key column followed by Columns.
	Scan func(rowScanner) (E, error)
	// SequenceKey converts a store-generated sequence value into a key.
	SequenceKey func(int64) K
}

func (s Schema[K, E]) hasZeroKey(entity E) bool {
	var zero K
	return s.KeyOf(entity) == zero
}

// Repositories holds one repository per entity, all backed by the same store.
type Repositories struct {
	Organizations   Repository[string, UCSBOrganization]
	DiningCommons   Repository[string, UCSBDiningCommons]
	HelpRequests    Repository[int64, HelpRequest]
	MenuItemReviews Repository[int64, MenuItemReview]
	Dates           Repository[int64, UCSBDate]
}

func NewMemoryRepositories() Repositories {
	return Repositories{
		Organizations:   NewMemoryRepository(OrganizationSchema),
		DiningCommons:   NewMemoryRepository(DiningCommonsSchema),
		HelpRequests:    NewMemoryRepository(HelpRequestSchema),
		MenuItemReviews: NewMemoryRepository(MenuItemReviewSchema),
		Dates:           NewMemoryRepository(DateSchema),
	}
}
