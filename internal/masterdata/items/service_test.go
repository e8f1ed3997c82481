package items

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockledger/stockledger/internal/masterdata/shared"
)

type memoryRepo struct {
	items  map[string]Item
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]Item{}, nextID: 1}
}

func (m *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]Item, int, error) {
	var out []Item
	for _, it := range m.items {
		if filters.Search != "" && !strings.Contains(it.Code, filters.Search) && !strings.Contains(it.Name, filters.Search) {
			continue
		}
		if filters.Disabled != nil && it.Disabled != *filters.Disabled {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, len(out), nil
}

func (m *memoryRepo) GetByCode(ctx context.Context, code string) (Item, error) {
	it, ok := m.items[code]
	if !ok {
		return Item{}, shared.ErrNotFound
	}
	return it, nil
}

func (m *memoryRepo) Create(ctx context.Context, item Item) (Item, error) {
	if _, exists := m.items[item.Code]; exists {
		return Item{}, shared.ErrDuplicate
	}
	item.ID = m.nextID
	m.nextID++
	m.items[item.Code] = item
	return item, nil
}

func (m *memoryRepo) Update(ctx context.Context, code string, item Item) error {
	existing, ok := m.items[code]
	if !ok {
		return shared.ErrNotFound
	}
	item.ID = existing.ID
	item.Code = code
	m.items[code] = item
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, code string) error {
	if _, ok := m.items[code]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, code)
	return nil
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Item{Code: "WIDGET"})
	require.ErrorIs(t, err, shared.ErrRequiredField)

	_, err = svc.Create(ctx, Item{Code: "WIDGET", Name: "Widget"})
	require.ErrorIs(t, err, shared.ErrRequiredField)

	_, err = svc.Create(ctx, Item{Code: "WIDGET", Name: "Widget", StockUOM: "Nos"})
	require.NoError(t, err)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Item{Code: "WIDGET", Name: "Widget", StockUOM: "Nos"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Item{Code: "WIDGET", Name: "Other", StockUOM: "Nos"})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestGetUpdateDeleteRoundTrip(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, Item{Code: "WIDGET", Name: "Widget", StockUOM: "Nos"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	require.NoError(t, svc.Update(ctx, "WIDGET", Item{Code: "WIDGET", Name: "Widget Mk2", StockUOM: "Nos"}))

	got, err := svc.Get(ctx, "WIDGET")
	require.NoError(t, err)
	require.Equal(t, "Widget Mk2", got.Name)

	require.NoError(t, svc.Delete(ctx, "WIDGET"))
	_, err = svc.Get(ctx, "WIDGET")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListFiltersDisabled(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Item{Code: "A", Name: "Alpha", StockUOM: "Nos"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Item{Code: "B", Name: "Beta", StockUOM: "Nos", Disabled: true})
	require.NoError(t, err)

	active := false
	items, total, err := svc.List(ctx, shared.ListFilters{Disabled: &active})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "A", items[0].Code)
}
