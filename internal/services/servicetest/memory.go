// Package servicetest provides in-memory repositories with the same
// uniqueness and not-found behaviour as the MongoDB stores.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medlab-api/internal/apperr"
	"github.com/harentsoaR/medlab-api/internal/models"
	"github.com/harentsoaR/medlab-api/internal/pagination"
)

// -- categories --

type CategoryRepo struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]*models.Category
}

func NewCategoryRepo() *CategoryRepo {
	return &CategoryRepo{categories: make(map[primitive.ObjectID]*models.Category)}
}

func (f *CategoryRepo) Create(_ context.Context, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return apperr.Conflict("Category already exists")
		}
	}
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *CategoryRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return true, nil
		}
	}
	return false, nil
}

// List matches search against names and descriptions, ignoring case. Hits
// are ranked by the same weights as the MongoDB pipeline, newest first on
// ties.
func (f *CategoryRepo) List(_ context.Context, search string, p pagination.Params) ([]models.Category, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	type hit struct {
		category models.Category
		score    int
	}
	var hits []hit
	for _, c := range f.categories {
		if s, ok := score(c, search); ok {
			hits = append(hits, hit{category: *c, score: s})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].category.CreatedAt.After(hits[j].category.CreatedAt)
	})
	out := make([]models.Category, len(hits))
	for i, h := range hits {
		out[i] = h.category
	}
	return page(out, p), int64(len(out)), nil
}

// score weighs a name hit 5, a test name 4, the description 2 and a test
// description 1.
func score(c *models.Category, search string) (int, bool) {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return 0, true
	}
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), term) }
	var testName, testDescription bool
	for _, t := range c.Tests {
		testName = testName || contains(t.Name)
		testDescription = testDescription || contains(t.Description)
	}
	total := 0
	for _, w := range []struct {
		hit    bool
		weight int
	}{
		{contains(c.Name), 5},
		{testName, 4},
		{contains(c.Description), 2},
		{testDescription, 1},
	} {
		if w.hit {
			total += w.weight
		}
	}
	return total, total > 0
}

func page[T any](items []T, p pagination.Params) []T {
	start := int(p.Skip())
	if start > len(items) {
		start = len(items)
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, 0, end-start)
	return append(out, items[start:end]...)
}

func (f *CategoryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, apperr.NotFound("Category not found")
	}
	cp := *c
	cp.Tests = append([]models.Test(nil), c.Tests...)
	return &cp, nil
}

func (f *CategoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return apperr.NotFound("Category not found")
	}
	delete(f.categories, id)
	return nil
}

func (f *CategoryRepo) AppendTest(_ context.Context, categoryID primitive.ObjectID, t *models.Test) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[categoryID]
	if !ok {
		return apperr.NotFound("Category not found")
	}
	if c.HasTestNamed(t.Name) {
		return apperr.Conflict("Test with this name already exists in this category")
	}
	c.Tests = append(c.Tests, *t)
	return nil
}

func (f *CategoryRepo) RemoveTest(_ context.Context, categoryID, testID primitive.ObjectID, _ *primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[categoryID]
	if !ok {
		return apperr.NotFound("Category not found")
	}
	i := c.TestIndex(testID)
	if i < 0 {
		return apperr.NotFound("Test not found")
	}
	c.RemoveTestAt(i)
	return nil
}

// -- orders --

type OrderRepo struct {
	mu     sync.Mutex
	orders []*models.Order
	// taken holds order numbers that collide on insert.
	taken map[string]bool
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{taken: make(map[string]bool)}
}

func (f *OrderRepo) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.orders)), nil
}

func (f *OrderRepo) Create(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.taken[o.OrderNumber] {
		return apperr.Conflict("Order number already exists")
	}
	f.taken[o.OrderNumber] = true
	cp := *o
	f.orders = append(f.orders, &cp)
	return nil
}

func (f *OrderRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Order not found")
}

func (f *OrderRepo) List(_ context.Context, filter models.OrderFilter, p pagination.Params) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Order, 0)
	for i := len(f.orders) - 1; i >= 0; i-- {
		o := f.orders[i]
		if filter.PatientID != nil && (o.PatientID == nil || *o.PatientID != *filter.PatientID) {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return page(out, p), int64(len(out)), nil
}

func (f *OrderRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, u models.OrderStatusUpdate, at time.Time) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			o.Status = u.Status
			if u.Payment != "" {
				o.Payment = u.Payment
			}
			o.UpdatedAt = at
			cp := *o
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Order not found")
}

// -- patients --

type PatientRepo struct {
	mu       sync.Mutex
	patients map[primitive.ObjectID]*models.Patient
}

func NewPatientRepo() *PatientRepo {
	return &PatientRepo{patients: make(map[primitive.ObjectID]*models.Patient)}
}

func (f *PatientRepo) Create(_ context.Context, p *models.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.patients {
		if existing.Phone == p.Phone {
			return apperr.Conflict("An account with this phone number already exists")
		}
	}
	cp := *p
	f.patients[p.ID] = &cp
	return nil
}

func (f *PatientRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.patients[id]
	if !ok {
		return nil, apperr.NotFound("Patient not found")
	}
	cp := *p
	return &cp, nil
}

func (f *PatientRepo) GetByPhone(_ context.Context, phone string) (*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.patients {
		if p.Phone == phone {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Patient not found")
}

func (f *PatientRepo) Update(_ context.Context, p *models.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.patients[p.ID]; !ok {
		return apperr.NotFound("Patient not found")
	}
	cp := *p
	f.patients[p.ID] = &cp
	return nil
}

// -- laboratories --

type LabRepo struct {
	mu   sync.Mutex
	labs map[primitive.ObjectID]*models.Laboratory
}

func NewLabRepo() *LabRepo {
	return &LabRepo{labs: make(map[primitive.ObjectID]*models.Laboratory)}
}

func (f *LabRepo) Create(_ context.Context, lab *models.Laboratory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.labs {
		if existing.Email == lab.Email {
			return apperr.Conflict("An account with this email already exists")
		}
	}
	cp := *lab
	f.labs[lab.ID] = &cp
	return nil
}

func (f *LabRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Laboratory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lab, ok := f.labs[id]
	if !ok {
		return nil, apperr.NotFound("Laboratory not found")
	}
	cp := *lab
	return &cp, nil
}

func (f *LabRepo) GetByEmail(_ context.Context, email string) (*models.Laboratory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lab := range f.labs {
		if lab.Email == email {
			cp := *lab
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Laboratory not found")
}

func (f *LabRepo) Update(_ context.Context, lab *models.Laboratory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.labs[lab.ID]; !ok {
		return apperr.NotFound("Laboratory not found")
	}
	cp := *lab
	f.labs[lab.ID] = &cp
	return nil
}

// Tests returns a copy of the tests held by the category.
func (f *CategoryRepo) Tests(id primitive.ObjectID) []models.Test {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil
	}
	return append([]models.Test(nil), c.Tests...)
}

// Len returns the number of stored categories.
func (f *CategoryRepo) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.categories)
}

// Reserve makes later inserts with number fail as duplicates.
func (f *OrderRepo) Reserve(number string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taken[number] = true
}

// Len returns the number of stored orders.
func (f *OrderRepo) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

// PlainHasher "hashes" by prefixing and counts Hash calls.
type PlainHasher struct {
	mu     sync.Mutex
	hashes int
}

func (h *PlainHasher) Hash(_ context.Context, password string) (string, error) {
	h.mu.Lock()
	h.hashes++
	h.mu.Unlock()
	return "hashed:" + password, nil
}

func (h *PlainHasher) Compare(_ context.Context, password, hash string) (bool, error) {
	return hash == "hashed:"+password, nil
}

// Calls returns the number of Hash calls.
func (h *PlainHasher) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashes
}
