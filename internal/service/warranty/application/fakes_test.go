package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"veritag/internal/service/warranty/domain"
)

// 内存版仓储，带互斥锁，足以验证用例层的编排和并发语义。

type fakeQRRepo struct {
	mu     sync.Mutex
	nextID uint
	codes  map[uint]*domain.QRCode
}

func newFakeQRRepo() *fakeQRRepo {
	return &fakeQRRepo{codes: make(map[uint]*domain.QRCode)}
}

func (r *fakeQRRepo) CreateBatch(_ context.Context, codes []*domain.QRCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, code := range codes {
		r.nextID++
		code.ID = r.nextID
		clone := *code
		r.codes[code.ID] = &clone
	}
	return nil
}

func (r *fakeQRRepo) FindBySerial(_ context.Context, serial string) (*domain.QRCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, code := range r.codes {
		if code.SerialNumber == serial {
			clone := *code
			return &clone, nil
		}
	}
	return nil, domain.ErrQRCodeNotFound
}

func (r *fakeQRRepo) FindByIDs(_ context.Context, ids []uint) ([]*domain.QRCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.QRCode
	for _, id := range ids {
		if code, ok := r.codes[id]; ok {
			clone := *code
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeQRRepo) FindByProduct(_ context.Context, productID string) ([]*domain.QRCode, error) {
	return r.filter(func(c *domain.QRCode) bool { return c.ProductID == productID }), nil
}

func (r *fakeQRRepo) FindByBatch(_ context.Context, batchID string) ([]*domain.QRCode, error) {
	return r.filter(func(c *domain.QRCode) bool { return c.BatchID == batchID }), nil
}

func (r *fakeQRRepo) FindByShop(_ context.Context, shopID string) ([]*domain.QRCode, error) {
	return r.filter(func(c *domain.QRCode) bool { return c.AssignedShopID == shopID }), nil
}

func (r *fakeQRRepo) FindAll(_ context.Context) ([]*domain.QRCode, error) {
	return r.filter(func(*domain.QRCode) bool { return true }), nil
}

func (r *fakeQRRepo) filter(keep func(*domain.QRCode) bool) []*domain.QRCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.QRCode
	for id := uint(1); id <= r.nextID; id++ {
		if code, ok := r.codes[id]; ok && keep(code) {
			clone := *code
			out = append(out, &clone)
		}
	}
	return out
}

func (r *fakeQRRepo) AssignShop(_ context.Context, ids []uint, shopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if code, ok := r.codes[id]; ok {
			code.AssignedShopID = shopID
		}
	}
	return nil
}

// Activate 在锁内完成检查和写入，模拟数据库条件 UPDATE 的原子性。
func (r *fakeQRRepo) Activate(_ context.Context, serial, actingShopID string, act domain.Activation) (*domain.QRCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, code := range r.codes {
		if code.SerialNumber != serial {
			continue
		}
		if err := code.Activate(actingShopID, act); err != nil {
			return nil, err
		}
		clone := *code
		return &clone, nil
	}
	return nil, domain.ErrQRCodeNotFound
}

func (r *fakeQRRepo) DeleteByIDs(_ context.Context, ids []uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.codes[id]; ok {
			delete(r.codes, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeQRRepo) DeleteByBatch(_ context.Context, batchID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, code := range r.codes {
		if code.BatchID == batchID {
			delete(r.codes, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeQRRepo) FindMissingBatch(_ context.Context) ([]*domain.QRCode, error) {
	return r.filter(func(c *domain.QRCode) bool { return c.BatchID == "" }), nil
}

func (r *fakeQRRepo) BackfillBatch(_ context.Context, ids []uint, batchID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if code, ok := r.codes[id]; ok && code.BatchID == "" {
			code.BatchID = batchID
			n++
		}
	}
	return n, nil
}

func (r *fakeQRRepo) AggregateBatches(_ context.Context) ([]domain.BatchSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byBatch := make(map[string]*domain.BatchSummary)
	var order []string
	for id := uint(1); id <= r.nextID; id++ {
		code, ok := r.codes[id]
		if !ok || code.BatchID == "" {
			continue
		}
		summary, ok := byBatch[code.BatchID]
		if !ok {
			summary = &domain.BatchSummary{
				BatchID:   code.BatchID,
				ProductID: code.ProductID,
				CreatedAt: code.CreatedAt,
			}
			byBatch[code.BatchID] = summary
			order = append(order, code.BatchID)
		}
		summary.Count++
		if code.IsActivated() {
			summary.ActivatedCount++
		}
		if code.IsAssigned() {
			summary.AssignedCount++
		}
	}
	out := make([]domain.BatchSummary, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		out = append(out, *byBatch[order[i]])
	}
	return out, nil
}

func (r *fakeQRRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.codes)), nil
}

func (r *fakeQRRepo) CountActivated(_ context.Context) (int64, error) {
	return int64(len(r.filter((*domain.QRCode).IsActivated))), nil
}

func (r *fakeQRRepo) CountActivatedBetween(_ context.Context, from, to time.Time) (int64, error) {
	matches := r.filter(func(c *domain.QRCode) bool {
		if !c.IsActivated() {
			return false
		}
		at := c.Activation.ActivatedAt
		return !at.Before(from) && at.Before(to)
	})
	return int64(len(matches)), nil
}

func (r *fakeQRRepo) TopActivatedProducts(_ context.Context, limit int) ([]domain.ProductActivationCount, error) {
	counts := make(map[string]int64)
	for _, code := range r.filter((*domain.QRCode).IsActivated) {
		counts[code.ProductID]++
	}
	var out []domain.ProductActivationCount
	for productID, count := range counts {
		out = append(out, domain.ProductActivationCount{ProductID: productID, Count: count})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   uint
	products map[string]*domain.Product
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*domain.Product)}
	for _, p := range products {
		r.nextID++
		p.ID = r.nextID
		r.products[p.ProductID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	r.products[p.ProductID] = p
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ProductID] = p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.products {
		if p.ID == id {
			delete(r.products, key)
		}
	}
	return nil
}

func (r *fakeProductRepo) FindByProductID(_ context.Context, productID string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[productID]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uint) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *fakeProductRepo) FindByProductIDs(_ context.Context, productIDs []string) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, id := range productIDs {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindAll(_ context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

type fakeShopRepo struct {
	mu     sync.Mutex
	nextID uint
	shops  map[string]*domain.Shop
}

func newFakeShopRepo(shops ...*domain.Shop) *fakeShopRepo {
	r := &fakeShopRepo{shops: make(map[string]*domain.Shop)}
	for _, s := range shops {
		r.nextID++
		s.ID = r.nextID
		r.shops[s.ShopID] = s
	}
	return r
}

func (r *fakeShopRepo) Create(_ context.Context, s *domain.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.shops[s.ShopID] = s
	return nil
}

func (r *fakeShopRepo) Update(_ context.Context, s *domain.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shops[s.ShopID] = s
	return nil
}

func (r *fakeShopRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, s := range r.shops {
		if s.ID == id {
			delete(r.shops, key)
		}
	}
	return nil
}

func (r *fakeShopRepo) FindByShopID(_ context.Context, shopID string) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.shops[shopID]; ok {
		return s, nil
	}
	return nil, domain.ErrShopNotFound
}

func (r *fakeShopRepo) FindByID(_ context.Context, id uint) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shops {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrShopNotFound
}

func (r *fakeShopRepo) FindByName(_ context.Context, shopName string) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shops {
		if strings.EqualFold(s.ShopName, shopName) {
			return s, nil
		}
	}
	return nil, domain.ErrShopNotFound
}

func (r *fakeShopRepo) FindAll(_ context.Context) ([]*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Shop
	for _, s := range r.shops {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeShopRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.shops)), nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	nextID     uint
	categories map[uint]*domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uint]*domain.Category)}
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	r.categories[c.ID] = c
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = c
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uint) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.categories[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *fakeCategoryRepo) FindByName(_ context.Context, name string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *fakeCategoryRepo) FindAll(_ context.Context) ([]*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

// fakeCache 记录失效次数，断言"任何标识变更都会打掉缓存"。
type fakeCache struct {
	mu          sync.Mutex
	batches     []domain.BatchSummary
	populated   bool
	invalidated int
}

func (c *fakeCache) Get(_ context.Context) ([]domain.BatchSummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches, c.populated, nil
}

func (c *fakeCache) Set(_ context.Context, batches []domain.BatchSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = batches
	c.populated = true
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = nil
	c.populated = false
	c.invalidated++
	return nil
}

// fakePublisher 收集发布的事件，可配置成必然失败。
type fakePublisher struct {
	mu     sync.Mutex
	events []*domain.QRCodeActivated
	fail   bool
}

func (p *fakePublisher) PublishActivated(_ context.Context, event *domain.QRCodeActivated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return context.DeadlineExceeded
	}
	p.events = append(p.events, event)
	return nil
}
