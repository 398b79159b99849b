package store

import (
	"sync"

	"github.com/efreitasn/liveauction/internal/domain"
	"github.com/google/btree"
)

// saleLess orders the sale book by price descending, then sold_at
// ascending, then sale_id ascending. Min() is the most expensive sale,
// with the earliest sale winning ties.
func saleLess(a, b *domain.Sale) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	if !a.SoldAt.Equal(b.SoldAt) {
		return a.SoldAt.Before(b.SoldAt)
	}
	return a.SaleID < b.SaleID
}

// SaleSummary aggregates an auction's settled sales.
type SaleSummary struct {
	Count   int
	Total   int64
	Highest *domain.Sale // nil when nothing has been sold
}

// SaleStore is a thread-safe in-memory sale book per auction, kept in a
// B-tree ordered by price so the top sales are an in-order walk.
type SaleStore struct {
	mu     sync.RWMutex
	books  map[string]*btree.BTreeG[*domain.Sale] // auction_id → sales
	totals map[string]int64                       // auction_id → coins spent
}

// NewSaleStore creates an empty SaleStore.
func NewSaleStore() *SaleStore {
	return &SaleStore{
		books:  make(map[string]*btree.BTreeG[*domain.Sale]),
		totals: make(map[string]int64),
	}
}

// Record adds a settled sale to its auction's book.
func (s *SaleStore) Record(sale *domain.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const degree = 16
	book, ok := s.books[sale.AuctionID]
	if !ok {
		book = btree.NewG[*domain.Sale](degree, saleLess)
		s.books[sale.AuctionID] = book
	}
	if _, replaced := book.ReplaceOrInsert(sale); !replaced {
		s.totals[sale.AuctionID] += sale.Price
	}
}

// Top returns up to n sales for the auction, most expensive first.
func (s *SaleStore) Top(auctionID string, n int) []*domain.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Sale, 0)
	book, ok := s.books[auctionID]
	if !ok || n <= 0 {
		return result
	}
	book.Ascend(func(sale *domain.Sale) bool {
		result = append(result, sale)
		return len(result) < n
	})
	return result
}

// Summary returns the count, total, and highest sale for the auction.
func (s *SaleStore) Summary(auctionID string) SaleSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[auctionID]
	if !ok {
		return SaleSummary{}
	}
	summary := SaleSummary{
		Count: book.Len(),
		Total: s.totals[auctionID],
	}
	if top, ok := book.Min(); ok {
		summary.Highest = top
	}
	return summary
}
