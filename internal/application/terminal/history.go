package terminal

import (
	"context"
	"iter"

	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
)

const (
	defaultHistoryLimit = 50
	historyPageSize     = 20
)

// StockHistory recorre el ledger de un ítem del más reciente al más antiguo, hasta limit entradas.
// Cada recorrido vuelve a pedir las páginas al backend; un error corta la secuencia.
func (s *Service) StockHistory(ctx context.Context, sess *Session, itemID string, limit int) iter.Seq2[entity.StockAdjustment, error] {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return func(yield func(entity.StockAdjustment, error) bool) {
		p, err := require(sess, access.PermManageStock)
		if err != nil {
			yield(entity.StockAdjustment{}, err)
			return
		}
		for offset := 0; offset < limit; {
			size := min(historyPageSize, limit-offset)
			page, err := s.backend.StockHistory(ctx, p, itemID, size, offset)
			if err != nil {
				yield(entity.StockAdjustment{}, s.observe(sess, "stock_history", err))
				return
			}
			for _, a := range page {
				if !yield(a, nil) {
					return
				}
			}
			if len(page) < size {
				return
			}
			offset += len(page)
		}
	}
}

// CollectHistory materializa la secuencia; devuelve lo leído hasta el primer error.
func CollectHistory(seq iter.Seq2[entity.StockAdjustment, error]) ([]entity.StockAdjustment, error) {
	out := make([]entity.StockAdjustment, 0)
	for a, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, a)
	}
	return out, nil
}

// StockHistoryPage una página del ledger del ítem, para clientes que paginan por su cuenta.
func (s *Service) StockHistoryPage(ctx context.Context, sess *Session, itemID string, limit, offset int) ([]entity.StockAdjustment, error) {
	p, err := require(sess, access.PermManageStock)
	if err != nil {
		return nil, err
	}
	page, err := s.backend.StockHistory(ctx, p, itemID, limit, offset)
	return page, s.observe(sess, "stock_history", err)
}
