package services

import (
	"context"

	"github.com/poofware/application-service/internal/models"
	"github.com/poofware/application-service/internal/utils"
)

// MaxQuote is the largest value the random quoter returns.
const MaxQuote = 999

// Quoter prices a validated application.
type Quoter interface {
	Quote(ctx context.Context, doc models.Document) (int, error)
}

// QuoterFunc adapts a plain function to Quoter.
type QuoterFunc func(ctx context.Context, doc models.Document) (int, error)

func (f QuoterFunc) Quote(ctx context.Context, doc models.Document) (int, error) {
	return f(ctx, doc)
}

// NewRandomQuoter returns the placeholder pricer: a uniform draw from
// [0, MaxQuote] that ignores the application entirely. It is not a premium.
func NewRandomQuoter() Quoter {
	return QuoterFunc(func(context.Context, models.Document) (int, error) {
		return utils.RandomIntN(MaxQuote + 1)
	})
}

// FixedQuoter always returns n.
func FixedQuoter(n int) Quoter {
	return QuoterFunc(func(context.Context, models.Document) (int, error) {
		return n, nil
	})
}
