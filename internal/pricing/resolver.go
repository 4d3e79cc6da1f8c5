package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
	pkgerrors "github.com/sellerdeskhq/sellerdesk-backend/pkg/errors"
)

// ResolveRequest identifies the pricing context. The same request against the
// same price-book set always yields the same result; storage iteration order
// never influences the outcome.
type ResolveRequest struct {
	ProductID       string
	Currency        enums.Currency
	CustomerGroupID string
	AsOf            time.Time
}

// Resolution is the single applicable unit price for a request.
type Resolution struct {
	PriceBookID   uuid.UUID       `json:"price_book_id"`
	PriceBookName string          `json:"price_book_name"`
	ProductID     string          `json:"product_id"`
	Currency      enums.Currency  `json:"currency"`
	UnitAmount    decimal.Decimal `json:"unit_amount"`
	GroupMatched  bool            `json:"group_matched"`
}

type candidate struct {
	book   models.PriceBook
	amount decimal.Decimal
}

// resolve selects the winning price book for the request.
//
// Ranking, in order: exact customer-group match beats group-agnostic; a more
// specific validity window beats a less specific one (two bounds > one > none,
// narrower duration among fully bounded); is_default breaks ties only among
// group-agnostic books when no group-specific book matched. A surviving tie is
// a data-quality defect and is reported, never resolved by picking a winner.
func resolve(books []models.PriceBook, req ResolveRequest) (*Resolution, error) {
	var groupSpecific, groupAgnostic []candidate

	for _, book := range books {
		if book.Currency != req.Currency {
			continue
		}
		if !book.AppliesTo(req.AsOf) {
			continue
		}
		amount, ok := entryFor(book, req.ProductID)
		if !ok {
			continue
		}
		switch {
		case book.IsGroupAgnostic():
			groupAgnostic = append(groupAgnostic, candidate{book: book, amount: amount})
		case req.CustomerGroupID != "" && *book.CustomerGroupID == req.CustomerGroupID:
			groupSpecific = append(groupSpecific, candidate{book: book, amount: amount})
		}
		// Books scoped to a different customer group never apply.
	}

	if len(groupSpecific) > 0 {
		winner, tied := mostSpecific(groupSpecific)
		if tied {
			return nil, ambiguousError(req, groupSpecific)
		}
		return resolutionFrom(winner, req, true), nil
	}

	if len(groupAgnostic) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNoPriceFound, "no applicable price book").
			WithDetails(map[string]any{
				"product_id": req.ProductID,
				"currency":   string(req.Currency),
			})
	}

	winner, tied := mostSpecific(groupAgnostic)
	if tied {
		survivors := windowPeers(groupAgnostic)
		var defaults []candidate
		for _, c := range survivors {
			if c.book.IsDefault {
				defaults = append(defaults, c)
			}
		}
		if len(defaults) == 1 {
			return resolutionFrom(defaults[0], req, false), nil
		}
		return nil, ambiguousError(req, survivors)
	}
	return resolutionFrom(winner, req, false), nil
}

func entryFor(book models.PriceBook, productID string) (decimal.Decimal, bool) {
	for _, entry := range book.Entries {
		if entry.ProductID == productID {
			return entry.UnitAmount, true
		}
	}
	return decimal.Decimal{}, false
}

// mostSpecific returns the candidate with the most specific validity window,
// or tied=true when no single candidate wins.
func mostSpecific(candidates []candidate) (candidate, bool) {
	best := candidates[0]
	tied := false
	for _, c := range candidates[1:] {
		switch compareWindows(c.book, best.book) {
		case 1:
			best = c
			tied = false
		case 0:
			tied = true
		}
	}
	return best, tied
}

// windowPeers returns every candidate whose window specificity matches the
// most specific one found.
func windowPeers(candidates []candidate) []candidate {
	best, _ := mostSpecific(candidates)
	peers := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if compareWindows(c.book, best.book) == 0 {
			peers = append(peers, c)
		}
	}
	return peers
}

// compareWindows orders validity windows by specificity: more bounds win, and
// among fully bounded windows the narrower duration wins. Returns 1 when a is
// more specific than b, -1 when less, 0 when equally specific.
func compareWindows(a, b models.PriceBook) int {
	aBounds, bBounds := boundCount(a), boundCount(b)
	if aBounds != bBounds {
		if aBounds > bBounds {
			return 1
		}
		return -1
	}
	if aBounds == 2 {
		aSpan := a.ValidTo.Sub(*a.ValidFrom)
		bSpan := b.ValidTo.Sub(*b.ValidFrom)
		if aSpan < bSpan {
			return 1
		}
		if aSpan > bSpan {
			return -1
		}
	}
	return 0
}

func boundCount(book models.PriceBook) int {
	count := 0
	if book.ValidFrom != nil {
		count++
	}
	if book.ValidTo != nil {
		count++
	}
	return count
}

func resolutionFrom(c candidate, req ResolveRequest, groupMatched bool) *Resolution {
	return &Resolution{
		PriceBookID:   c.book.ID,
		PriceBookName: c.book.Name,
		ProductID:     req.ProductID,
		Currency:      req.Currency,
		UnitAmount:    c.amount,
		GroupMatched:  groupMatched,
	}
}

func ambiguousError(req ResolveRequest, tied []candidate) error {
	ids := make([]string, 0, len(tied))
	for _, c := range tied {
		ids = append(ids, c.book.ID.String())
	}
	return pkgerrors.New(pkgerrors.CodeAmbiguousPriceBook, "multiple price books tie for this request").
		WithDetails(map[string]any{
			"product_id":     req.ProductID,
			"currency":       string(req.Currency),
			"price_book_ids": ids,
		})
}
