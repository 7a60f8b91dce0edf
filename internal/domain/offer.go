package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Recalculate recomputes every line total and the offer's subtotal, VAT and
// grand total from the lines. Amounts are rounded to 2 decimals per line,
// matching how they are printed and invoiced.
func (o *Offer) Recalculate() {
	subtotal := decimal.Zero
	for i := range o.Lines {
		line := &o.Lines[i]
		gross := line.Quantity.Mul(line.UnitPrice)
		if !line.DiscountPct.IsZero() {
			gross = gross.Mul(hundred.Sub(line.DiscountPct)).Div(hundred)
		}
		line.LineTotal = gross.Round(2)
		subtotal = subtotal.Add(line.LineTotal)
	}
	o.Subtotal = subtotal
	o.VATAmount = subtotal.Mul(o.VATRate).Div(hundred).Round(2)
	o.Total = o.Subtotal.Add(o.VATAmount)
}

// CanTransition reports whether the offer may move to the target status.
func (o Offer) CanTransition(to OfferStatus) bool {
	switch to {
	case OfferStatusPending:
		return o.Status == OfferStatusDraft
	case OfferStatusAccepted, OfferStatusDeclined:
		return o.Status == OfferStatusPending
	case OfferStatusArchived:
		return o.Status == OfferStatusDraft || o.Status == OfferStatusPending || o.Status == OfferStatusDeclined
	default:
		return false
	}
}

// Editable reports whether offer content may still change.
func (o Offer) Editable() bool {
	return o.Status == OfferStatusDraft
}

// PubliclyVisible reports whether the offer may be served to an
// unauthenticated portal visitor holding its token. Only pending offers
// with a minted public token are reachable from outside.
func (o Offer) PubliclyVisible() bool {
	return o.Status == OfferStatusPending && o.PublicToken != nil && *o.PublicToken != ""
}

// Expired reports whether the offer's validity window has passed. Expiry is
// informational; the offer stays pending until decided or archived.
func (o Offer) Expired(now time.Time) bool {
	return o.ValidUntil != nil && now.After(*o.ValidUntil)
}
