// Package orders is the boundary to the storefront's order system. The
// pipeline threads the service's verification fields through to the
// customer without interpreting them.
package orders

import (
	"context"
	"regexp"
)

// Result is what the order service reports for one inquiry. The fields are
// passed through as-is: Verified means the lookup succeeded, Challenge is
// an identity question the customer must answer first, NeedsOrderNumber
// means no usable order number was found in the query.
type Result struct {
	Verified         bool
	Challenge        string
	NeedsOrderNumber bool
	Response         string
}

// Service looks up orders and runs identity verification.
type Service interface {
	// Lookup starts or continues an order inquiry. orderNumber may be "".
	Lookup(ctx context.Context, orderNumber, queryText string) (*Result, error)
	// VerifyChallenge checks the customer's answer to a pending challenge.
	VerifyChallenge(ctx context.Context, orderNumber, answer string) (*Result, error)
}

var orderNumberPattern = regexp.MustCompile(`#?\b(\d{5,7})\b`)

// ExtractOrderNumber pulls the first 5 to 7 digit order number out of free
// text, with or without a leading #. Both sides are anchored on a word
// boundary so a longer digit run (tracking number, phone number) never
// yields a truncated match. Returns "" when none is present.
func ExtractOrderNumber(text string) string {
	m := orderNumberPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
