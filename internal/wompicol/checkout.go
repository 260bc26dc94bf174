package wompicol

import (
	"math"
	"net/url"

	"wompicol-be/internal/reference"
)

// CheckoutValues are the exact five values the form-rendering collaborator
// needs to build the redirect-to-pay form. This module does not render the
// form, it only owns the computation rules.
type CheckoutValues struct {
	PublicKey     string
	Currency      string
	AmountCents   int64
	ReferenceCode string
	RedirectURL   string
}

// AmountCents converts a host-currency amount to Wompi minor units. Wompi
// requires amounts whose last two digits are 00, so fractional cents round
// up to the nearest whole currency unit before the *100 conversion.
func AmountCents(amount float64) int64 {
	return int64(math.Ceil(amount)) * 100
}

// BuildCheckoutValues computes the collaborator contract for one checkout
// attempt. The reference is freshly encoded on every call since Wompi
// rejects duplicate reference codes.
func BuildCheckoutValues(orderRef string, amount float64, publicKey, baseURL string) (*CheckoutValues, error) {
	redirectURL, err := url.JoinPath(baseURL, ClientReturnPath)
	if err != nil {
		return nil, err
	}
	return &CheckoutValues{
		PublicKey:     publicKey,
		Currency:      CurrencyCOP,
		AmountCents:   AmountCents(amount),
		ReferenceCode: reference.Encode(orderRef),
		RedirectURL:   redirectURL,
	}, nil
}
