package wire

import (
	"strings"

	"tradelink/internal/errors"
	"tradelink/pkg/exception"
)

// subscriptionSep joins the peer identity and its symbol list in
// REGISTERSTOCK and REGISTERINDEX payloads.
const subscriptionSep = "+"

// Basket is an ordered list of symbol or index tokens without duplicates.
type Basket []string

// NewBasket builds a basket, dropping blanks and repeats while keeping order.
func NewBasket(symbols ...string) Basket {
	seen := make(map[string]struct{}, len(symbols))
	b := make(Basket, 0, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		b = append(b, s)
	}
	return b
}

// ParseBasket splits a serialized basket.
func ParseBasket(s string) Basket {
	if s == "" {
		return Basket{}
	}
	return NewBasket(strings.Split(s, fieldSep)...)
}

func (b Basket) String() string {
	return strings.Join(b, fieldSep)
}

// Tokens returns the basket as a set for exact membership tests.
func (b Basket) Tokens() TokenSet {
	set := make(TokenSet, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	return set
}

// TokenSet is a parsed subscription list.
type TokenSet map[string]struct{}

// Contains reports exact token membership; "AA" is not in {"AAPL"}.
func (s TokenSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// EncodeSubscription builds a registration payload: identity+list.
func EncodeSubscription(identity string, b Basket) string {
	return identity + subscriptionSep + b.String()
}

// DecodeSubscription splits a registration payload.
func DecodeSubscription(payload string) (string, Basket, error) {
	identity, list, ok := strings.Cut(payload, subscriptionSep)
	if !ok || identity == "" {
		return "", nil, errors.Wrapf(exception.ErrMalformedPayload, "%q", payload)
	}
	return identity, ParseBasket(list), nil
}
