package relay

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sngm3741/webform-relay/internal/message/domain"
)

var (
	// ErrEmptyForm is returned when a submission body carries no pairs at all.
	ErrEmptyForm = errors.New("empty form body")
	// ErrMalformedPair is returned for a pair without an "=" separator.
	ErrMalformedPair = errors.New("malformed form pair")
)

// DecodeForm parses a URL-encoded body. Pairs are split on "&" and then on the
// first "=", and each side is percent-decoded with "+" read as a space.
// Parsing is strict: a single pair without "=" rejects the whole body.
// On duplicate keys the last value wins.
func DecodeForm(body string) (domain.Submission, error) {
	if body == "" {
		return nil, ErrEmptyForm
	}

	sub := make(domain.Submission)
	for _, pair := range strings.Split(body, "&") {
		rawKey, rawValue, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedPair, pair)
		}
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("decode key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("decode value for %q: %w", key, err)
		}
		sub[key] = value
	}
	return sub, nil
}
