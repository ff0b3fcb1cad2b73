package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	cbor "github.com/brianolson/cbor_go"
	"github.com/sngm3741/webform-relay/internal/message/domain"
)

// ErrInvalidPayload marks relay payloads that do not decode to a key/value object.
var ErrInvalidPayload = errors.New("invalid data format")

// Codec converts submissions to and from the relay interchange format.
// Both ends of the relay must agree on the codec.
type Codec interface {
	Name() string
	Marshal(sub domain.Submission) ([]byte, error)
	Unmarshal(payload []byte) (domain.Submission, error)
}

// NewCodec returns the codec registered under name ("json" or "cbor").
func NewCodec(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "cbor":
		return CBORCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown relay codec %q", name)
	}
}

// JSONCodec encodes submissions as a compact JSON object.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(sub domain.Submission) ([]byte, error) {
	return json.Marshal(map[string]string(sub))
}

func (JSONCodec) Unmarshal(payload []byte) (domain.Submission, error) {
	var sub domain.Submission
	if err := json.Unmarshal(payload, &sub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if sub == nil {
		// "null" decodes without error but is not an object.
		return nil, fmt.Errorf("%w: not an object", ErrInvalidPayload)
	}
	return sub, nil
}

// CBORCodec encodes submissions as a CBOR map of text strings.
type CBORCodec struct{}

func (CBORCodec) Name() string { return "cbor" }

func (CBORCodec) Marshal(sub domain.Submission) ([]byte, error) {
	return cbor.Dumps(map[string]string(sub))
}

func (CBORCodec) Unmarshal(payload []byte) (domain.Submission, error) {
	var raw interface{}
	if err := cbor.NewDecoder(bytes.NewReader(payload)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	sub := make(domain.Submission)
	switch m := raw.(type) {
	case map[string]interface{}:
		for k, v := range m {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: value for %q is %T", ErrInvalidPayload, k, v)
			}
			sub[k] = s
		}
	case map[interface{}]interface{}:
		for k, v := range m {
			ks, kok := k.(string)
			vs, vok := v.(string)
			if !kok || !vok {
				return nil, fmt.Errorf("%w: non-string entry %v", ErrInvalidPayload, k)
			}
			sub[ks] = vs
		}
	default:
		return nil, fmt.Errorf("%w: not a map", ErrInvalidPayload)
	}
	return sub, nil
}
