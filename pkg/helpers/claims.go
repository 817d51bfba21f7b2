package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
)

// registered payload members written from ClaimSet fields rather than Claims
var reservedClaims = map[string]bool{"exp": true, "iss": true, "aud": true, "nbf": true, "iat": true}

// ClaimSet is the JWT payload: an ordered claim list plus the registered
// exp/iss/aud members. It implements jwt.Claims.
//
// On the wire every claim type becomes one member in first-seen order; a type
// with a single value is a string and a repeated type is an array, so
// "roles" held twice encodes as "roles":["User","Admin"]. Decoding flattens
// arrays back into one Claim per element, preserving order.
type ClaimSet struct {
	Claims    []entity.Claim
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
}

var _ jwt.Claims = (*ClaimSet)(nil)

func (c *ClaimSet) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.ExpiresAt.IsZero() {
		return nil, nil
	}
	return jwt.NewNumericDate(c.ExpiresAt), nil
}

func (c *ClaimSet) GetIssuedAt() (*jwt.NumericDate, error)  { return nil, nil }
func (c *ClaimSet) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c *ClaimSet) GetIssuer() (string, error)              { return c.Issuer, nil }

func (c *ClaimSet) GetSubject() (string, error) {
	sub, _ := entity.FirstClaim(c.Claims, entity.ClaimSubject)
	return sub, nil
}

func (c *ClaimSet) GetAudience() (jwt.ClaimStrings, error) {
	return jwt.ClaimStrings(c.Audience), nil
}

// MarshalJSON writes the payload object in claim order.
func (c ClaimSet) MarshalJSON() ([]byte, error) {
	order := make([]string, 0, len(c.Claims))
	values := make(map[string][]string, len(c.Claims))
	for _, cl := range c.Claims {
		if reservedClaims[cl.Type] {
			continue
		}
		if _, seen := values[cl.Type]; !seen {
			order = append(order, cl.Type)
		}
		values[cl.Type] = append(values[cl.Type], cl.Value)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	member := func(key string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}

	for _, key := range order {
		vs := values[key]
		var err error
		if len(vs) == 1 {
			err = member(key, vs[0])
		} else {
			err = member(key, vs)
		}
		if err != nil {
			return nil, err
		}
	}
	if !c.ExpiresAt.IsZero() {
		if err := member("exp", c.ExpiresAt.Unix()); err != nil {
			return nil, err
		}
	}
	if c.Issuer != "" {
		if err := member("iss", c.Issuer); err != nil {
			return nil, err
		}
	}
	switch len(c.Audience) {
	case 0:
	case 1:
		if err := member("aud", c.Audience[0]); err != nil {
			return nil, err
		}
	default:
		if err := member("aud", c.Audience); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the payload object member by member so claim order survives.
func (c *ClaimSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("claims payload must be a JSON object")
	}

	out := ClaimSet{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		switch key {
		case "exp":
			t, err := numericTime(raw)
			if err != nil {
				return err
			}
			out.ExpiresAt = t
		case "iss":
			if err := json.Unmarshal(raw, &out.Issuer); err != nil {
				return errors.New("iss must be a string")
			}
		case "aud":
			aud, err := stringOrList(raw)
			if err != nil {
				return errors.New("aud must be a string or an array")
			}
			out.Audience = aud
		case "nbf", "iat":
			// not issued by this service; accepted and ignored
		default:
			vs, err := stringOrList(raw)
			if err != nil {
				return err
			}
			for _, v := range vs {
				out.Claims = append(out.Claims, entity.Claim{Type: key, Value: v})
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

func numericTime(raw json.RawMessage) (time.Time, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return time.Time{}, errors.New("exp must be a number")
	}
	f, err := n.Float64()
	if err != nil {
		return time.Time{}, errors.New("exp must be a number")
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}

// stringOrList accepts a string, an array, or a scalar and returns its values
// as strings. Non-string scalars keep their JSON text; null yields nothing.
func stringOrList(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return []string{s}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			vs, err := stringOrList(it)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		}
		return out, nil
	case 'n':
		return nil, nil
	default:
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return nil, err
		}
		return []string{compact.String()}, nil
	}
}
