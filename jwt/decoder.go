package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrDecode is returned for any token that does not parse into [Claims].
var ErrDecode = errors.New("token decode failed")

// Decoder parses tokens structurally. It does not verify signatures.
type Decoder struct {
	parser *jwt.Parser
}

// NewDecoder returns a Decoder. The zero value is not usable.
func NewDecoder() *Decoder {
	return &Decoder{
		parser: jwt.NewParser(jwt.WithJSONNumber()),
	}
}

// Decode parses token into Claims.
//
// Employee_id and role must be non-empty strings and exp must be a number.
// A missing or null permissions claim decodes to an empty list; any other
// non-array value, or an array holding non-strings, fails. Expired tokens
// decode successfully.
func (d *Decoder) Decode(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, fmt.Errorf("%w: empty token", ErrDecode)
	}

	raw := jwt.MapClaims{}
	if _, _, err := d.parser.ParseUnverified(token, raw); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	subject, err := requiredString(raw, ClaimEmployeeID)
	if err != nil {
		return Claims{}, err
	}
	role, err := requiredString(raw, ClaimRole)
	if err != nil {
		return Claims{}, err
	}
	exp, err := requiredUnix(raw, ClaimExpiresAt)
	if err != nil {
		return Claims{}, err
	}
	perms, err := optionalStrings(raw, ClaimPermissions)
	if err != nil {
		return Claims{}, err
	}

	return Claims{
		SubjectID:   subject,
		RoleID:      role,
		Permissions: perms,
		ExpiresAt:   exp,
	}, nil
}

func requiredString(raw jwt.MapClaims, name string) (string, error) {
	v, ok := raw[name]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: missing %s", ErrDecode, name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", ErrDecode, name)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: empty %s", ErrDecode, name)
	}
	return s, nil
}

func requiredUnix(raw jwt.MapClaims, name string) (int64, error) {
	v, ok := raw[name]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrDecode, name)
	}
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %s is not a number", ErrDecode, name)
		}
		return int64(math.Floor(f)), nil
	case float64:
		return int64(math.Floor(n)), nil
	default:
		return 0, fmt.Errorf("%w: %s is not a number", ErrDecode, name)
	}
}

// optionalStrings keeps the issuer's behavior of omitting permissions for
// roles that have none: absence means an empty list, not an error.
func optionalStrings(raw jwt.MapClaims, name string) ([]string, error) {
	v, ok := raw[name]
	if !ok || v == nil {
		return []string{}, nil
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an array", ErrDecode, name)
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not a string", ErrDecode, name, i)
		}
		out = append(out, s)
	}
	return out, nil
}
