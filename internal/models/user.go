package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// User represents a user in the system.
//
// Fields the backend returns beyond the ones modelled here are kept in Extra
// so that a client round-trips the full profile through persistence.
type User struct {
	ID           int64          `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	CreatedAt    *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time     `json:"updatedAt,omitempty"`
	PasswordHash string         `json:"-"`
	Extra        map[string]any `json:"-"`
}

var knownUserFields = map[string]struct{}{
	"id":        {},
	"email":     {},
	"name":      {},
	"createdAt": {},
	"updatedAt": {},
}

// MarshalJSON writes the modelled fields and any extra profile fields as one object
func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+5)
	for k, v := range u.Extra {
		if _, known := knownUserFields[k]; known {
			continue
		}
		out[k] = v
	}
	out["id"] = u.ID
	out["email"] = u.Email
	out["name"] = u.Name
	if u.CreatedAt != nil {
		out["createdAt"] = u.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if u.UpdatedAt != nil {
		out["updatedAt"] = u.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the modelled fields and collects everything else into Extra
func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("user must be a JSON object")
	}

	decoded := User{}
	for key, value := range raw {
		var err error
		switch key {
		case "id":
			err = json.Unmarshal(value, &decoded.ID)
		case "email":
			err = json.Unmarshal(value, &decoded.Email)
		case "name":
			err = json.Unmarshal(value, &decoded.Name)
		case "createdAt":
			decoded.CreatedAt, err = decodeOptionalTime(value)
		case "updatedAt":
			decoded.UpdatedAt, err = decodeOptionalTime(value)
		default:
			var v any
			if err = json.Unmarshal(value, &v); err == nil {
				if decoded.Extra == nil {
					decoded.Extra = make(map[string]any)
				}
				decoded.Extra[key] = v
			}
		}
		if err != nil {
			return fmt.Errorf("invalid user field %q: %w", key, err)
		}
	}

	*u = decoded
	return nil
}

// Merge returns a copy of the user with the given fields shallow-merged on top.
// Later fields win. The server-assigned id is never replaced.
func (u User) Merge(fields map[string]any) (User, error) {
	base, err := json.Marshal(u)
	if err != nil {
		return User{}, fmt.Errorf("failed to encode user: %w", err)
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return User{}, fmt.Errorf("failed to encode merged user: %w", err)
	}
	var out User
	if err := json.Unmarshal(data, &out); err != nil {
		return User{}, fmt.Errorf("failed to decode merged user: %w", err)
	}
	out.PasswordHash = u.PasswordHash
	return out, nil
}

// Fields returns the user as a flat field map, the shape used for partial updates
func (u User) Fields() (map[string]any, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func decodeOptionalTime(value json.RawMessage) (*time.Time, error) {
	if string(value) == "null" {
		return nil, nil
	}
	var t time.Time
	if err := json.Unmarshal(value, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
