package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleParent Role = "PARENT"
	RoleChild  Role = "CHILD"
)

// ParseRole rejects anything outside the two known roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleParent, RoleChild:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FullName  string `json:"fullName"`
	Role      Role   `json:"role"`
	FamilyID  string `json:"familyId"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func (u User) IsParent() bool { return u.Role == RoleParent }
func (u User) IsChild() bool  { return u.Role == RoleChild }

// Login returns the identifier a child types on the login screen. Children
// created before usernames existed only carry a synthetic email, so the
// local part stands in.
func (u User) Login() string {
	if u.Username != "" {
		return u.Username
	}
	if i := strings.Index(u.Email, "@"); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

// FirstName is used for greetings.
func (u User) FirstName() string {
	fields := strings.Fields(u.FullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
