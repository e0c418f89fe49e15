package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// IdentityKey is the canonical student key: {roll}_{semester}_{name}_{branch}.
type IdentityKey string

func (k IdentityKey) String() string {
	return string(k)
}

type IdentityParts struct {
	RollNo   string `json:"roll_no"`
	Semester int    `json:"semester"`
	Name     string `json:"name"`
	Branch   string `json:"branch"`
}

// NewIdentityKey builds a key. Spaces are removed from name and branch and the
// branch is uppercased, mirroring how keys are written at registration.
func NewIdentityKey(roll string, semester int, name, branch string) IdentityKey {
	roll = strings.TrimSpace(roll)
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "")
	branch = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(branch), " ", ""))
	return IdentityKey(fmt.Sprintf("%s_%d_%s_%s", roll, semester, name, branch))
}

// ParseIdentityKey splits a key into its parts. The name may itself contain
// underscores; everything between semester and branch belongs to it.
func ParseIdentityKey(s string) (IdentityParts, error) {
	tokens := strings.Split(s, "_")
	if len(tokens) < 4 {
		return IdentityParts{}, fmt.Errorf("%w: %q has %d parts", ErrInvalidIdentityKey, s, len(tokens))
	}

	semester, err := strconv.Atoi(tokens[1])
	if err != nil {
		return IdentityParts{}, fmt.Errorf("%w: %q semester %q is not numeric", ErrInvalidIdentityKey, s, tokens[1])
	}

	parts := IdentityParts{
		RollNo:   tokens[0],
		Semester: semester,
		Name:     strings.Join(tokens[2:len(tokens)-1], "_"),
		Branch:   tokens[len(tokens)-1],
	}
	if parts.RollNo == "" || parts.Name == "" || parts.Branch == "" {
		return IdentityParts{}, fmt.Errorf("%w: %q has empty parts", ErrInvalidIdentityKey, s)
	}

	return parts, nil
}

// Identity is one entry of the in-memory index used while a session runs.
type Identity struct {
	Key      IdentityKey
	Parts    IdentityParts
	Encoding []float64
}

// Scope restricts an index or roster to one class. Zero values mean unset.
type Scope struct {
	Semester int    `json:"semester"`
	Branch   string `json:"branch"`
}

func (s Scope) Matches(p IdentityParts) bool {
	if s.Semester != 0 && p.Semester != s.Semester {
		return false
	}
	if s.Branch != "" && !strings.EqualFold(p.Branch, s.Branch) {
		return false
	}
	return true
}
