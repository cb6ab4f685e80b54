// Package dedup collapses author and contributor lists gathered from a page.
//
// Policy: extractors call MergeRoles, then Contributors, then WithoutAuthors.
// Contributors itself never merges roles; a person credited under two roles
// only ends up as one entry because MergeRoles ran first.
package dedup

import (
	"strings"

	"github.com/user/bookmeta/internal/entity"
)

// Authors trims each name and drops blanks and exact repeats, keeping the
// order of first appearance.
func Authors(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Key is the composite identity of a contributor entry.
func Key(c entity.Contributor) string {
	return fold(c.Name) + "|" + fold(c.Role)
}

// Contributors keeps the first entry for every case- and
// whitespace-insensitive (name, role) pair. Distinct roles for one name stay
// separate entries.
func Contributors(cs []entity.Contributor) []entity.Contributor {
	out := make([]entity.Contributor, 0, len(cs))
	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		c.Name = strings.TrimSpace(c.Name)
		c.Role = strings.TrimSpace(c.Role)
		if c.Name == "" {
			continue
		}
		k := Key(c)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

// MergeRoles folds every entry for the same person (case-insensitive) into
// the position of its first appearance, joining distinct roles with ", ".
func MergeRoles(cs []entity.Contributor) []entity.Contributor {
	out := make([]entity.Contributor, 0, len(cs))
	index := make(map[string]int, len(cs))
	roles := make(map[string]map[string]struct{}, len(cs))
	for _, c := range cs {
		name := strings.TrimSpace(c.Name)
		role := strings.TrimSpace(c.Role)
		if name == "" {
			continue
		}
		k := fold(name)
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			roles[k] = map[string]struct{}{}
			if role != "" {
				roles[k][fold(role)] = struct{}{}
			}
			out = append(out, entity.Contributor{Name: name, Role: role})
			continue
		}
		if role == "" {
			continue
		}
		if _, dup := roles[k][fold(role)]; dup {
			continue
		}
		roles[k][fold(role)] = struct{}{}
		if out[i].Role == "" {
			out[i].Role = role
		} else {
			out[i].Role += ", " + role
		}
	}
	return out
}

// WithoutAuthors drops contributors whose name is also in authors.
func WithoutAuthors(cs []entity.Contributor, authors []string) []entity.Contributor {
	if len(authors) == 0 {
		return cs
	}
	names := make(map[string]struct{}, len(authors))
	for _, a := range authors {
		names[fold(a)] = struct{}{}
	}
	out := make([]entity.Contributor, 0, len(cs))
	for _, c := range cs {
		if _, ok := names[fold(c.Name)]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Normalize applies the full contributor policy.
func Normalize(cs []entity.Contributor, authors []string) []entity.Contributor {
	return WithoutAuthors(Contributors(MergeRoles(cs)), authors)
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
