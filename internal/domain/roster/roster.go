// Package roster normalizes the selected-job roster into one canonical id set.
//
// Two input shapes are accepted at the boundary: flat id lists (optionally
// grouped per role) and the legacy verbose shape where every job of a role is
// listed as an object carrying a selected flag. Trackers only ever see Selection.
package roster

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Selection is the canonical set of selected job ids.
type Selection struct {
	ids map[string]struct{}
}

// FromIDs builds a selection from job ids. Blank ids are ignored.
func FromIDs(ids ...string) Selection {
	s := Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *Selection) add(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	s.ids[id] = struct{}{}
}

// Has reports whether job is selected.
func (s Selection) Has(job string) bool {
	_, ok := s.ids[job]
	return ok
}

// Len returns the number of selected jobs.
func (s Selection) Len() int { return len(s.ids) }

// IDs returns the selected ids sorted.
func (s Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both selections hold the same ids.
func (s Selection) Equal(o Selection) bool {
	if len(s.ids) != len(o.ids) {
		return false
	}
	for id := range s.ids {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// Normalize converts a generically decoded roster (from JSON or YAML) into a Selection.
//
// Accepted values: a string, a list of strings, a list of job objects
// ({id, selected}), or a map of role name to any of those.
func Normalize(v any) (Selection, error) {
	s := Selection{ids: make(map[string]struct{})}
	if err := s.collect(v, ""); err != nil {
		return Selection{}, err
	}
	return s, nil
}

func (s *Selection) collect(v any, role string) error {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s.add(t)
	case []string:
		for _, id := range t {
			s.add(id)
		}
	case []any:
		for _, item := range t {
			if err := s.collect(item, role); err != nil {
				return err
			}
		}
	case map[string]any:
		if _, isJob := t["id"]; isJob {
			return s.collectJob(t, role)
		}
		for r, sub := range t {
			if err := s.collect(sub, r); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unexpected %T in role %q", ErrInvalidShape, v, role)
	}
	return nil
}

func (s *Selection) collectJob(obj map[string]any, role string) error {
	id, ok := obj["id"].(string)
	if !ok {
		return fmt.Errorf("%w: job id in role %q is %T", ErrInvalidShape, role, obj["id"])
	}
	if sel, present := obj["selected"]; present {
		b, ok := sel.(bool)
		if !ok {
			return fmt.Errorf("%w: selected flag of %q is %T", ErrInvalidShape, id, sel)
		}
		if !b {
			return nil
		}
	}
	s.add(id)
	return nil
}

// UnmarshalJSON accepts every supported roster shape.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidShape, err)
	}
	norm, err := Normalize(raw)
	if err != nil {
		return err
	}
	*s = norm
	return nil
}

// MarshalJSON always writes the canonical flat id list.
func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}
