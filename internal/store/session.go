package store

import (
	"encoding/json"
	"fmt"

	"lingua-todo-backend/internal/model"
)

// CurrentUser reads the session slot. The second return is false when
// no session is active.
func (s *Store) CurrentUser() (model.CurrentUser, bool, error) {
	raw, ok, err := s.get(currentUserKey)
	if err != nil || !ok {
		return model.CurrentUser{}, false, err
	}
	var cu model.CurrentUser
	if err := json.Unmarshal([]byte(raw), &cu); err != nil {
		return model.CurrentUser{}, false, fmt.Errorf("decode current user: %w", err)
	}
	return cu, true, nil
}

func (s *Store) SetCurrentUser(cu model.CurrentUser) error {
	raw, err := json.Marshal(cu)
	if err != nil {
		return fmt.Errorf("encode current user: %w", err)
	}
	return s.set(currentUserKey, string(raw))
}

func (s *Store) ClearCurrentUser() error {
	return s.remove(currentUserKey)
}
