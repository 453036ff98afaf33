package memory

import (
	"context"
	"sort"
	"strings"

	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"
)

// sorted returns the rows of m in account id order so lookups are deterministic.
func sorted(m map[string]model.Account) []model.Account {
	out := make([]model.Account, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

func (s *Store) FindAccountByLogin(_ context.Context, login string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if login == "" {
		return nil, store.ErrNotFound
	}
	for _, a := range sorted(s.users) {
		if a.Email == login || (a.StudentNumber != "" && a.StudentNumber == login) {
			return &a, nil
		}
	}
	for _, a := range sorted(s.profs) {
		if a.Email == login {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserAccountByPersonID(_ context.Context, personID string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range sorted(s.users) {
		if a.PersonID == personID {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindApplicantByEmail(_ context.Context, email string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range sorted(s.users) {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) EmailRegistered(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.users {
		if strings.EqualFold(a.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) table(source model.AccountSource) (map[string]model.Account, error) {
	switch source {
	case model.SourceUser:
		return s.users, nil
	case model.SourceProf:
		return s.profs, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetRequireOTP(_ context.Context, source model.AccountSource, personID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.table(source)
	if err != nil {
		return false, err
	}
	for _, a := range sorted(rows) {
		if a.PersonID == personID {
			return a.RequireOTP, nil
		}
	}
	return false, store.ErrNotFound
}

func (s *Store) SetRequireOTP(_ context.Context, source model.AccountSource, personID string, require bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.table(source)
	if err != nil {
		return err
	}
	updated := 0
	for id, a := range rows {
		if a.PersonID == personID {
			a.RequireOTP = require
			rows[id] = a
			updated++
		}
	}
	if updated == 0 {
		return store.ErrNotFound
	}
	return nil
}
