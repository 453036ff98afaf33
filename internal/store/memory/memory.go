package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"

	"github.com/google/uuid"
)

// Store keeps accounts, page access, applicant numbers, OTP codes and lockout
// counters in process memory. It satisfies both store.Store and store.StateStore.
type Store struct {
	mu sync.Mutex

	users  map[string]model.Account // account id -> user_accounts row
	profs  map[string]model.Account // account id -> prof_table row
	pages  map[string]map[int]int   // employee id -> page id -> privilege
	term   *model.ActiveTerm
	short  string
	appNos map[string]model.ApplicantNumber // person id -> applicant number

	otps     map[string]model.OTPRecord
	lockouts map[string]model.LockoutRecord
}

var (
	_ store.Store      = (*Store)(nil)
	_ store.StateStore = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		users:    make(map[string]model.Account),
		profs:    make(map[string]model.Account),
		pages:    make(map[string]map[int]int),
		appNos:   make(map[string]model.ApplicantNumber),
		otps:     make(map[string]model.OTPRecord),
		lockouts: make(map[string]model.LockoutRecord),
	}
}

// AddAccount inserts or replaces an account in the table selected by a.Source.
func (s *Store) AddAccount(a model.Account) model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(a.AccountID) == "" {
		a.AccountID = uuid.NewString()
	}
	if a.Source == "" {
		a.Source = model.SourceUser
	}
	if a.Source == model.SourceProf {
		a.DepartmentID = nil
		a.Department = ""
		a.StudentNumber = ""
		s.profs[a.AccountID] = a
	} else {
		s.users[a.AccountID] = a
	}
	return a
}

// GrantPage sets the privilege an employee holds on a page.
func (s *Store) GrantPage(employeeID string, pageID, privilege int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.pages[employeeID]
	if !ok {
		m = make(map[int]int)
		s.pages[employeeID] = m
	}
	m[pageID] = privilege
}

// SetActiveTerm replaces the active school year; nil clears it.
func (s *Store) SetActiveTerm(t *model.ActiveTerm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = t
}

func (s *Store) SetShortTerm(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.short = v
}

func (s *Store) ShortTerm(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.short == "" {
		return "", store.ErrNotFound
	}
	return s.short, nil
}

func (s *Store) ListPageAccess(_ context.Context, employeeID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, 0, len(s.pages[employeeID]))
	for pageID := range s.pages[employeeID] {
		out = append(out, pageID)
	}
	sort.Ints(out)
	return out, nil
}

func (s *Store) GetPagePrivilege(_ context.Context, employeeID string, pageID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pages[employeeID][pageID]
	if !ok {
		return 0, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) GetActiveTerm(_ context.Context) (*model.ActiveTerm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.term == nil {
		return nil, store.ErrNotFound
	}
	t := *s.term
	return &t, nil
}

func (s *Store) GetApplicantNumber(_ context.Context, personID string) (*model.ApplicantNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	an, ok := s.appNos[personID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &an, nil
}

func (s *Store) CreateApplicantNumber(_ context.Context, personID string, format func(seq int) string) (*model.ApplicantNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.appNos[personID]; ok {
		return &existing, nil
	}

	an := model.ApplicantNumber{
		ApplicantNumber: format(len(s.appNos) + 1),
		PersonID:        personID,
		CreatedAt:       time.Now().UTC(),
	}
	for _, other := range s.appNos {
		if other.ApplicantNumber == an.ApplicantNumber {
			return nil, store.ErrConflict
		}
	}
	s.appNos[personID] = an
	return &an, nil
}

func (s *Store) SetApplicantQRCode(_ context.Context, applicantNumber, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for personID, an := range s.appNos {
		if an.ApplicantNumber == applicantNumber {
			an.QRCode = filename
			s.appNos[personID] = an
			return nil
		}
	}
	return store.ErrNotFound
}
