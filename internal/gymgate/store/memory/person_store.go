package memory

import (
	"context"
	"sync"

	"github.com/fitaccess/gymgate/internal/gymgate/store"
	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

type PersonStore struct {
	mu      sync.RWMutex
	members map[string]types.Member
	staff   map[string]types.Staff
}

func NewPersonStore() *PersonStore {
	return &PersonStore{
		members: make(map[string]types.Member),
		staff:   make(map[string]types.Staff),
	}
}

// PutMember seeds a member record. Test and dev helper.
func (s *PersonStore) PutMember(m types.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m
}

// PutStaff seeds a staff record. Test and dev helper.
func (s *PersonStore) PutStaff(st types.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[st.ID] = st
}

func (s *PersonStore) GetMember(_ context.Context, id string) (types.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return types.Member{}, store.ErrMemberNotFound
	}
	return m, nil
}

func (s *PersonStore) GetStaff(_ context.Context, id string) (types.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.staff[id]
	if !ok {
		return types.Staff{}, store.ErrStaffNotFound
	}
	return st, nil
}

func (s *PersonStore) SetBiometric(_ context.Context, kind types.PersonKind, personID string, photoURL string, enrolled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == types.PersonKindStaff {
		st, ok := s.staff[personID]
		if !ok {
			return store.ErrStaffNotFound
		}
		st.BiometricPhotoURL = photoURL
		st.BiometricEnrolled = enrolled
		s.staff[personID] = st
		return nil
	}

	m, ok := s.members[personID]
	if !ok {
		return store.ErrMemberNotFound
	}
	m.BiometricPhotoURL = photoURL
	m.BiometricEnrolled = enrolled
	s.members[personID] = m
	return nil
}
