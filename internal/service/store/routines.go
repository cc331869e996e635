package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/axchisan/AxIA/internal/model/record"
)

func routineKey(user, id string) []byte {
	return []byte(fmt.Sprintf("routine:%s:%s", user, id))
}

func routinePrefix(user string) []byte {
	return []byte(fmt.Sprintf("routine:%s:", user))
}

// CreateRoutine assigns an id and persists the routine under user.
func (s *Store) CreateRoutine(user string, routine record.Routine) (record.Routine, error) {
	now := time.Now().UTC()
	routine.ID = uuid.NewString()
	routine.CreatedAt = now
	routine.UpdatedAt = now
	if err := s.put(routineKey(user, routine.ID), routine); err != nil {
		return record.Routine{}, err
	}
	return routine, nil
}

// GetRoutine loads one of user's routines.
func (s *Store) GetRoutine(user, id string) (record.Routine, error) {
	var routine record.Routine
	if err := s.get(routineKey(user, id), &routine); err != nil {
		return record.Routine{}, err
	}
	return routine, nil
}

// ListRoutines returns all of user's routines in creation order.
func (s *Store) ListRoutines(user string) ([]record.Routine, error) {
	routines := []record.Routine{}
	err := s.listPrefix(routinePrefix(user), func(v []byte) error {
		var routine record.Routine
		if err := json.Unmarshal(v, &routine); err != nil {
			return err
		}
		routines = append(routines, routine)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(routines, func(i, j int) bool {
		return routines[i].CreatedAt.Before(routines[j].CreatedAt)
	})
	return routines, nil
}

// UpdateRoutine replaces the mutable fields of an existing routine.
func (s *Store) UpdateRoutine(user string, routine record.Routine) (record.Routine, error) {
	existing, err := s.GetRoutine(user, routine.ID)
	if err != nil {
		return record.Routine{}, err
	}

	existing.Title = routine.Title
	existing.Description = routine.Description
	existing.Schedule = routine.Schedule
	existing.Enabled = routine.Enabled
	existing.UpdatedAt = time.Now().UTC()
	if err := s.put(routineKey(user, existing.ID), existing); err != nil {
		return record.Routine{}, err
	}
	return existing, nil
}

// DeleteRoutine removes one of user's routines.
func (s *Store) DeleteRoutine(user, id string) error {
	return s.delete(routineKey(user, id))
}
