// Package store holds the in-memory employee collection guarded by the
// authorization gate.
package store

import (
	"errors"
	"sync"
)

// ErrDuplicateID is returned when an employee ID already exists
var ErrDuplicateID = errors.New("employee ID already exists")

// Employee is a single stored employee record. Wire names match the
// public employee API's JSON contract.
type Employee struct {
	Name      string `json:"employeeName"`
	ID        string `json:"employeeId"`
	CreatedBy string `json:"createdBy"`
}

// EmployeeStore is an insertion-ordered, process-wide employee
// collection. IDs are unique; check-then-insert runs under one lock so
// concurrent creates with the same ID yield exactly one success.
type EmployeeStore struct {
	mu        sync.RWMutex
	employees []Employee
	byID      map[string]struct{}
}

// NewEmployeeStore creates an empty EmployeeStore
func NewEmployeeStore() *EmployeeStore {
	return &EmployeeStore{
		byID: make(map[string]struct{}),
	}
}

// List returns a snapshot of all employees in insertion order
func (s *EmployeeStore) List() []Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Employee, len(s.employees))
	copy(out, s.employees)
	return out
}

// Create appends a new employee. The ID must not already exist;
// matching is case-sensitive.
func (s *EmployeeStore) Create(name, id, createdBy string) (Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; exists {
		return Employee{}, ErrDuplicateID
	}

	emp := Employee{
		Name:      name,
		ID:        id,
		CreatedBy: createdBy,
	}
	s.employees = append(s.employees, emp)
	s.byID[id] = struct{}{}
	return emp, nil
}

// Len returns the number of stored employees
func (s *EmployeeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.employees)
}
