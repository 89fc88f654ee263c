package apifake

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jrsteele09/go-employee-console/employees"
	"github.com/jrsteele09/go-employee-console/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

func hashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// repo keeps users and employees in memory
type repo struct {
	lock      sync.RWMutex
	users     map[int64]*user
	emailIDs  map[string]int64 // email to user id
	employees map[int64]employees.Employee
	nextID    int64
}

func newRepo() *repo {
	return &repo{
		users:     make(map[int64]*user),
		emailIDs:  make(map[string]int64),
		employees: make(map[int64]employees.Employee),
	}
}

func (r *repo) allocID() int64 {
	r.nextID++
	return r.nextID
}

func (r *repo) addUser(u *user) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := r.emailIDs[email]; ok {
		return errors.Wrapf(errors.ErrValidation, "email %s already registered", u.Email)
	}
	u.ID = r.allocID()
	r.users[u.ID] = u
	r.emailIDs[email] = u.ID
	return nil
}

func (r *repo) userByEmail(email string) (*user, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	id, ok := r.emailIDs[strings.ToLower(email)]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return r.users[id], nil
}

func (r *repo) userByID(id string) (*user, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, errors.ErrNotFound
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	u, ok := r.users[n]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return u, nil
}

func (r *repo) upsertEmployee(e employees.Employee) employees.Employee {
	r.lock.Lock()
	defer r.lock.Unlock()

	if e.ID == 0 {
		e.ID = r.allocID()
	}
	r.employees[e.ID] = e
	return e
}

func (r *repo) employee(id int64) (employees.Employee, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return employees.Employee{}, errors.ErrNotFound
	}
	return e, nil
}

func (r *repo) deleteEmployee(id int64) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.employees[id]; !ok {
		return errors.ErrNotFound
	}
	delete(r.employees, id)
	return nil
}

// listEmployees returns page number page of size entries ordered by id,
// with the total page count.
func (r *repo) listEmployees(page, size int) ([]employees.Employee, int) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]employees.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})

	totalPages := (len(list) + size - 1) / size
	offset := page * size
	if offset >= len(list) {
		return []employees.Employee{}, totalPages
	}
	end := min(offset+size, len(list))
	return list[offset:end], totalPages
}
