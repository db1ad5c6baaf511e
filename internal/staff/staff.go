// Package staff manages the employee roster shown on the admin dashboard.
package staff

import (
	"context"
	"errors"
	"time"

	"cassa-pos-services/internal/db"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("employee not found")

const (
	StaffDining  = "Dining"
	StaffKitchen = "Kitchen"

	EmploymentFullTime = "Full-Time"
	EmploymentPartTime = "Part-Time"
)

type Employee struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Phone          *string    `json:"phone"`
	DateOfBirth    time.Time  `json:"dateOfBirth"`
	Staff          string     `json:"staff"`
	EmploymentType string     `json:"employmentType"`
	IsActive       bool       `json:"isActive"`
	JoinedAt       time.Time  `json:"joinedAt"`
	LeftAt         *time.Time `json:"leftAt"`
}

func ValidStaff(staff string) bool {
	return staff == StaffDining || staff == StaffKitchen
}

func ValidEmploymentType(t string) bool {
	return t == EmploymentFullTime || t == EmploymentPartTime
}

// List returns the roster filtered by a single view name. The default view is
// the active roster; "Removed" lists former staff.
func List(ctx context.Context, dbx db.DBTX, view string) ([]Employee, error) {
	query := `
		select id, name, phone, date_of_birth, staff, employment_type, is_active, joined_at, left_at
		from employees`
	args := []any{}

	switch view {
	case StaffDining, StaffKitchen:
		query += ` where is_active and staff = $1`
		args = append(args, view)
	case EmploymentFullTime, EmploymentPartTime:
		query += ` where is_active and employment_type = $1`
		args = append(args, view)
	case "Removed":
		query += ` where not is_active`
	default:
		query += ` where is_active`
	}
	query += ` order by name`

	rows, err := dbx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]Employee, 0)
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Phone, &e.DateOfBirth, &e.Staff,
			&e.EmploymentType, &e.IsActive, &e.JoinedAt, &e.LeftAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func Get(ctx context.Context, dbx db.DBTX, id int64) (*Employee, error) {
	var e Employee
	err := dbx.QueryRow(ctx, `
		select id, name, phone, date_of_birth, staff, employment_type, is_active, joined_at, left_at
		from employees where id = $1
	`, id).Scan(&e.ID, &e.Name, &e.Phone, &e.DateOfBirth, &e.Staff,
		&e.EmploymentType, &e.IsActive, &e.JoinedAt, &e.LeftAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func Create(ctx context.Context, dbx db.DBTX, name string, phone *string, dateOfBirth time.Time, staffKind, employmentType string) (*Employee, error) {
	var id int64
	err := dbx.QueryRow(ctx, `
		insert into employees (name, phone, date_of_birth, staff, employment_type)
		values ($1, $2, $3, $4, $5)
		returning id
	`, name, phone, dateOfBirth, staffKind, employmentType).Scan(&id)
	if err != nil {
		return nil, err
	}
	return Get(ctx, dbx, id)
}

func Update(ctx context.Context, dbx db.DBTX, id int64, name string, phone *string, dateOfBirth time.Time, staffKind, employmentType string) (*Employee, error) {
	tag, err := dbx.Exec(ctx, `
		update employees
		set name = $2, phone = $3, date_of_birth = $4, staff = $5, employment_type = $6
		where id = $1
	`, id, name, phone, dateOfBirth, staffKind, employmentType)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return Get(ctx, dbx, id)
}

// ToggleActive flips an employee between the active roster and the removed
// list, stamping left_at on removal and clearing it on reinstatement.
func ToggleActive(ctx context.Context, dbx db.DBTX, id int64) (*Employee, error) {
	tag, err := dbx.Exec(ctx, `
		update employees
		set is_active = not is_active,
			left_at = case when is_active then now() else null end
		where id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return Get(ctx, dbx, id)
}
