package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const (
	uniqueViolation      = "23505"
	stringDataRightTrunc = "22001"
)

const patientColumns = `id, name, dob, age, gender, contact, address, emergency_contact,
	blood_group, diagnosis, admit_date, discharge_date, report_file, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*Patient, error) {
	var p Patient
	var dob, gender, contact, address, emergency sql.NullString
	var bloodGroup, diagnosis, admitDate, dischargeDate, reportFile sql.NullString
	var age sql.NullInt64

	err := row.Scan(
		&p.ID,
		&p.Name,
		&dob,
		&age,
		&gender,
		&contact,
		&address,
		&emergency,
		&bloodGroup,
		&diagnosis,
		&admitDate,
		&dischargeDate,
		&reportFile,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.DOB = dob.String
	p.Age = int(age.Int64)
	p.Gender = gender.String
	p.Contact = contact.String
	p.Address = address.String
	p.EmergencyContact = emergency.String
	p.BloodGroup = bloodGroup.String
	p.Diagnosis = diagnosis.String
	p.AdmitDate = admitDate.String
	p.DischargeDate = dischargeDate.String
	if reportFile.Valid {
		p.ReportFile = &reportFile.String
	}

	return &p, nil
}

func (r *Repository) CreatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	query := `
		INSERT INTO patients
		(id, name, dob, age, gender, contact, address, emergency_contact, blood_group, diagnosis, admit_date, discharge_date, report_file)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + patientColumns

	created, err := scanPatient(r.db.QueryRowContext(ctx, query,
		p.ID,
		p.Name,
		p.DOB,
		p.Age,
		p.Gender,
		p.Contact,
		p.Address,
		p.EmergencyContact,
		p.BloodGroup,
		p.Diagnosis,
		p.AdmitDate,
		p.DischargeDate,
		p.ReportFile,
	))
	if err != nil {
		switch pqCode(err) {
		case uniqueViolation:
			return nil, ErrDuplicateID
		case stringDataRightTrunc:
			return nil, ErrFieldTooLong
		}
		return nil, fmt.Errorf("failed to insert patient: %w", err)
	}

	return created, nil
}

func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM patients WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check patient existence: %w", err)
	}
	return exists, nil
}

func (r *Repository) GetPatient(ctx context.Context, id string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	p, err := scanPatient(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}

	return p, nil
}

func (r *Repository) ListPatients(ctx context.Context) ([]Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at, id`

	return r.queryPatients(ctx, query)
}

func (r *Repository) ListPatientsWithPagination(ctx context.Context, limit, offset int) ([]Patient, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at, id LIMIT $1 OFFSET $2`

	patients, err := r.queryPatients(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return patients, total, nil
}

// SearchPatients matches query as a literal, case-insensitive substring of
// either the identifier or the contact number.
func (r *Repository) SearchPatients(ctx context.Context, query string) ([]Patient, error) {
	pattern := "%" + escapeLike(query) + "%"

	sqlQuery := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE id ILIKE $1 ESCAPE '\' OR contact ILIKE $1 ESCAPE '\'
		ORDER BY created_at, id`

	return r.queryPatients(ctx, sqlQuery, pattern)
}

func (r *Repository) UpdatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	query := `
		UPDATE patients
		SET name = $2, dob = $3, age = $4, gender = $5, contact = $6, address = $7,
			emergency_contact = $8, blood_group = $9, diagnosis = $10, admit_date = $11,
			discharge_date = $12, report_file = $13
		WHERE id = $1
		RETURNING ` + patientColumns

	updated, err := scanPatient(r.db.QueryRowContext(ctx, query,
		p.ID,
		p.Name,
		p.DOB,
		p.Age,
		p.Gender,
		p.Contact,
		p.Address,
		p.EmergencyContact,
		p.BloodGroup,
		p.Diagnosis,
		p.AdmitDate,
		p.DischargeDate,
		p.ReportFile,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if pqCode(err) == stringDataRightTrunc {
		return nil, ErrFieldTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	return updated, nil
}

func (r *Repository) DeletePatient(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListReportFiles returns every report file name still referenced by a record.
func (r *Repository) ListReportFiles(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT report_file FROM patients WHERE report_file IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query report files: %w", err)
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan report file: %w", err)
		}
		files = append(files, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report files: %w", err)
	}

	return files, nil
}

func (r *Repository) queryPatients(ctx context.Context, query string, args ...any) ([]Patient, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	patients := make([]Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patients: %w", err)
	}

	return patients, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
