package postgres

import (
	"context"
	"errors"

	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"

	"github.com/jackc/pgx/v5"
)

const userAccountColumns = `
	ua.id::text, ua.person_id::text, coalesce(ua.employee_id, ''), ua.email,
	coalesce(snt.student_number, ''), ua.password, ua.role, ua.dprtmnt_id,
	coalesce(dt.dprtmnt_name, ''), ua.status <> 0, ua.require_otp = 1
`

const userAccountJoins = `
	from public.user_accounts as ua
	left join public.dprtmnt_table as dt on dt.dprtmnt_id = ua.dprtmnt_id
	left join public.student_numbering_table as snt on snt.person_id = ua.person_id
`

func scanUserAccount(row pgx.Row) (*model.Account, error) {
	a := model.Account{Source: model.SourceUser}
	err := row.Scan(
		&a.AccountID,
		&a.PersonID,
		&a.EmployeeID,
		&a.Email,
		&a.StudentNumber,
		&a.PasswordHash,
		&a.Role,
		&a.DepartmentID,
		&a.Department,
		&a.Active,
		&a.RequireOTP,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &a, nil
}

func (s *Store) FindAccountByLogin(ctx context.Context, login string) (*model.Account, error) {
	a, err := scanUserAccount(s.pool.QueryRow(ctx, `
		select `+userAccountColumns+userAccountJoins+`
		where ua.email = $1 or snt.student_number = $1
		order by ua.id
		limit 1
	`, login))
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return a, err
	}

	p := model.Account{Source: model.SourceProf}
	err = s.pool.QueryRow(ctx, `
		select prof_id::text, person_id::text, coalesce(employee_id, ''), email, password, role,
		       status <> 0, require_otp = 1,
		       coalesce(fname, ''), coalesce(mname, ''), coalesce(lname, ''), coalesce(profile_image, '')
		from public.prof_table
		where email = $1
		order by prof_id
		limit 1
	`, login).Scan(
		&p.AccountID,
		&p.PersonID,
		&p.EmployeeID,
		&p.Email,
		&p.PasswordHash,
		&p.Role,
		&p.Active,
		&p.RequireOTP,
		&p.FirstName,
		&p.MiddleName,
		&p.LastName,
		&p.ProfileImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &p, nil
}

func (s *Store) GetUserAccountByPersonID(ctx context.Context, personID string) (*model.Account, error) {
	return scanUserAccount(s.pool.QueryRow(ctx, `
		select `+userAccountColumns+userAccountJoins+`
		where ua.person_id = $1::bigint
		order by ua.id
		limit 1
	`, personID))
}

func (s *Store) FindApplicantByEmail(ctx context.Context, email string) (*model.Account, error) {
	return scanUserAccount(s.pool.QueryRow(ctx, `
		select `+userAccountColumns+userAccountJoins+`
		left join public.person_table as pt on pt.person_id = ua.person_id
		where ua.email = $1
		order by ua.id
		limit 1
	`, email))
}

func (s *Store) EmailRegistered(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		select exists (select 1 from public.user_accounts where lower(email) = lower($1))
	`, email).Scan(&exists)
	if err != nil {
		return false, mapPgErr(err)
	}
	return exists, nil
}

// The table is picked from a closed set of constant statements, never formatted in.
var (
	requireOTPSelect = map[model.AccountSource]string{
		model.SourceUser: `select require_otp = 1 from public.user_accounts where person_id = $1::bigint limit 1`,
		model.SourceProf: `select require_otp = 1 from public.prof_table where person_id = $1::bigint limit 1`,
	}
	requireOTPUpdate = map[model.AccountSource]string{
		model.SourceUser: `update public.user_accounts set require_otp = $2 where person_id = $1::bigint`,
		model.SourceProf: `update public.prof_table set require_otp = $2 where person_id = $1::bigint`,
	}
)

func (s *Store) GetRequireOTP(ctx context.Context, source model.AccountSource, personID string) (bool, error) {
	q, ok := requireOTPSelect[source]
	if !ok {
		return false, store.ErrNotFound
	}
	var require bool
	if err := s.pool.QueryRow(ctx, q, personID).Scan(&require); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, store.ErrNotFound
		}
		return false, mapPgErr(err)
	}
	return require, nil
}

func (s *Store) SetRequireOTP(ctx context.Context, source model.AccountSource, personID string, require bool) error {
	q, ok := requireOTPUpdate[source]
	if !ok {
		return store.ErrNotFound
	}
	flag := 0
	if require {
		flag = 1
	}
	tag, err := s.pool.Exec(ctx, q, personID, flag)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
