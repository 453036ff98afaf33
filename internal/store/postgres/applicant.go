package postgres

import (
	"context"
	"errors"

	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"

	"github.com/jackc/pgx/v5"
)

// applicantNumberLock serializes minting across processes.
const applicantNumberLock int64 = 0x61707031

func (s *Store) GetActiveTerm(ctx context.Context) (*model.ActiveTerm, error) {
	var t model.ActiveTerm
	err := s.pool.QueryRow(ctx, `
		select yt.year_description, st.semester_description, st.semester_code
		from public.active_school_year_table as sy
		join public.year_table as yt on yt.year_id = sy.year_id
		join public.semester_table as st on st.semester_id = sy.semester_id
		where sy.astatus = 1
		order by sy.id
		limit 1
	`).Scan(&t.YearDescription, &t.SemesterDescription, &t.SemesterCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &t, nil
}

func scanApplicantNumber(row pgx.Row) (*model.ApplicantNumber, error) {
	var an model.ApplicantNumber
	err := row.Scan(&an.ApplicantNumber, &an.PersonID, &an.QRCode, &an.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &an, nil
}

func (s *Store) GetApplicantNumber(ctx context.Context, personID string) (*model.ApplicantNumber, error) {
	return scanApplicantNumber(s.pool.QueryRow(ctx, `
		select applicant_number, person_id::text, coalesce(qr_code, ''), created_at
		from public.applicant_numbering_table
		where person_id = $1::bigint
	`, personID))
}

func (s *Store) CreateApplicantNumber(ctx context.Context, personID string, format func(seq int) string) (*model.ApplicantNumber, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock($1)`, applicantNumberLock); err != nil {
		return nil, mapPgErr(err)
	}

	existing, err := scanApplicantNumber(tx.QueryRow(ctx, `
		select applicant_number, person_id::text, coalesce(qr_code, ''), created_at
		from public.applicant_numbering_table
		where person_id = $1::bigint
	`, personID))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var count int
	if err := tx.QueryRow(ctx, `select count(*) from public.applicant_numbering_table`).Scan(&count); err != nil {
		return nil, mapPgErr(err)
	}

	out, err := scanApplicantNumber(tx.QueryRow(ctx, `
		insert into public.applicant_numbering_table (applicant_number, person_id)
		values ($1, $2::bigint)
		returning applicant_number, person_id::text, coalesce(qr_code, ''), created_at
	`, format(count+1), personID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapPgErr(err)
	}
	return out, nil
}

func (s *Store) SetApplicantQRCode(ctx context.Context, applicantNumber, filename string) error {
	tag, err := s.pool.Exec(ctx, `
		update public.applicant_numbering_table
		set qr_code = $2
		where applicant_number = $1
	`, applicantNumber, filename)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
