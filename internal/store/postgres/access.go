package postgres

import (
	"context"
	"errors"

	"registrar-portal/backend/internal/store"

	"github.com/jackc/pgx/v5"
)

func (s *Store) ListPageAccess(ctx context.Context, employeeID string) ([]int, error) {
	rows, err := s.pool.Query(ctx, `
		select page_id
		from public.page_access
		where user_id = $1
		order by page_id asc
	`, employeeID)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, mapPgErr(err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) GetPagePrivilege(ctx context.Context, employeeID string, pageID int) (int, error) {
	var p int
	err := s.pool.QueryRow(ctx, `
		select page_privilege
		from public.page_access
		where user_id = $1 and page_id = $2
	`, employeeID, pageID).Scan(&p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, store.ErrNotFound
		}
		return 0, mapPgErr(err)
	}
	return p, nil
}

func (s *Store) ShortTerm(ctx context.Context) (string, error) {
	var v string
	err := s.pool.QueryRow(ctx, `
		select coalesce(short_term, '')
		from public.company_settings
		order by id
		limit 1
	`).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", mapPgErr(err)
	}
	if v == "" {
		return "", store.ErrNotFound
	}
	return v, nil
}
