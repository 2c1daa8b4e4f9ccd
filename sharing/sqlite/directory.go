package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/cyp0633/caldora-share/internal/logging"
	"github.com/cyp0633/caldora-share/sharing"
)

// Directory implements sharing.PrincipalResolver over the principals table
type Directory struct {
	db     *sql.DB
	logger *slog.Logger
}

// AddPrincipal inserts p. An empty ID is generated.
func (d *Directory) AddPrincipal(ctx context.Context, p sharing.Principal) (sharing.Principal, error) {
	p.Path = strings.Trim(p.Path, "/")
	p.Email = sharing.NormalizeAddress(p.Email)
	if p.Path == "" {
		return sharing.Principal{}, sharing.InvalidInput("principal path is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	email := sql.NullString{String: p.Email, Valid: p.Email != ""}
	_, err := d.db.ExecContext(ctx, `INSERT INTO principals (id, uri, email, displayname) VALUES (?, ?, ?, ?)`,
		p.ID, p.Path, email, p.DisplayName)
	if isUniqueViolation(err) {
		d.logger.Warn("failed to add principal: already exists",
			logging.Principal(p.Path), logging.Address(p.Email))
		return sharing.Principal{}, sharing.Conflict("principal %s or its email already exists", p.Path)
	}
	if err != nil {
		return sharing.Principal{}, sharing.StoreUnavailable("add principal", err)
	}

	d.logger.Info("principal added", logging.Principal(p.Path))
	return p, nil
}

// ListPrincipals returns every principal ordered by path.
func (d *Directory) ListPrincipals(ctx context.Context) ([]sharing.Principal, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, uri, email, displayname FROM principals ORDER BY uri ASC`)
	if err != nil {
		return nil, sharing.StoreUnavailable("list principals", err)
	}
	defer rows.Close()

	out := []sharing.Principal{}
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, sharing.StoreUnavailable("list principals", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, sharing.StoreUnavailable("list principals", err)
	}
	return out, nil
}

// ResolveByAttribute implements sharing.PrincipalResolver. Only the
// email-address attribute is searchable.
func (d *Directory) ResolveByAttribute(ctx context.Context, namespace, key, value string) (mo.Option[string], error) {
	if key != sharing.EmailAttribute {
		d.logger.Debug("unsupported principal attribute", slog.String("attribute", key))
		return mo.None[string](), nil
	}
	prefix := strings.Trim(namespace, "/") + "/"

	var uri string
	err := d.db.QueryRowContext(ctx, `SELECT uri FROM principals WHERE email = ? AND instr(uri, ?) = 1`,
		sharing.NormalizeAddress(value), prefix).Scan(&uri)
	if errors.Is(err, sql.ErrNoRows) {
		return mo.None[string](), nil
	}
	if err != nil {
		return mo.None[string](), sharing.StoreUnavailable("search principals", err)
	}
	return mo.Some(uri), nil
}

// GetByPath implements sharing.PrincipalResolver
func (d *Directory) GetByPath(ctx context.Context, path string) (*sharing.Principal, error) {
	row := d.db.QueryRowContext(ctx, `SELECT id, uri, email, displayname FROM principals WHERE uri = ?`,
		strings.Trim(path, "/"))
	p, err := scanPrincipal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sharing.UnknownPrincipal(path)
	}
	if err != nil {
		return nil, sharing.StoreUnavailable("get principal", err)
	}
	return &p, nil
}

func scanPrincipal(row scanner) (sharing.Principal, error) {
	var (
		p              sharing.Principal
		email, display sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Path, &email, &display); err != nil {
		return sharing.Principal{}, err
	}
	p.Email = email.String
	p.DisplayName = display.String
	return p, nil
}
