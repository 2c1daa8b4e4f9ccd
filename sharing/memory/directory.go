package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/cyp0633/caldora-share/internal/logging"
	"github.com/cyp0633/caldora-share/sharing"
)

// Directory implements sharing.PrincipalResolver over an in-memory principal set
type Directory struct {
	mu         sync.RWMutex
	principals map[string]sharing.Principal // key: principal path
	logger     *slog.Logger
}

// NewDirectory creates an empty principal directory
func NewDirectory(opts ...Option) *Directory {
	o := applyOptions(opts)
	return &Directory{
		principals: make(map[string]sharing.Principal),
		logger:     o.logger,
	}
}

// AddPrincipal adds p to the directory. An empty ID is generated.
func (d *Directory) AddPrincipal(_ context.Context, p sharing.Principal) (sharing.Principal, error) {
	p.Path = strings.Trim(p.Path, "/")
	p.Email = sharing.NormalizeAddress(p.Email)
	if p.Path == "" {
		return sharing.Principal{}, sharing.InvalidInput("principal path is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.principals[p.Path]; exists {
		d.logger.Warn("failed to add principal: already exists",
			logging.Principal(p.Path))
		return sharing.Principal{}, sharing.Conflict("principal already exists: %s", p.Path)
	}
	for _, other := range d.principals {
		if p.Email != "" && other.Email == p.Email {
			d.logger.Warn("failed to add principal: email in use",
				logging.Principal(p.Path), logging.Address(p.Email))
			return sharing.Principal{}, sharing.Conflict("email already in use by %s", other.Path)
		}
		if other.ID == p.ID {
			return sharing.Principal{}, sharing.Conflict("principal id already in use by %s", other.Path)
		}
	}
	d.principals[p.Path] = p

	d.logger.Info("principal added", logging.Principal(p.Path))
	return p, nil
}

// ListPrincipals returns every principal ordered by path.
func (d *Directory) ListPrincipals(_ context.Context) ([]sharing.Principal, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]sharing.Principal, 0, len(d.principals))
	for _, p := range d.principals {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ResolveByAttribute implements sharing.PrincipalResolver. Only the
// email-address attribute is searchable.
func (d *Directory) ResolveByAttribute(_ context.Context, namespace, key, value string) (mo.Option[string], error) {
	if key != sharing.EmailAttribute {
		d.logger.Debug("unsupported principal attribute", slog.String("attribute", key))
		return mo.None[string](), nil
	}
	addr := sharing.NormalizeAddress(value)
	prefix := strings.Trim(namespace, "/") + "/"

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, p := range d.principals {
		if p.Email == addr && strings.HasPrefix(p.Path, prefix) {
			return mo.Some(p.Path), nil
		}
	}
	return mo.None[string](), nil
}

// GetByPath implements sharing.PrincipalResolver
func (d *Directory) GetByPath(_ context.Context, path string) (*sharing.Principal, error) {
	d.mu.RLock()
	p, ok := d.principals[strings.Trim(path, "/")]
	d.mu.RUnlock()

	if !ok {
		return nil, sharing.UnknownPrincipal(path)
	}
	return &p, nil
}
