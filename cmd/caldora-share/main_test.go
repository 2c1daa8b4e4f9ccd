package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/caldora-share/sharing"
)

type cli struct {
	t  *testing.T
	db string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return &cli{t: t, db: filepath.Join(dir, "share.db")}
}

// run executes the CLI against the test database.
func (c *cli) run(args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"--database", c.db}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// ok runs args and requires success, returning trimmed stdout.
func (c *cli) ok(args ...string) string {
	c.t.Helper()
	code, out, errOut := c.run(args...)
	require.Equal(c.t, exitOK, code, "args %v: %s", args, errOut)
	return strings.TrimSpace(out)
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitOK, run([]string{"version"}, &stdout, &stderr))
	assert.Equal(t, "caldora-share version dev\n", stdout.String())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{sharing.UnknownPrincipal("mailto:x@example.com"), exitUnknownPrincipal},
		{sharing.NotFound("calendar x"), exitNotFound},
		{sharing.StoreUnavailable("open", os.ErrPermission), exitStoreUnavailable},
		{sharing.InvalidInput("bad"), exitError},
		{sharing.Conflict("share %s", "x"), exitError},
		{errors.New("boom"), exitError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}

func TestShareWorkflow(t *testing.T) {
	c := newCLI(t)

	c.ok("principal", "add", "principals/users/bob", "bob@example.com", "--name", "Bob")
	c.ok("principal", "add", "principals/users/alice", "alice@example.com", "--name", "Alice")
	assert.Contains(t, c.ok("principal", "list"), "principals/users/alice")

	calID := c.ok("calendar", "create", "principals/users/bob", "work", "--name", "Work", "--order", "2")
	require.NotEmpty(t, calID)

	c.ok("share", "add", calID, "mailto:alice@example.com", "--read-only", "--summary", "team calendar")
	shares := c.ok("share", "list", calID)
	assert.Contains(t, shares, "principals/users/alice")
	assert.Contains(t, shares, "noresponse")

	listing := c.ok("calendar", "list", "principals/users/alice")
	assert.Contains(t, listing, "bob:work")

	invites := c.ok("notification", "list", "principals/users/alice", "--xml")
	assert.Contains(t, invites, "invite-notification")
	assert.Contains(t, invites, "team calendar")

	href := c.ok("share", "reply", "mailto:alice@example.com", "calendars/bob/work", "accepted")
	assert.Equal(t, "calendars/alice/bob:work", href)
	assert.Contains(t, c.ok("share", "list", calID), "accepted")
	assert.Contains(t, c.ok("notification", "list", "principals/users/bob"), "InviteReply")

	url := c.ok("publish", calID, "on")
	assert.True(t, strings.HasPrefix(url, "public/"), url)
	assert.Empty(t, c.ok("publish", calID, "off"))

	c.ok("share", "remove", calID, "mailto:alice@example.com")
	assert.NotContains(t, c.ok("share", "list", calID), "alice")
}

func TestNotificationAck(t *testing.T) {
	c := newCLI(t)
	c.ok("principal", "add", "principals/users/bob", "bob@example.com")
	c.ok("principal", "add", "principals/users/alice", "alice@example.com")
	calID := c.ok("calendar", "create", "principals/users/bob", "work")
	c.ok("share", "add", calID, "mailto:alice@example.com")

	lines := strings.Split(c.ok("notification", "list", "principals/users/alice"), "\n")
	require.Len(t, lines, 2, "header and one invite")
	id := strings.Fields(lines[1])[0]

	c.ok("notification", "ack", "principals/users/alice", id)
	lines = strings.Split(c.ok("notification", "list", "principals/users/alice"), "\n")
	assert.Len(t, lines, 1)

	code, _, _ := c.run("notification", "ack", "principals/users/alice", id)
	assert.Equal(t, exitNotFound, code)
}

func TestNotificationSend(t *testing.T) {
	c := newCLI(t)
	c.ok("principal", "add", "principals/users/bob", "bob@example.com")

	c.ok("notification", "send", "principals/users/bob", "maintenance tonight")
	c.ok("notification", "send", "principals/users/bob", "share invalidated", "--priority", "high", "--href", "calendars/bob/work")

	out := c.ok("notification", "list", "principals/users/bob", "--xml")
	assert.Contains(t, out, `type="medium"`, "medium is the default priority")
	assert.Contains(t, out, `type="high"`)
	assert.Contains(t, out, "calendars/bob/work")

	code, _, _ := c.run("notification", "send", "principals/users/bob", "x", "--priority", "urgent")
	assert.Equal(t, exitError, code)
}

func TestErrorExitCodes(t *testing.T) {
	c := newCLI(t)
	c.ok("principal", "add", "principals/users/bob", "bob@example.com")
	calID := c.ok("calendar", "create", "principals/users/bob", "work")

	code, _, errOut := c.run("share", "add", calID, "mailto:nobody@example.com")
	assert.Equal(t, exitUnknownPrincipal, code)
	assert.Contains(t, errOut, "unknown_principal")

	code, _, _ = c.run("publish", "no-such-calendar", "on")
	assert.Equal(t, exitNotFound, code)

	code, _, _ = c.run("publish", calID, "maybe")
	assert.Equal(t, exitError, code)

	code, _, _ = c.run("share", "reply", "mailto:bob@example.com", "calendars/bob/work", "maybe")
	assert.Equal(t, exitError, code)

	code, _, _ = c.run("--log-level", "loud", "principal", "list")
	assert.Equal(t, exitError, code)
}

func TestStoreUnavailable(t *testing.T) {
	c := newCLI(t)
	c.db = filepath.Join(t.TempDir(), "missing-dir", "share.db")
	code, _, _ := c.run("principal", "list")
	assert.Equal(t, exitStoreUnavailable, code)
}

func TestConfigFileAndMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	prom := filepath.Join(dir, "share.prom")
	cfg := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`database = "`+filepath.Join(dir, "cfg.db")+`"

[metrics]
textfile = "`+prom+`"
`), 0o600))

	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{"--config", cfg, "notification", "list", "principals/users/bob"}, &stdout, &stderr), stderr.String())

	_, err := os.Stat(filepath.Join(dir, "cfg.db"))
	assert.NoError(t, err, "database comes from the config file")
	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `operation="list_notifications",status="success"`)
}
