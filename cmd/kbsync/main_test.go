package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbsync/internal/config"
)

const helpCenterPath = "/api/v2/help_center/en-us"

// newHelpCenter serves one page per listing.
func newHelpCenter(t *testing.T) *httptest.Server {
	t.Helper()

	listings := map[string][]map[string]any{
		"categories": {
			{"id": 1, "name": "Billing & Plans"},
		},
		"sections": {
			{"id": 10, "name": "Invoices", "category_id": 1},
		},
		"articles": {
			{
				"id": 100, "title": "Download an invoice", "section_id": 10,
				"body":       "<p>Open <strong>Billing</strong> and click <em>Download</em>.</p>",
				"updated_at": "2025-06-01T10:00:00Z", "html_url": "https://acme.zendesk.com/hc/articles/100",
			},
			{
				"id": 101, "title": "Lost article", "section_id": 999,
				"body": "", "updated_at": "2025-06-02T10:00:00Z",
			},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "agent@acme.com/token" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		listing := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, helpCenterPath+"/"), ".json")

		records, ok := listings[listing]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{listing: records, "next_page": nil})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestSyncDryRun(t *testing.T) {
	srv := newHelpCenter(t)
	t.Setenv("ZENDESK_TOKEN", "secret")
	t.Setenv("ZENDESK_SUBDOMAIN", "")
	t.Setenv("ZENDESK_EMAIL", "")

	stdout, stderr, err := execute(t, "", "sync", "--dry-run",
		"--base-url", srv.URL+helpCenterPath, "--email", "agent@acme.com", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, stdout, "# Knowledge Base")
	assert.Contains(t, stdout, "> Total articles: 2")
	assert.Contains(t, stdout, "1. [Billing & Plans](#billing-plans)")
	assert.Contains(t, stdout, "#### Download an invoice")
	assert.Contains(t, stdout, "Open **Billing** and click *Download*.")
	assert.Contains(t, stdout, "## Other")
	assert.Contains(t, stdout, "### Unknown\n")

	assert.Contains(t, stderr, "Summary Report")
	assert.Contains(t, stderr, "Orphan Articles: 1")
}

func TestSyncWritesSignedDocument(t *testing.T) {
	srv := newHelpCenter(t)
	t.Setenv("ZENDESK_TOKEN", "secret")

	out := filepath.Join(t.TempDir(), "kb.md")

	stdout, _, err := execute(t, "", "sync", "--sign",
		"--base-url", srv.URL+helpCenterPath, "--email", "agent@acme.com",
		"--output", out, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Output: "+out)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "KBSYNC_START")

	stdout, _, err = execute(t, "", "validate", "--require-signature", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "snapshot intact")
	assert.Contains(t, stdout, "document is valid")

	tampered := strings.Replace(string(content), "Download an invoice", "Download a receipt", 1)
	require.NoError(t, os.WriteFile(out, []byte(tampered), 0o600))

	_, _, err = execute(t, "", "validate", out)
	require.Error(t, err)
}

func TestSyncUnauthorized(t *testing.T) {
	srv := newHelpCenter(t)
	t.Setenv("ZENDESK_TOKEN", "wrong")

	_, _, err := execute(t, "", "sync", "--dry-run",
		"--base-url", srv.URL+helpCenterPath, "--email", "agent@acme.com", "--log-level", "error")
	require.Error(t, err)
}

func TestSyncMissingToken(t *testing.T) {
	t.Setenv("ZENDESK_TOKEN", "")

	_, _, err := execute(t, "", "sync", "--dry-run", "--subdomain", "acme", "--email", "agent@acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestConvertStdin(t *testing.T) {
	stdout, _, err := execute(t, "<p>Use <strong>kbsync</strong> &amp; relax.</p>", "convert")
	require.NoError(t, err)
	assert.Equal(t, "Use **kbsync** & relax.\n", stdout)
}

func TestValidateUnsigned(t *testing.T) {
	doc := strings.Join([]string{
		"# Knowledge Base",
		"",
		"> Total articles: 0",
		"",
		"## Table of Contents",
		"",
		"1. [Missing](#missing)",
		"",
	}, "\n")

	path := filepath.Join(t.TempDir(), "kb.md")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	stdout, _, err := execute(t, "", "validate", path)
	require.Error(t, err)
	assert.Contains(t, stdout, "#missing")

	_, _, err = execute(t, "", "validate", "--require-signature", path)
	require.ErrorIs(t, err, ErrSignatureRequired)
}

func TestConfigInitThenCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "kbsync.yaml")

	stdout, _, err := execute(t, "", "config", "init", "--subdomain", "acme", "--email", "agent@acme.com", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path)

	_, _, err = execute(t, "", "config", "init", path)
	require.ErrorIs(t, err, ErrConfigExists)

	t.Setenv("ZENDESK_TOKEN", "")

	_, _, err = execute(t, "", "config", "check", path)
	require.ErrorIs(t, err, config.ErrMissingToken)

	t.Setenv("ZENDESK_TOKEN", "secret")

	stdout, _, err = execute(t, "", "config", "check", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "https://acme.zendesk.com/api/v2/help_center/en-us")
	assert.NotContains(t, stdout, "secret")
}
