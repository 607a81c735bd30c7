package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/codec"
	"invoicer/pkg/models"
)

type runResult struct {
	stdout string
	stderr string
}

func run(t *testing.T, storeDir string, args ...string) (runResult, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--backend", "file", "--store-path", storeDir))
	err := root.Execute()
	return runResult{stdout: stdout.String(), stderr: stderr.String()}, err
}

func mustRun(t *testing.T, storeDir string, args ...string) runResult {
	t.Helper()
	res, err := run(t, storeDir, args...)
	require.NoError(t, err, "invoicer %v\nstderr: %s", args, res.stderr)
	return res
}

func decodeInvoice(t *testing.T, s string) models.Invoice {
	t.Helper()
	var doc models.Invoice
	require.NoError(t, json.Unmarshal([]byte(s), &doc))
	return doc
}

func createSample(t *testing.T, storeDir string) models.Invoice {
	t.Helper()
	res := mustRun(t, storeDir, "new",
		"--set", "invoiceNumber=INV-2026-001",
		"--set", "businessName=Northwind Studio",
		"--set", "clientName=Acme Ltd",
		"--item", "1.description=Design work",
		"--item", "1.quantity=2",
		"--item", "1.rate=50",
		"--item", "1.taxRate=10",
		"--item", "1.discountRate=20",
		"--set", "discountRate=10",
		"--set", "taxRate=5",
		"--save",
	)
	return decodeInvoice(t, res.stdout)
}

func TestNew_WithoutSaveLeavesStoreEmpty(t *testing.T) {
	dir := t.TempDir()

	res := mustRun(t, dir, "new", "--set", "invoiceNumber=DRAFT")
	doc := decodeInvoice(t, res.stdout)
	assert.Equal(t, "DRAFT", doc.InvoiceNumber)
	assert.False(t, doc.IsPersisted())
	require.Len(t, doc.Items, 1)

	res = mustRun(t, dir, "list")
	assert.Contains(t, res.stdout, "No invoices found.")
}

func TestNewSaveListShow(t *testing.T) {
	dir := t.TempDir()
	saved := createSample(t, dir)

	require.True(t, saved.IsPersisted())
	assert.InDelta(t, 83.16, saved.Total.Float(), 1e-9)

	res := mustRun(t, dir, "list")
	assert.Contains(t, res.stdout, saved.ID.String())
	assert.Contains(t, res.stdout, "$83.16")

	res = mustRun(t, dir, "list", "--search", "acme")
	assert.Contains(t, res.stdout, "INV-2026-001")
	res = mustRun(t, dir, "list", "--search", "globex")
	assert.Contains(t, res.stdout, "No invoices found.")

	res = mustRun(t, dir, "show", saved.ID.String())
	shown := decodeInvoice(t, res.stdout)
	assert.Equal(t, saved.ID, shown.ID)
	assert.Equal(t, saved.CreatedAt, shown.CreatedAt)

	_, err := run(t, dir, "show", "missing")
	assert.Error(t, err)
}

func TestEdit_SaveKeepsIdentity(t *testing.T) {
	dir := t.TempDir()
	saved := createSample(t, dir)

	res := mustRun(t, dir, "edit", saved.ID.String(),
		"--add-item", "1",
		"--item", "2.description=Hosting",
		"--item", "2.rate=12",
		"--save",
	)
	edited := decodeInvoice(t, res.stdout)

	assert.Equal(t, saved.ID, edited.ID)
	assert.Equal(t, saved.CreatedAt, edited.CreatedAt)
	require.NotNil(t, edited.UpdatedAt)
	require.Len(t, edited.Items, 2)
	assert.InDelta(t, 100, edited.Subtotal.Float(), 1e-9)

	res = mustRun(t, dir, "list", "--json")
	var docs []models.Invoice
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &docs))
	assert.Len(t, docs, 1)
}

func TestEdit_FailedEditChangesNothing(t *testing.T) {
	dir := t.TempDir()
	saved := createSample(t, dir)

	_, err := run(t, dir, "edit", saved.ID.String(), "--set", "notes=x", "--item", "7.rate=1", "--save")
	require.Error(t, err)

	_, err = run(t, dir, "edit", saved.ID.String(), "--set", "total=1")
	require.Error(t, err)

	res := mustRun(t, dir, "show", saved.ID.String())
	assert.Empty(t, decodeInvoice(t, res.stdout).Notes)
}

func TestEdit_File(t *testing.T) {
	dir := t.TempDir()
	draft := filepath.Join(t.TempDir(), "draft.json")
	require.NoError(t, os.WriteFile(draft, []byte(`{"invoiceNumber":"D-1","items":[{"id":"a","quantity":"3","rate":10}]}`), 0o600))

	mustRun(t, dir, "edit", draft, "--remove-item", "a", "--add-item", "1", "--item", "1.rate=7", "-o", draft)

	data, err := os.ReadFile(draft)
	require.NoError(t, err)
	doc := decodeInvoice(t, string(data))
	require.Len(t, doc.Items, 1)
	assert.NotEqual(t, models.ID("a"), doc.Items[0].ID)
	assert.InDelta(t, 7, doc.Total.Float(), 1e-9)
}

func TestSaveFromFile(t *testing.T) {
	dir := t.TempDir()
	draft := filepath.Join(t.TempDir(), "draft.json")
	require.NoError(t, os.WriteFile(draft, []byte(`{"invoiceNumber":"F-1","items":[{"id":"a","quantity":1,"rate":40}]}`), 0o600))

	first := decodeInvoice(t, mustRun(t, dir, "save", draft).stdout)
	second := decodeInvoice(t, mustRun(t, dir, "save", draft).stdout)
	assert.NotEqual(t, first.ID, second.ID, "a document without a stored id is saved as new")
	assert.InDelta(t, 40, first.Total.Float(), 1e-9)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	saved := createSample(t, dir)

	res := mustRun(t, dir, "delete", "does-not-exist")
	assert.Contains(t, res.stderr, "nothing deleted")

	mustRun(t, dir, "delete", saved.ID.String())
	res = mustRun(t, dir, "list")
	assert.Contains(t, res.stdout, "No invoices found.")
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	saved := createSample(t, dir)
	backupDir := t.TempDir()

	mustRun(t, dir, "export", "-o", backupDir)
	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	backupPath := filepath.Join(backupDir, entries[0].Name())
	assert.Regexp(t, `^invoices-backup-\d+\.json$`, entries[0].Name())

	other := createSample(t, dir)
	res := mustRun(t, dir, "import", backupPath)
	assert.Contains(t, res.stdout, "Replaced the store with 1 invoices")

	_, err = run(t, dir, "show", other.ID.String())
	assert.Error(t, err, "replace drops invoices not in the backup")
	mustRun(t, dir, "show", saved.ID.String())

	other = createSample(t, dir)
	res = mustRun(t, dir, "import", backupPath, "--merge")
	assert.Contains(t, res.stdout, "Merged 1 invoices")
	mustRun(t, dir, "show", other.ID.String())
}

func TestImport_MalformedLeavesStore(t *testing.T) {
	dir := t.TempDir()
	saved := createSample(t, dir)
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"invoices": "oops"}`), 0o600))

	_, err := run(t, dir, "import", bad)
	require.ErrorIs(t, err, codec.ErrMalformedPayload)
	mustRun(t, dir, "show", saved.ID.String())
}

func TestCalcAndRender(t *testing.T) {
	dir := t.TempDir()
	saved := createSample(t, dir)

	res := mustRun(t, dir, "calc", saved.ID.String())
	assert.Contains(t, res.stdout, "$88.00")
	assert.Contains(t, res.stdout, "$83.16")

	res = mustRun(t, dir, "render", saved.ID.String())
	var req struct {
		Template string `json:"template"`
		Display  struct {
			Total string `json:"total"`
		} `json:"display"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &req))
	assert.Equal(t, "minimal", req.Template)
	assert.Equal(t, "$83.16", req.Display.Total)

	mustRun(t, dir, "edit", saved.ID.String(), "--set", "clientName=", "--save")
	_, err := run(t, dir, "render", saved.ID.String())
	assert.Error(t, err)
}
