package hrctlcli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/platform/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.StoreDriver = "sqlite"
	cfg.SQLitePath = filepath.Join(dir, "data", "hrdesk.db")
	cfg.BackupDir = filepath.Join(dir, "backups")
	return cfg
}

func exec(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, args, &out)
	return out.String(), err
}

func seedEmployee(t *testing.T, cfg config.Config) {
	t.Helper()
	e, err := open(context.Background(), cfg)
	require.NoError(t, err)
	defer e.Close()
	require.NoError(t, e.store.SetEmployees(context.Background(), []records.Employee{
		{ID: "emp_1", Name: "Ana Souza", TaxID: "52998224725", Email: "ana@example.com", Salary: "3500", Department: "Finance", HireDate: "2023-02-01", Status: records.StatusActive},
	}))
}

func TestUsageErrors(t *testing.T) {
	cfg := testConfig(t)
	for _, args := range [][]string{nil, {"nope"}, {"backup"}, {"import"}, {"export", "-format", "csv"}, {"passwd", "-user", "admin"}} {
		_, err := exec(t, cfg, args...)
		assert.ErrorIs(t, err, ErrUsage, "args %v", args)
	}
}

func TestCheckTaxID(t *testing.T) {
	cfg := testConfig(t)
	out, err := exec(t, cfg, "check-taxid", "52998224725")
	require.NoError(t, err)
	assert.Contains(t, out, "529.982.247-25")
	assert.Contains(t, out, "valid")

	out, err = exec(t, cfg, "check-taxid", "52998224725", "11111111111")
	assert.ErrorIs(t, err, ErrInvalidTaxID)
	assert.Contains(t, out, "invalid")
}

func TestSeedAndPasswd(t *testing.T) {
	cfg := testConfig(t)
	out, err := exec(t, cfg, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded")

	out, err = exec(t, cfg, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "already present")

	_, err = exec(t, cfg, "passwd", "-user", "admin", "-password", "s3cret")
	require.NoError(t, err)

	e, err := open(context.Background(), cfg)
	require.NoError(t, err)
	defer e.Close()
	_, err = e.auth.Authenticate(context.Background(), "admin", "s3cret", auth.ModeStandard)
	assert.NoError(t, err)

	_, err = exec(t, cfg, "passwd", "-user", "ghost", "-password", "s3cret")
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	seedEmployee(t, cfg)

	target := filepath.Join(t.TempDir(), "out", "employees.xlsx")
	out, err := exec(t, cfg, "export", "-out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	out, err = exec(t, cfg, "import", "-file", target)
	require.NoError(t, err)
	assert.Contains(t, out, "created 0, updated 1, rejected 0")

	pdf := filepath.Join(t.TempDir(), "summary.pdf")
	_, err = exec(t, cfg, "export", "-format", "pdf", "-out", pdf)
	require.NoError(t, err)
	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestReport(t *testing.T) {
	cfg := testConfig(t)
	seedEmployee(t, cfg)

	out, err := exec(t, cfg, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Employees")
	assert.Contains(t, out, "Average salary")

	out, err = exec(t, cfg, "report", "-json")
	require.NoError(t, err)
	var dash map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &dash))
	assert.Contains(t, string(dash["summary"]), `"totalEmployees":1`)
}

func TestBackupRunListRestore(t *testing.T) {
	cfg := testConfig(t)
	seedEmployee(t, cfg)

	out, err := exec(t, cfg, "backup", "run")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote hrdesk-")

	out, err = exec(t, cfg, "backup", "list")
	require.NoError(t, err)
	names := strings.Fields(out)
	require.Len(t, names, 1)

	e, err := open(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, e.store.SetEmployees(context.Background(), nil))
	e.Close()

	out, err = exec(t, cfg, "backup", "restore")
	require.NoError(t, err)
	assert.Contains(t, out, names[0])

	e, err = open(context.Background(), cfg)
	require.NoError(t, err)
	defer e.Close()
	employees, err := e.store.Employees(context.Background())
	require.NoError(t, err)
	assert.Len(t, employees, 1)

	// The snapshot had no operators; restore must leave a way back in.
	_, err = e.auth.Authenticate(context.Background(), "admin", cfg.SeedAdminPassword, auth.ModeStandard)
	assert.NoError(t, err)
	_, err = e.auth.Authenticate(context.Background(), "master", cfg.SeedMasterPassword, auth.ModeMaster)
	assert.NoError(t, err)
}
