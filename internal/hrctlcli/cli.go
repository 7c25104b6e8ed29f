// Package hrctlcli is the operator command line: seeding, tax id checks,
// spreadsheet import and export, reports, backups and password resets, all
// against the same store the server uses.
package hrctlcli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/hr"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/reports"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/domain/taxid"
	"hrdesk/internal/platform/backup"
	"hrdesk/internal/platform/config"
	"hrdesk/internal/platform/export"
	"hrdesk/internal/platform/kv"
	"hrdesk/internal/platform/logging"
)

var ErrUsage = errors.New("usage")

// ErrInvalidTaxID is returned by check-taxid when any value fails.
var ErrInvalidTaxID = errors.New("invalid tax id")

const usage = `hrctl <command> [flags]

commands:
  seed                        create the default operators when none exist
  check-taxid VALUE...        validate and format CPF numbers
  export [-format xlsx|pdf] [-out PATH]
  import -file PATH [-actor NAME]
  report [-json]
  backup run | list | restore [-name NAME]
  passwd -user NAME -password VALUE`

func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, usage)
}

func Execute(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(os.Stderr, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return run(ctx, cfg, args, os.Stdout)
}

func usageError() error {
	return fmt.Errorf("%w: hrctl <seed|check-taxid|export|import|report|backup|passwd> [...]", ErrUsage)
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return usageError()
	}
	if args[0] == "check-taxid" {
		return runCheckTaxID(args[1:], out)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var cmd func(context.Context, *env, []string, io.Writer) error
	switch args[0] {
	case "seed":
		cmd = runSeed
	case "export":
		cmd = runExport
	case "import":
		cmd = runImport
	case "report":
		cmd = runReport
	case "backup":
		cmd = runBackup
	case "passwd":
		cmd = runPasswd
	default:
		return usageError()
	}

	e, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.Close()
	return cmd(ctx, e, args[1:], out)
}

// env is the store plus the services the commands share.
type env struct {
	cfg     config.Config
	backend kv.Backend
	store   *records.Store
	auth    *auth.Service
	hr      *hr.Service
	reports *reports.Service
}

func open(ctx context.Context, cfg config.Config) (*env, error) {
	if strings.EqualFold(cfg.StoreDriver, "sqlite") {
		if err := ensureParentDirs(cfg.SQLitePath); err != nil {
			return nil, err
		}
	}
	backend, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	store := records.NewStore(backend, records.WithLogger(slog.Default()))
	authSvc := auth.NewService(store)
	return &env{
		cfg:     cfg,
		backend: backend,
		store:   store,
		auth:    authSvc,
		hr:      hr.NewService(store, authSvc, hr.WithAudit(audit.New(store, cfg.AuditRetain))),
		reports: reports.NewService(store),
	}, nil
}

func (e *env) Close() {
	if err := e.backend.Close(); err != nil {
		slog.Warn("store close failed", "err", err)
	}
}

// operator is the session recorded against changes made from the command
// line.
func operator(name string) session.Session {
	return session.Session{Username: name, Role: auth.RoleMaster, Master: true}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	return nil
}

func runSeed(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := newFlagSet("seed")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	seeded, err := e.auth.SeedDefaultUsers(ctx, auth.DefaultSeed(e.cfg.SeedAdminPassword, e.cfg.SeedMasterPassword))
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if seeded {
		fmt.Fprintln(out, "seeded default operators")
		return nil
	}
	fmt.Fprintln(out, "operators already present")
	return nil
}

func runCheckTaxID(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: check-taxid VALUE...", ErrUsage)
	}
	invalid := 0
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, value := range args {
		status := "valid"
		if !taxid.IsValid(value) {
			status = "invalid"
			invalid++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", value, taxid.Format(value), status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidTaxID, invalid, len(args))
	}
	return nil
}

func runExport(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := newFlagSet("export")
	format := fs.String("format", "xlsx", "xlsx or pdf")
	path := fs.String("out", "", "output file (default: dated name in the working directory)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	now := e.store.Now()
	report, err := export.Collect(ctx, e.store, now)
	if err != nil {
		return err
	}
	var data []byte
	switch strings.ToLower(*format) {
	case "xlsx":
		buf, err := export.Workbook(report)
		if err != nil {
			return fmt.Errorf("build workbook: %w", err)
		}
		data = buf.Bytes()
	case "pdf":
		data, err = export.SummaryPDF(report)
		if err != nil {
			return fmt.Errorf("build pdf: %w", err)
		}
	default:
		return fmt.Errorf("%w: export format must be xlsx or pdf", ErrUsage)
	}

	target := *path
	if target == "" {
		target = export.FileName(now, "."+strings.ToLower(*format))
	}
	if err := ensureParentDirs(target); err != nil {
		return err
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	fmt.Fprintf(out, "wrote %s (%d bytes)\n", target, len(data))
	return nil
}

func runImport(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := newFlagSet("import")
	path := fs.String("file", "", "xlsx or xls employee sheet")
	actor := fs.String("actor", "hrctl", "name recorded in the audit trail")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("%w: import -file is required", ErrUsage)
	}

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()
	rows, err := export.ReadRows(f, filepath.Base(*path))
	if err != nil {
		return err
	}
	inputs, err := export.EmployeeRows(rows)
	if err != nil {
		return err
	}
	result, err := e.hr.ImportEmployees(ctx, operator(*actor), inputs)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %d, updated %d, rejected %d\n", result.Created, result.Updated, len(result.Rejected))
	for _, rej := range result.Rejected {
		for _, issue := range rej.Issues {
			fmt.Fprintf(out, "  row %d: %s %s\n", rej.Row, issue.Field, issue.Reason)
		}
	}
	return nil
}

func runReport(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := newFlagSet("report")
	asJSON := fs.Bool("json", false, "print the dashboard as JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *asJSON {
		dash, err := e.reports.Dashboard(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dash)
	}

	now := e.store.Now()
	report, err := export.Collect(ctx, e.store, now)
	if err != nil {
		return err
	}
	s := report.Summary
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Employees\t%d\n", s.TotalEmployees)
	fmt.Fprintf(tw, "Active\t%d\n", s.Active)
	fmt.Fprintf(tw, "Inactive\t%d\n", s.Inactive)
	fmt.Fprintf(tw, "Trainings\t%d\n", s.Trainings)
	fmt.Fprintf(tw, "Average salary\t%.2f\n", s.AverageSalary)
	fmt.Fprintf(tw, "\nLateness %s to %s\n", report.WeekStart.Format("2006-01-02"), report.WeekEnd.Format("2006-01-02"))
	for _, row := range report.Lateness {
		fmt.Fprintf(tw, "%s\t%.2f h\n", row.EmployeeName, row.HoursLate)
	}
	return tw.Flush()
}

func runBackup(ctx context.Context, e *env, args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: backup run | list | restore [-name NAME]", ErrUsage)
	}
	sink, err := backup.OpenSink(ctx, e.cfg)
	if err != nil {
		return fmt.Errorf("open backup sink: %w", err)
	}
	svc := backup.NewService(e.store, sink)

	switch args[0] {
	case "run":
		result, err := svc.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s to %s (%d bytes)\n", result.Name, result.Sink, result.Bytes)
		return nil
	case "list":
		names, err := sink.List(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	case "restore":
		fs := newFlagSet("backup restore")
		name := fs.String("name", "", "snapshot to restore (default: newest)")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		target := *name
		if target == "" {
			if target, err = svc.Latest(ctx); err != nil {
				return err
			}
			if target == "" {
				return fmt.Errorf("no backups in %s", sink.String())
			}
		}
		snap, err := svc.RestoreFrom(ctx, target)
		if err != nil {
			return fmt.Errorf("restore %s: %w", target, err)
		}
		if _, err := e.auth.SeedDefaultUsers(ctx, auth.DefaultSeed(e.cfg.SeedAdminPassword, e.cfg.SeedMasterPassword)); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		fmt.Fprintf(out, "restored %s (%d collections)\n", target, len(snap.Collections))
		return nil
	default:
		return fmt.Errorf("%w: unknown backup action %q", ErrUsage, args[0])
	}
}

func runPasswd(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := newFlagSet("passwd")
	user := fs.String("user", "", "operator username")
	password := fs.String("password", "", "new password (min 4 chars)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *user == "" || len(*password) < 4 {
		return fmt.Errorf("%w: passwd -user NAME -password VALUE (min 4 chars)", ErrUsage)
	}
	if err := e.auth.SetPassword(ctx, *user, *password); err != nil {
		return err
	}
	fmt.Fprintf(out, "password updated for %s\n", *user)
	return nil
}

func ensureParentDirs(paths ...string) error {
	for _, p := range paths {
		dir := filepath.Dir(p)
		if dir == "." || dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
