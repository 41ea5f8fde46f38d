package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"claimreview/internal/review"
	"claimreview/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	dataDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		dataDir:    filepath.Join(base, "data"),
	}
	content := fmt.Sprintf("[paths]\ndata_dir = %q\nlog_dir = %q\n",
		env.dataDir, filepath.Join(base, "logs"))
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

// seedRecord appends a pending record and releases the store lock so CLI
// commands can take it.
func (env *cliTestEnv) seedRecord(t *testing.T, suffix string) *review.Record {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.DataDir = env.dataDir
	store, err := review.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	record := testsupport.SampleRecord(suffix)
	if err := store.Append(context.Background(), record); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return record
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestCLIQueueListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "No claims awaiting review")
}

func TestCLIQueueListDegradesOnCorruptStore(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := os.MkdirAll(env.dataDir, 0o755); err != nil {
		t.Fatalf("mkdir data dir: %v", err)
	}
	dbPath := filepath.Join(env.dataDir, "reviews.db")
	if err := os.WriteFile(dbPath, []byte("not a sqlite database"), 0o644); err != nil {
		t.Fatalf("write corrupt database: %v", err)
	}

	out, stderr, err := runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list should report an empty queue, got %v", err)
	}
	requireContains(t, out, "No claims awaiting review")
	requireContains(t, stderr, "Warning:")
}

func TestCLIFlagDecisionHistoryFlow(t *testing.T) {
	env := setupCLITestEnv(t)

	claimPath := filepath.Join(env.baseDir, "claim.json")
	claim := `{
  "policy_number": "POL-3301",
  "policyholder_name": "Dana Whitfield",
  "claim_amount": 49000,
  "claim_date": "2024-06-01",
  "reason_for_claim": "Vehicle fire",
  "policy_limit": 50000,
  "claim_history_count": 4
}`
	if err := os.WriteFile(claimPath, []byte(claim), 0o644); err != nil {
		t.Fatalf("write claim: %v", err)
	}

	out, _, err := runCLI(t, []string{"flag", claimPath}, env.configPath)
	if err != nil {
		t.Fatalf("flag: %v", err)
	}
	requireContains(t, out, "POL-3301")
	requireContains(t, out, "Queued REV-")

	reviewID := extractReviewID(t, out)

	out, _, err = runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "POL-3301")
	requireContains(t, out, reviewID)

	out, _, err = runCLI(t, []string{"queue", "show", reviewID}, env.configPath)
	if err != nil {
		t.Fatalf("queue show: %v", err)
	}
	requireContains(t, out, "Dana Whitfield")
	requireContains(t, out, "Pending")

	out, _, err = runCLI(t, []string{
		"approve", reviewID,
		"--reviewer", "Morgan",
		"--notes", "Damage assessment verified against the fire report",
	}, env.configPath)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	requireContains(t, out, "Approved by Morgan")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, reviewID)
	requireContains(t, out, "APPROVE")

	// A second decision on the same review must fail.
	_, _, err = runCLI(t, []string{
		"reject", reviewID,
		"--reviewer", "Priya",
		"--notes", "Attempting to reverse the earlier approval decision",
	}, env.configPath)
	if err == nil {
		t.Fatal("expected error deciding an already-decided review")
	}
	requireContains(t, err.Error(), "already has a recorded decision")
}

func TestCLIFlagSkipsLowRiskClaim(t *testing.T) {
	env := setupCLITestEnv(t)

	claimPath := filepath.Join(env.baseDir, "claim.json")
	claim := `{"policy_number": "POL-42", "claim_amount": 1200, "claim_date": "2024-06-01"}`
	if err := os.WriteFile(claimPath, []byte(claim), 0o644); err != nil {
		t.Fatalf("write claim: %v", err)
	}

	out, _, err := runCLI(t, []string{"flag", claimPath}, env.configPath)
	if err != nil {
		t.Fatalf("flag: %v", err)
	}
	requireContains(t, out, "below the review threshold")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "No claims awaiting review")

	// --force queues it anyway.
	out, _, err = runCLI(t, []string{"flag", claimPath, "--force"}, env.configPath)
	if err != nil {
		t.Fatalf("flag --force: %v", err)
	}
	requireContains(t, out, "Queued REV-")
}

func TestCLIDecisionValidation(t *testing.T) {
	env := setupCLITestEnv(t)
	record := env.seedRecord(t, "cli-validate")

	_, _, err := runCLI(t, []string{
		"approve", record.ReviewID,
		"--reviewer", "Morgan",
		"--notes", "too short",
	}, env.configPath)
	if err == nil {
		t.Fatal("expected error for short notes")
	}
	requireContains(t, err.Error(), "at least")

	_, _, err = runCLI(t, []string{
		"approve", "REV-ghost",
		"--reviewer", "Morgan",
		"--notes", "Long enough notes for a review that does not exist",
	}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown review id")
	}
	requireContains(t, err.Error(), "not in the pending queue")
}

func TestCLIQueueStatsAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRecord(t, "stats-1")
	env.seedRecord(t, "stats-2")

	out, _, err := runCLI(t, []string{"queue", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("queue stats: %v", err)
	}
	requireContains(t, out, "Pending")
	requireContains(t, out, "2")

	_, _, err = runCLI(t, []string{"queue", "clear"}, env.configPath)
	if err == nil {
		t.Fatal("queue clear should require --force")
	}

	out, _, err = runCLI(t, []string{"queue", "clear", "--force"}, env.configPath)
	if err != nil {
		t.Fatalf("queue clear --force: %v", err)
	}
	requireContains(t, out, "Cleared 2 pending reviews")
}

func TestCLIQueueHealth(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedRecord(t, "health")

	out, _, err := runCLI(t, []string{"queue", "health"}, env.configPath)
	if err != nil {
		t.Fatalf("queue health: %v", err)
	}
	requireContains(t, out, "Review database")
	requireContains(t, out, "pending_reviews")
}

func extractReviewID(t *testing.T, output string) string {
	t.Helper()
	for _, field := range strings.Fields(output) {
		if strings.HasPrefix(field, "REV-") {
			return field
		}
	}
	t.Fatalf("no review id in output: %q", output)
	return ""
}
