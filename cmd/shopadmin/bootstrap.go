package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shopadmin/internal/admission"
	"shopadmin/internal/backend"
)

var credentialPath string

// serviceCredential is the operator credential file that authorizes
// bootstrap access to the store.
type serviceCredential struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

var bootstrapAdminCmd = &cobra.Command{
	Use:   "bootstrap-admin",
	Short: "Grant the first admin flag",
	Long: `Grants the admin flag to a user, bypassing the dashboard's own
permission check. Requires a service credential file on local disk; the
command refuses to run without one.

Prompts for the user id and email, writes the admin flag, verifies it back,
and creates the placeholder collections the dashboard expects.`,
	RunE: runBootstrapAdmin,
}

func init() {
	bootstrapAdminCmd.Flags().StringVar(&credentialPath, "credentials", "", "Service credential JSON file (default: <data dir>/service-account.json)")
}

func loadCredential() (*serviceCredential, error) {
	path := credentialPath
	if path == "" {
		path = filepath.Join(filepath.Dir(cfg.Store.DatabasePath), "service-account.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("service credential file %s: %w", path, err)
	}
	var cred serviceCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("service credential file %s is malformed: %w", path, err)
	}
	if cred.ProjectID == "" || cred.ClientEmail == "" {
		return nil, fmt.Errorf("service credential file %s is missing project_id or client_email", path)
	}
	return &cred, nil
}

func prompt(r *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runBootstrapAdmin(cmd *cobra.Command, args []string) error {
	cred, err := loadCredential()
	if err != nil {
		// Missing or malformed credentials exit non-zero via RunE.
		return err
	}
	logger.Info("service credential loaded",
		zap.String("project", cred.ProjectID),
		zap.String("operator", cred.ClientEmail))

	reader := bufio.NewReader(os.Stdin)
	userID, err := prompt(reader, "User id to promote")
	if err != nil {
		return err
	}
	email, err := prompt(reader, "User email")
	if err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout())
	defer cancel()

	checker := admission.New(store)
	if err := checker.Bootstrap(ctx, userID, email); err != nil {
		return err
	}

	// Verify the flag reads back before reporting success.
	if !checker.IsAdmin(ctx, userID) {
		return fmt.Errorf("admin flag for %s did not verify after write", userID)
	}
	logger.Info("admin flag written and verified", zap.String("user", userID))

	// Placeholder collections so the dashboard's pages have something to
	// query on first run.
	for _, col := range []string{
		backend.CollectionUsers,
		backend.CollectionProducts,
		backend.CollectionOrders,
		backend.CollectionItems,
	} {
		doc := store.Collection(col).Doc("_placeholder")
		if _, err := doc.Get(ctx); err == nil {
			continue
		}
		if err := doc.Set(ctx, map[string]any{"placeholder": true, "createdAt": backend.ServerTimestamp}); err != nil {
			return fmt.Errorf("failed to create %s placeholder: %w", col, err)
		}
	}

	fmt.Printf("Admin access granted to %s (%s).\n\n", userID, email)
	fmt.Println("If this store is fronted by a shared backend, apply a rule equivalent to:")
	fmt.Println(securityRuleText)
	return nil
}

const securityRuleText = `  match /admin/{userId} {
    allow read: if request.auth != null && request.auth.uid == userId;
    allow write: if false; // only bootstrap-admin writes admin flags
  }`
