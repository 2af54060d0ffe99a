package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/nsg-intelligence-backend/internal/client"
	"github.com/yungbote/nsg-intelligence-backend/internal/data/repos"
	"github.com/yungbote/nsg-intelligence-backend/internal/modules/calibration"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/dbctx"
)

type apiFlags struct {
	baseURL string
	token   string
	retries int
}

func (f *apiFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.baseURL, "url", "http://localhost:8080", "API base url")
	cmd.Flags().StringVar(&f.token, "token", "", "bearer token")
	cmd.Flags().IntVar(&f.retries, "retries", 2, "retries for transient failures")
	_ = cmd.MarkFlagRequired("token")
}

func (f *apiFlags) client(opts *rootOptions) (*client.Client, func(), error) {
	_, log, err := opts.load()
	if err != nil {
		return nil, nil, err
	}
	c, err := client.New(log, client.Config{
		BaseURL:    f.baseURL,
		Token:      f.token,
		Timeout:    10 * time.Second,
		MaxRetries: f.retries,
	})
	if err != nil {
		log.Sync()
		return nil, nil, err
	}
	return c, func() { log.Sync() }, nil
}

func newOnboardingCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Inspect or repair a user's onboarding state",
	}
	cmd.AddCommand(newOnboardingResetCmd(opts))
	cmd.AddCommand(newOnboardingPrefsCmd(opts))
	cmd.AddCommand(newOnboardingImportCmd(opts))
	return cmd
}

func newOnboardingResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <user-id>",
		Short: "Clear the completion flag so the user goes through calibration again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			svc, err := openDB(cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			repo := repos.NewOnboardingStatusRepo(svc.DB(), log)
			dbc := dbctx.Context{Ctx: cmd.Context()}
			if err := repo.Reset(dbc, userID); err != nil {
				return fmt.Errorf("reset onboarding: %w", err)
			}
			log.Info("onboarding reset", "user_id", userID)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "onboarding reset for %s\n", userID)
			return nil
		},
	}
}

func newOnboardingPrefsCmd(opts *rootOptions) *cobra.Command {
	var (
		api    apiFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Print the stored strategy preferences for the token's user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, done, err := api.client(opts)
			if err != nil {
				return err
			}
			defer done()

			prefs, err := c.Preferences(cmd.Context())
			if err != nil {
				return err
			}
			if prefs == nil {
				return fmt.Errorf("no preferences stored yet")
			}
			return writeOutput(cmd.OutOrStdout(), format, prefs)
		},
	}
	api.bind(cmd)
	cmd.Flags().StringVar(&format, "output", "json", "output format: json|yaml")
	return cmd
}

func newOnboardingImportCmd(opts *rootOptions) *cobra.Command {
	var api apiFlags
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Commit preferences from a json or yaml file for the token's user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			c, done, err := api.client(opts)
			if err != nil {
				return err
			}
			defer done()

			stored, err := c.SavePreferences(cmd.Context(), snap)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "preferences committed (version %d, %d fields)\n",
				stored.Version, stored.Preferences.Len())
			return nil
		},
	}
	api.bind(cmd)
	return cmd
}

// readSnapshot loads a flat key/value file. Validation happens here so a bad
// file fails before any request is made.
func readSnapshot(path string) (calibration.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return calibration.Snapshot{}, err
	}
	var values map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &values)
	default:
		err = json.Unmarshal(raw, &values)
	}
	if err != nil {
		return calibration.Snapshot{}, fmt.Errorf("parse %s: %w", path, err)
	}
	snap, err := calibration.NewSnapshot(values)
	if err != nil {
		return calibration.Snapshot{}, err
	}
	if err := snap.Validate(); err != nil {
		return calibration.Snapshot{}, err
	}
	return snap, nil
}
