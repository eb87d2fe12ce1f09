package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rasyon-backend/internal/backup"
	"rasyon-backend/internal/repository"
	"rasyon-backend/internal/scheduler"
	"rasyon-backend/internal/server"
	"rasyon-backend/internal/store"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Kullanıcı durumunun JSON yedeği",
	}
	cmd.AddCommand(newBackupExportCmd(), newBackupImportCmd(), newBackupRunCmd())
	return cmd
}

// withRepo: config'e göre depoyu açar, iş bitince kapatır
func withRepo(ctx context.Context, fn func(repository.Repository) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	repo, err := server.OpenRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repo.Close(ctx)
	return fn(repo)
}

func exportState(ctx context.Context, states repository.StateStore, userID uint, out io.Writer, now time.Time) error {
	snap, err := states.LoadState(ctx, userID)
	if err != nil {
		return fmt.Errorf("kullanıcı %d durumu okunamadı: %w", userID, err)
	}
	data, err := backup.Export(snap, now)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func importState(ctx context.Context, states repository.StateStore, userID uint, data []byte) (store.State, error) {
	doc, err := backup.Import(data)
	if err != nil {
		return store.State{}, err
	}
	svc := store.NewService(states, 0, nil)
	st, err := svc.Replace(ctx, userID, store.FromSnapshot(doc.Snapshot))
	if err != nil {
		return store.State{}, err
	}
	if err := svc.Close(ctx); err != nil {
		return store.State{}, err
	}
	return st, nil
}

func newBackupExportCmd() *cobra.Command {
	var (
		userID uint
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Kullanıcının durumunu JSON olarak yazar",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withRepo(ctx, func(repo repository.Repository) error {
				out := cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					out = f
				}
				return exportState(ctx, repo, userID, out, time.Now())
			})
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "kullanıcı ID")
	cmd.Flags().StringVarP(&output, "output", "o", "", "çıktı dosyası (boşsa stdout)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newBackupImportCmd() *cobra.Command {
	var userID uint
	cmd := &cobra.Command{
		Use:   "import <dosya.json>",
		Short: "JSON yedeği kullanıcının durumunun yerine yükler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withRepo(ctx, func(repo repository.Repository) error {
				if _, err := repo.UserByID(ctx, userID); err != nil {
					return fmt.Errorf("kullanıcı %d: %w", userID, err)
				}
				st, err := importState(ctx, repo, userID, data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "İçe aktarıldı: %d hammadde, %d ara ürün, %d reçete, %d gider\n",
					len(st.RawIngredients), len(st.IntermediateProducts), len(st.Recipes), len(st.Expenses))
				return nil
			})
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "kullanıcı ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newBackupRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Tüm kullanıcılar için yedekleme işini hemen çalıştırır",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withRepo(ctx, func(repo repository.Repository) error {
				res, err := scheduler.NewBackupJob(repo, nil).Run(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			})
		},
	}
}
