// Command rasyonctl: vergi hesapları, yedek alma/yükleme ve migration için
// operatör aracı.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rasyon-backend/internal/config"
	"rasyon-backend/internal/tax"
	"rasyon-backend/pkg/logger"
)

var (
	envFile   string
	tablePath string
	logLevel  string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rasyonctl",
		Short:         "RASYON operatör aracı",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", ".env dosyası (boşsa çalışma dizinindeki .env)")
	root.PersistentFlags().StringVar(&tablePath, "tax-table", "", "vergi tablosu YAML dosyası (boşsa gömülü tablo)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log seviyesi")

	root.AddCommand(newTaxCmd(), newBackupCmd(), newMigrateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hata:", err)
		os.Exit(1)
	}
}

func loadTable() (*tax.Table, error) {
	if tablePath == "" {
		return tax.Default(), nil
	}
	return tax.Load(tablePath)
}

// loadConfig: depo gerektiren komutlar için config ve logger
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("logger oluşturulamadı: %w", err)
	}
	return cfg, log, nil
}
