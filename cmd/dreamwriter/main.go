// Package main DreamWriter API 服务入口
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "dreamwriter",
	Short: "DreamWriter - AI-assisted novel writing backend",
	Long: `DreamWriter stores novels, character cards and chapters, and streams
new chapters and outlines from an OpenAI-compatible model over SSE.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "configs", "directory containing config.yaml")
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
