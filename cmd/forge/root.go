package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "A package-aware incremental build engine for native-code libraries",
	Long: "forge discovers libraries organized into src/ and include/ trees, " +
		"builds a dependency-ordered compile/archive/link plan, and executes " +
		"it incrementally against a configured toolchain.",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .forge.toml)")
	rootCmd.PersistentFlags().Int("parallelism", 0, "max concurrent compiles (0 = use config/CPU count)")
	rootCmd.PersistentFlags().Bool("warnings", true, "enable compiler warnings")
	rootCmd.PersistentFlags().Bool("build-tests", true, "build test executables and header-independence checks")
	rootCmd.PersistentFlags().Bool("build-apps", true, "build app executables")
	rootCmd.PersistentFlags().String("toolchain", "", "toolchain family: gnu or msvc (default from config)")
	rootCmd.PersistentFlags().String("compiler", "", "compiler executable (default from config)")
	rootCmd.PersistentFlags().String("out-subdir", "", "build output subdirectory (default from config)")

	_ = viper.BindPFlag("parallelism", rootCmd.PersistentFlags().Lookup("parallelism"))
	_ = viper.BindPFlag("warnings", rootCmd.PersistentFlags().Lookup("warnings"))
	_ = viper.BindPFlag("build_tests", rootCmd.PersistentFlags().Lookup("build-tests"))
	_ = viper.BindPFlag("build_apps", rootCmd.PersistentFlags().Lookup("build-apps"))

	rootCmd.AddCommand(buildCmd, planCmd, watchCmd)
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".forge")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("FORGE")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// overrideFromFlags applies any non-empty string flags that bindPFlag
// can't express directly (toolchain/compiler/out-subdir default to ""
// meaning "use config", not "set to empty").
func overrideFromFlags(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetString("toolchain"); v != "" {
		viper.Set("toolchain", v)
	}
	if v, _ := cmd.Flags().GetString("compiler"); v != "" {
		viper.Set("compiler", v)
	}
	if v, _ := cmd.Flags().GetString("out-subdir"); v != "" {
		viper.Set("out_subdir", v)
	}
	if v, _ := cmd.Flags().GetInt("parallelism"); v > 0 {
		viper.Set("parallelism", v)
	}
}
