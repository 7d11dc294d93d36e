// Package config provides configuration management for the security report
// generator. It loads settings from the environment and an optional YAML
// file, validates them, and resolves the working directories.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (secreport.yaml, config.yaml, configs/config.yaml)
//	3. Struct-tag defaults (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SECREPORT_<SECTION>_<FIELD>:
//
//	SECREPORT_PATHS_INPUT_DIR=xls_folder
//	SECREPORT_PATHS_TEMP_DIR=reports
//	SECREPORT_PATHS_OUTPUT_DIR=rapport2
//	SECREPORT_LOGGING_LEVEL=debug
//	SECREPORT_POLICY_HEADER_MATCH=first
//
// # Path Management
//
// Artifacts are correlated to their source file by stem:
//
//	paths, _ := cfg.GetPaths()
//	paths.GetIntermediatePath("xls_folder/login.xlsx") // reports/login_reporte.txt
//	paths.GetFinalPath("xls_folder/login.xlsx")        // rapport2/login_reporte_final.txt
package config
