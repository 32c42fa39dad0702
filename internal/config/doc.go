// Package config provides configuration loading for the tvaudience ETL.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later sources
// overriding earlier ones:
//
//  1. Default values (Default)
//  2. A YAML file (explicit path, or tvaudience.yaml / configs/tvaudience.yaml)
//  3. Environment variables prefixed with TVA_
//
// # Environment Variables
//
// Nested sections map onto underscore-separated names:
//
//	TVA_DATASET_DIR=../datasets/kino_polska
//	TVA_DAILY_LOCALIZE=true
//	TVA_DAILY_SLOT_STEP=1h
//	TVA_FEATURES_HOUR=true
//	TVA_PIPELINE_TABLES=monthly,daily
//	TVA_LOGGING_LEVEL=debug
//
// # Path Management
//
// Config.Paths resolves the dataset files and output locations:
//
//	paths, err := cfg.Paths()
//	if err != nil {
//	    return err
//	}
//	if err := paths.EnsureDirectories(); err != nil {
//	    return err
//	}
//	daily := paths.InputFiles()["daily"]
package config
