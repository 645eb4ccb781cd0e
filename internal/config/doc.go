// Package config loads the CampusPulse configuration.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//  1. Default() values
//  2. A YAML file: $PULSE_CONFIG_FILE, else the first of campuspulse.yaml,
//     configs/campuspulse.yaml, ../configs/campuspulse.yaml
//  3. Environment variables
//
// Keys missing from the file or environment keep the value of the layer below.
//
// # Environment Variables
//
// Variables are named PULSE_<SECTION>_<FIELD>:
//
//	PULSE_SERVER_PORT=9000
//	PULSE_DATASET_SOURCE=https://example.org/survey.csv
//	PULSE_DATASET_FETCH_TIMEOUT=10s
//	PULSE_LOGGING_LEVEL=debug
//	PULSE_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,http://localhost:8080
//
// # Example File
//
//	server:
//	  port: 8080
//	dataset:
//	  source: data/campus_survey.xlsx
//	  load_on_startup: true
//	logging:
//	  output: console
//
// Load validates the result; invalid ports, non-positive timeouts and unknown
// trace exporters are rejected.
package config
