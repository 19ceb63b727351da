// Package config provides map-backed configuration for the formula engine
// with typed accessors and YAML/JSON file loading.
//
// Engine settings live under well-known keys:
//
//	date_format: "%Y-%m-%d"
//	constants:
//	  tax_rate: 0.21
//	  region: "eu"
//
// Load a file and apply it to an engine:
//
//	cfg, err := config.FromFile("formula.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	eng := formula.New(formula.FromConfig(cfg))
package config
