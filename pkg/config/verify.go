package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	// parse schema
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]interface{}
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	// every top-level config section must be declared by the schema,
	// a mismatch means schema.json is stale and needs regeneration
	props, err := schemaProperties(schema)
	if err != nil {
		return err
	}
	for key := range configMap {
		if _, ok := props[key]; !ok {
			return fmt.Errorf("config section %q is missing from the embedded schema", key)
		}
	}

	// basic validation - check required fields match
	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// schemaProperties extracts the top-level Config properties from the schema
func schemaProperties(schema map[string]interface{}) (map[string]interface{}, error) {
	defs, ok := schema["$defs"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("embedded schema has no $defs")
	}
	cfgDef, ok := defs["Config"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("embedded schema has no Config definition")
	}
	props, ok := cfgDef["properties"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("embedded schema Config defines no properties")
	}
	return props, nil
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return fmt.Errorf("server.timeout is required")
	}

	if cfg.Telegram.API == "" {
		return fmt.Errorf("telegram.api is required")
	}

	// check summary config if enabled
	if cfg.Summary.Enabled {
		if cfg.Summary.Timeout == 0 {
			return fmt.Errorf("summary.timeout is required when summary is enabled")
		}
		if cfg.Summary.MaxTokens < 1 {
			return fmt.Errorf("summary.max_tokens must be positive when summary is enabled")
		}
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
