package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Memory.Capacity != 10000 {
		t.Errorf("Expected memory.capacity 10000, got %d", cfg.Memory.Capacity)
	}
	if cfg.Memory.ForgetPolicy != ForgetPriority {
		t.Errorf("Expected default forget policy %q, got %q", ForgetPriority, cfg.Memory.ForgetPolicy)
	}
	if cfg.Cycle.MaxDerivationDepth != 10 {
		t.Errorf("Expected cycle.max_derivation_depth 10, got %d", cfg.Cycle.MaxDerivationDepth)
	}
	if cfg.Truth.K != 1.0 {
		t.Errorf("Expected truth.k 1.0, got %f", cfg.Truth.K)
	}
	if cfg.Stamp.MaxLength != 8 {
		t.Errorf("Expected stamp.max_length 8, got %d", cfg.Stamp.MaxLength)
	}
	if cfg.Unifier.MaxCommutativePermutations != 24 {
		t.Errorf("Expected unifier.max_commutative_permutations 24, got %d", cfg.Unifier.MaxCommutativePermutations)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if cfg.Memory.Capacity != 10000 {
		t.Errorf("Expected default memory capacity, got %d", cfg.Memory.Capacity)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)

	_ = os.Setenv("NARS_MEMORY_CAPACITY", "5000")
	_ = os.Setenv("NARS_MEMORY_FORGET_POLICY", "lru")
	_ = os.Setenv("NARS_CYCLE_MAX_DERIVATION_DEPTH", "20")
	_ = os.Setenv("NARS_TRUTH_K", "2.5")
	defer clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Memory.Capacity != 5000 {
		t.Errorf("Expected memory.capacity 5000, got %d", cfg.Memory.Capacity)
	}
	if cfg.Memory.ForgetPolicy != ForgetLRU {
		t.Errorf("Expected forget policy %q, got %q", ForgetLRU, cfg.Memory.ForgetPolicy)
	}
	if cfg.Cycle.MaxDerivationDepth != 20 {
		t.Errorf("Expected cycle.max_derivation_depth 20, got %d", cfg.Cycle.MaxDerivationDepth)
	}
	if cfg.Truth.K != 2.5 {
		t.Errorf("Expected truth.k 2.5, got %f", cfg.Truth.K)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{
		"memory": {
			"capacity": 2000,
			"concept_bag_capacity": 200,
			"task_bag_capacity": 200,
			"belief_bag_capacity": 200,
			"forget_policy": "fifo"
		},
		"cycle": {
			"max_derivation_depth": 5,
			"max_tasks_per_cycle": 5,
			"cpu_throttle_interval": 0,
			"decay_every_n_cycles": 5,
			"decay_rate": 0.1
		},
		"truth": {"k": 0.5},
		"stamp": {"max_length": 4},
		"unifier": {"max_commutative_permutations": 6}
	}`

	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	clearEnv(t)

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	if cfg.Memory.Capacity != 2000 {
		t.Errorf("Expected memory.capacity 2000, got %d", cfg.Memory.Capacity)
	}
	if cfg.Memory.ForgetPolicy != ForgetFIFO {
		t.Errorf("Expected forget policy %q, got %q", ForgetFIFO, cfg.Memory.ForgetPolicy)
	}
	if cfg.Cycle.MaxDerivationDepth != 5 {
		t.Errorf("Expected cycle.max_derivation_depth 5, got %d", cfg.Cycle.MaxDerivationDepth)
	}
	if cfg.Stamp.MaxLength != 4 {
		t.Errorf("Expected stamp.max_length 4, got %d", cfg.Stamp.MaxLength)
	}
	if cfg.Unifier.MaxCommutativePermutations != 6 {
		t.Errorf("Expected unifier.max_commutative_permutations 6, got %d", cfg.Unifier.MaxCommutativePermutations)
	}
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{
		"memory": {"capacity": 2000, "forget_policy": "fifo"}
	}`

	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	clearEnv(t)
	_ = os.Setenv("NARS_MEMORY_CAPACITY", "9999")
	defer clearEnv(t)

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	if cfg.Memory.Capacity != 9999 {
		t.Errorf("Expected memory.capacity 9999 (env override), got %d", cfg.Memory.Capacity)
	}
	// File values not overridden by env should be preserved.
	if cfg.Memory.ForgetPolicy != ForgetFIFO {
		t.Errorf("Expected forget policy %q (from file), got %q", ForgetFIFO, cfg.Memory.ForgetPolicy)
	}
}

func TestValidate(t *testing.T) {
	valid := Default()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid default config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "negative memory capacity",
			mutate:  func(c *Config) { c.Memory.Capacity = -1 },
			wantErr: true,
			errMsg:  "memory.capacity must be positive",
		},
		{
			name:    "unrecognized forget policy",
			mutate:  func(c *Config) { c.Memory.ForgetPolicy = "unknown" },
			wantErr: true,
			errMsg:  "memory.forget_policy",
		},
		{
			name:    "non-positive max derivation depth",
			mutate:  func(c *Config) { c.Cycle.MaxDerivationDepth = 0 },
			wantErr: true,
			errMsg:  "cycle.max_derivation_depth must be positive",
		},
		{
			name:    "negative cpu throttle interval",
			mutate:  func(c *Config) { c.Cycle.CPUThrottleInterval = -1 },
			wantErr: true,
			errMsg:  "cycle.cpu_throttle_interval cannot be negative",
		},
		{
			name:    "non-positive truth k",
			mutate:  func(c *Config) { c.Truth.K = 0 },
			wantErr: true,
			errMsg:  "truth.k must be positive",
		},
		{
			name:    "non-positive stamp max length",
			mutate:  func(c *Config) { c.Stamp.MaxLength = 0 },
			wantErr: true,
			errMsg:  "stamp.max_length must be positive",
		},
		{
			name:    "non-positive max commutative permutations",
			mutate:  func(c *Config) { c.Unifier.MaxCommutativePermutations = 0 },
			wantErr: true,
			errMsg:  "unifier.max_commutative_permutations must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, should contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestToJSON(t *testing.T) {
	cfg := Default()
	data, err := cfg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("ToJSON() returned empty data")
	}
	jsonStr := string(data)
	if !contains(jsonStr, "memory") {
		t.Error("JSON should contain 'memory' field")
	}
	if !contains(jsonStr, "unifier") {
		t.Error("JSON should contain 'unifier' field")
	}
}

func TestSaveToFile(t *testing.T) {
	cfg := Default()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved-config.json")

	err := cfg.SaveToFile(configPath)
	if err != nil {
		t.Fatalf("SaveToFile() failed: %v", err)
	}

	loadedCfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() after save failed: %v", err)
	}

	if loadedCfg.Memory.Capacity != cfg.Memory.Capacity {
		t.Errorf("Loaded config doesn't match saved config: %d != %d", loadedCfg.Memory.Capacity, cfg.Memory.Capacity)
	}
}

// Helper functions

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"NARS_MEMORY_CAPACITY",
		"NARS_MEMORY_CONCEPT_BAG_CAPACITY",
		"NARS_MEMORY_TASK_BAG_CAPACITY",
		"NARS_MEMORY_BELIEF_BAG_CAPACITY",
		"NARS_MEMORY_FORGET_POLICY",
		"NARS_CYCLE_MAX_DERIVATION_DEPTH",
		"NARS_CYCLE_MAX_TASKS_PER_CYCLE",
		"NARS_CYCLE_CPU_THROTTLE_INTERVAL",
		"NARS_CYCLE_DECAY_EVERY_N_CYCLES",
		"NARS_TRUTH_K",
		"NARS_STAMP_MAX_LENGTH",
		"NARS_UNIFIER_MAX_COMMUTATIVE_PERMUTATIONS",
	}

	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func contains(s, substr string) bool {
	if len(s) == 0 || len(substr) == 0 {
		return false
	}
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
