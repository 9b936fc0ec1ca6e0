// Package config provides configuration management for the kernel.
//
// Configuration can be loaded from multiple sources (in order of precedence):
// 1. Environment variables (highest priority)
// 2. Configuration file (JSON)
// 3. Default values (lowest priority)
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ForgetPolicy names the Bag eviction policy used by memory.conceptBag,
// memory.taskBag and per-concept belief bags.
type ForgetPolicy string

const (
	ForgetPriority ForgetPolicy = "priority"
	ForgetLRU      ForgetPolicy = "lru"
	ForgetFIFO     ForgetPolicy = "fifo"
	ForgetRandom   ForgetPolicy = "random"
)

// Config represents the complete kernel configuration, covering spec.md
// §6's enumerated options.
type Config struct {
	Memory  MemoryConfig  `json:"memory"`
	Cycle   CycleConfig   `json:"cycle"`
	Truth   TruthConfig   `json:"truth"`
	Stamp   StampConfig   `json:"stamp"`
	Unifier UnifierConfig `json:"unifier"`
}

// MemoryConfig mirrors the memory.* options.
type MemoryConfig struct {
	Capacity           int          `json:"capacity"`
	ConceptBagCapacity int          `json:"concept_bag_capacity"`
	TaskBagCapacity    int          `json:"task_bag_capacity"`
	BeliefBagCapacity  int          `json:"belief_bag_capacity"`
	ForgetPolicy       ForgetPolicy `json:"forget_policy"`
}

// CycleConfig mirrors the cycle.* options.
type CycleConfig struct {
	MaxDerivationDepth  int     `json:"max_derivation_depth"`
	MaxTasksPerCycle    int     `json:"max_tasks_per_cycle"`
	CPUThrottleInterval int     `json:"cpu_throttle_interval"`
	DecayEveryNCycles   int     `json:"decay_every_n_cycles"`
	DecayRate           float64 `json:"decay_rate"`
}

// TruthConfig mirrors truth.k, the NAL evidential-horizon constant.
type TruthConfig struct {
	K float64 `json:"k"`
}

// StampConfig mirrors stamp.maxLength.
type StampConfig struct {
	MaxLength int `json:"max_length"`
}

// UnifierConfig mirrors unifier.maxCommutativePermutations.
type UnifierConfig struct {
	MaxCommutativePermutations int `json:"max_commutative_permutations"`
}

// Default returns the configuration with every spec.md §6 default applied.
func Default() *Config {
	return &Config{
		Memory: MemoryConfig{
			Capacity:           10000,
			ConceptBagCapacity: 1000,
			TaskBagCapacity:    1000,
			BeliefBagCapacity:  1000,
			ForgetPolicy:       ForgetPriority,
		},
		Cycle: CycleConfig{
			MaxDerivationDepth:  10,
			MaxTasksPerCycle:    10,
			CPUThrottleInterval: 0,
			DecayEveryNCycles:   10,
			DecayRate:           0.05,
		},
		Truth:   TruthConfig{K: 1.0},
		Stamp:   StampConfig{MaxLength: 8},
		Unifier: UnifierConfig{MaxCommutativePermutations: 24},
	}
}

// Load loads configuration from environment variables and applies defaults.
func Load() (*Config, error) {
	cfg := Default()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file, then applies
// environment variable overrides.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration from environment variables.
// Environment variables follow the pattern: NARS_<SECTION>_<KEY>.
// Example: NARS_MEMORY_CAPACITY, NARS_TRUTH_K.
func (c *Config) loadFromEnv() error {
	if v := os.Getenv("NARS_MEMORY_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NARS_MEMORY_CAPACITY: %w", err)
		}
		c.Memory.Capacity = n
	}
	if v := os.Getenv("NARS_MEMORY_CONCEPT_BAG_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NARS_MEMORY_CONCEPT_BAG_CAPACITY: %w", err)
		}
		c.Memory.ConceptBagCapacity = n
	}
	if v := os.Getenv("NARS_MEMORY_TASK_BAG_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NARS_MEMORY_TASK_BAG_CAPACITY: %w", err)
		}
		c.Memory.TaskBagCapacity = n
	}
	if v := os.Getenv("NARS_MEMORY_BELIEF_BAG_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NARS_MEMORY_BELIEF_BAG_CAPACITY: %w", err)
		}
		c.Memory.BeliefBagCapacity = n
	}
	if v := os.Getenv("NARS_MEMORY_FORGET_POLICY"); v != "" {
		c.Memory.ForgetPolicy = ForgetPolicy(strings.ToLower(v))
	}
	if v := os.Getenv("NARS_CYCLE_MAX_DERIVATION_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NARS_CYCLE_MAX_DERIVATION_DEPTH: %w", err)
		}
		c.Cycle.MaxDerivationDepth = n
	}
	if v := os.Getenv("NARS_CYCLE_MAX_TASKS_PER_CYCLE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NARS_CYCLE_MAX_TASKS_PER_CYCLE: %w", err)
		}
		c.Cycle.MaxTasksPerCycle = n
	}
	if v := os.Getenv("NARS_CYCLE_CPU_THROTTLE_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NARS_CYCLE_CPU_THROTTLE_INTERVAL: %w", err)
		}
		c.Cycle.CPUThrottleInterval = n
	}
	if v := os.Getenv("NARS_CYCLE_DECAY_EVERY_N_CYCLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NARS_CYCLE_DECAY_EVERY_N_CYCLES: %w", err)
		}
		c.Cycle.DecayEveryNCycles = n
	}
	if v := os.Getenv("NARS_TRUTH_K"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("NARS_TRUTH_K: %w", err)
		}
		c.Truth.K = f
	}
	if v := os.Getenv("NARS_STAMP_MAX_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NARS_STAMP_MAX_LENGTH: %w", err)
		}
		c.Stamp.MaxLength = n
	}
	if v := os.Getenv("NARS_UNIFIER_MAX_COMMUTATIVE_PERMUTATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NARS_UNIFIER_MAX_COMMUTATIVE_PERMUTATIONS: %w", err)
		}
		c.Unifier.MaxCommutativePermutations = n
	}
	return nil
}

// Validate validates the configuration against the bounds spec.md §3
// requires of every kernel invariant (positive capacities, positive
// evidential-horizon constant, and so on).
func (c *Config) Validate() error {
	if c.Memory.Capacity <= 0 {
		return fmt.Errorf("memory.capacity must be positive, got %d", c.Memory.Capacity)
	}
	if c.Memory.ConceptBagCapacity <= 0 {
		return fmt.Errorf("memory.concept_bag_capacity must be positive, got %d", c.Memory.ConceptBagCapacity)
	}
	if c.Memory.TaskBagCapacity <= 0 {
		return fmt.Errorf("memory.task_bag_capacity must be positive, got %d", c.Memory.TaskBagCapacity)
	}
	if c.Memory.BeliefBagCapacity <= 0 {
		return fmt.Errorf("memory.belief_bag_capacity must be positive, got %d", c.Memory.BeliefBagCapacity)
	}
	switch c.Memory.ForgetPolicy {
	case ForgetPriority, ForgetLRU, ForgetFIFO, ForgetRandom:
	default:
		return fmt.Errorf("memory.forget_policy: unrecognized value %q", c.Memory.ForgetPolicy)
	}
	if c.Cycle.MaxDerivationDepth <= 0 {
		return fmt.Errorf("cycle.max_derivation_depth must be positive, got %d", c.Cycle.MaxDerivationDepth)
	}
	if c.Cycle.MaxTasksPerCycle <= 0 {
		return fmt.Errorf("cycle.max_tasks_per_cycle must be positive, got %d", c.Cycle.MaxTasksPerCycle)
	}
	if c.Cycle.CPUThrottleInterval < 0 {
		return fmt.Errorf("cycle.cpu_throttle_interval cannot be negative")
	}
	if c.Truth.K <= 0 {
		return fmt.Errorf("truth.k must be positive, got %f", c.Truth.K)
	}
	if c.Stamp.MaxLength <= 0 {
		return fmt.Errorf("stamp.max_length must be positive, got %d", c.Stamp.MaxLength)
	}
	if c.Unifier.MaxCommutativePermutations <= 0 {
		return fmt.Errorf("unifier.max_commutative_permutations must be positive, got %d", c.Unifier.MaxCommutativePermutations)
	}
	return nil
}

// ToJSON serializes the configuration to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// SaveToFile saves the configuration to a JSON file.
func (c *Config) SaveToFile(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
