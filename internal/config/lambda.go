package config

import (
	"os"
	"sync"
)

// LambdaConfig holds platform-specific settings discovered from the
// execution environment.
type LambdaConfig struct {
	IsLambda     bool
	FunctionName string
	Region       string
	Stage        string
}

// Global platform configuration
var (
	lambdaConfig *LambdaConfig
	lambdaOnce   sync.Once
)

// GetLambdaConfig returns the platform configuration, detected once.
func GetLambdaConfig() *LambdaConfig {
	lambdaOnce.Do(func() {
		lambdaConfig = &LambdaConfig{
			IsLambda:     isRunningInLambda(),
			FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
			Region:       os.Getenv("AWS_REGION"),
			Stage:        GetEnv("STAGE", "dev"),
		}
	})
	return lambdaConfig
}

// isRunningInLambda detects if the process is running inside AWS Lambda
func isRunningInLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// IsLambdaMode returns true when running under the FaaS platform rather
// than the local emulator.
func IsLambdaMode() bool {
	return GetLambdaConfig().IsLambda
}

// AdaptConfigForLambda tightens configuration for the platform environment:
// the audit store is local-emulator tooling and is forced off, and the
// worker base path falls back to the platform task root.
func AdaptConfigForLambda(config *Config) *Config {
	if !IsLambdaMode() {
		return config
	}

	config.Store.Enabled = false
	if config.Worker.BasePath == "" {
		config.Worker.BasePath = GetEnv("LAMBDA_TASK_ROOT", "/var/task")
	}

	return config
}
