// FILE: structargs/example/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"structargs"
)

// ServerConfig exercises every argument shape the library generates:
// scalars with short aliases and choices, dual boolean flags, greedy list
// flags, a map field with file loading and dotted overrides, and '@file'
// indirection for the message body.
type ServerConfig struct {
	Name        string         `toml:"name" cli:"short=n" help:"Service name"`
	Port        int            `toml:"port" cli:"short=p" help:"Listen port"`
	Environment string         `toml:"environment" cli:"choices=dev|staging|prod" help:"Deployment environment"`
	Verbose     bool           `toml:"verbose" cli:"short=v" help:"Verbose output"`
	Tags        []string       `toml:"tags" help:"Resource tags"`
	Message     string         `toml:"message" cli:"file" help:"Greeting body"`
	RetryPolicy map[string]any `toml:"retry_policy" help:"Retry policy"`
	Secret      string         `toml:"secret" cli:"exclude"`
}

func main() {
	cfg := ServerConfig{
		Name:        "demo",
		Port:        8080,
		Environment: "dev",
		Message:     "hello",
		Secret:      "hidden",
	}

	// Try, for example:
	//   example --config server.yaml -p 9090 --tags a b c --verbose
	//   example --retry-policy retry.json --rp max_attempts:5 --rp backoff.base_ms:250
	//   example --message @motd.txt
	if err := structargs.Parse(&cfg, os.Args[1:]); err != nil {
		log.Fatalf("config build failed: %v", err)
	}

	fmt.Printf("name:        %s\n", cfg.Name)
	fmt.Printf("port:        %d\n", cfg.Port)
	fmt.Printf("environment: %s\n", cfg.Environment)
	fmt.Printf("verbose:     %v\n", cfg.Verbose)
	fmt.Printf("tags:        %v\n", cfg.Tags)
	fmt.Printf("message:     %q\n", cfg.Message)
	fmt.Printf("retry:       %v\n", cfg.RetryPolicy)
}
