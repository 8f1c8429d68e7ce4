package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
)

const (
	ProjectName = "job-extractor"
	Environment = "dev"
	Region      = "us-east-1"
)

type DeploymentConfig struct {
	ProjectName  string
	Environment  string
	Region       string
	OpenAIAPIKey string
	OpenAIModel  string
	Functions    []FunctionConfig
}

// FunctionConfig describes one Lambda built from this repository.
type FunctionConfig struct {
	Key         string // extractor or pagetext
	Description string
	ZipPath     string
	MemorySize  int32
	Timeout     int32
	Route       string // HTTP API route key, empty for direct invoke only
	HTTPMode    bool   // serve HTTP API events instead of the direct-invoke envelope
}

func main() {
	log.Println("🚀 Starting job extractor deployment...")

	var (
		deploy      = flag.Bool("deploy", false, "Deploy the infrastructure")
		destroy     = flag.Bool("destroy", false, "Destroy the infrastructure")
		update      = flag.Bool("update", false, "Update Lambda function code only")
		invoke      = flag.String("invoke", "", "Invoke a deployed function with the event in this JSON file")
		function    = flag.String("function", "extractor", "Function for -invoke: extractor or pagetext")
		openaiKey   = flag.String("openai-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		model       = flag.String("model", "", "Completion model for the extractor (default gpt-4o-mini)")
		zipPath     = flag.String("zip", "../extractor.zip", "Path to the extractor deployment zip")
		pageZipPath = flag.String("pagetext-zip", "", "Path to the page text deployment zip (skipped when empty)")
		httpRoute   = flag.Bool("http", false, "Also deploy the extractor in HTTP mode behind POST /extract")
	)
	flag.Parse()

	if !*deploy && !*destroy && !*update && *invoke == "" {
		fmt.Println("Usage:")
		fmt.Println("  deploy -deploy -openai-key=sk-... [-pagetext-zip=../pagetext.zip] [-http]")
		fmt.Println("  deploy -update")
		fmt.Println("  deploy -invoke=event.json [-function=pagetext]")
		fmt.Println("  deploy -destroy")
		os.Exit(1)
	}

	apiKey := *openaiKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_KEY")
	}
	if apiKey == "" && *deploy {
		log.Fatal("❌ OpenAI API key is required. Use -openai-key flag or set OPENAI_API_KEY environment variable")
	}

	cfg := &DeploymentConfig{
		ProjectName:  ProjectName,
		Environment:  Environment,
		Region:       Region,
		OpenAIAPIKey: apiKey,
		OpenAIModel:  *model,
		Functions: []FunctionConfig{{
			Key:         "extractor",
			Description: "Extracts structured job info from posting text",
			ZipPath:     *zipPath,
			MemorySize:  256,
			Timeout:     60,
		}},
	}
	if *httpRoute {
		cfg.Functions = append(cfg.Functions, FunctionConfig{
			Key:         "http",
			Description: "Job info extraction over the HTTP API",
			ZipPath:     *zipPath,
			MemorySize:  256,
			Timeout:     30,
			Route:       "POST /extract",
			HTTPMode:    true,
		})
	}
	if *pageZipPath != "" {
		cfg.Functions = append(cfg.Functions, FunctionConfig{
			Key:         "pagetext",
			Description: "Renders a page and returns its visible text",
			ZipPath:     *pageZipPath,
			MemorySize:  2048,
			Timeout:     120,
		})
	}

	ctx := context.Background()
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		log.Fatalf("❌ Failed to load AWS config: %v", err)
	}

	deployer := NewDeployer(awsCfg, cfg)

	switch {
	case *deploy:
		log.Println("📦 Deploying full infrastructure...")
		if err := deployer.Deploy(ctx); err != nil {
			log.Fatalf("❌ Deployment failed: %v", err)
		}
		log.Println("✅ Deployment completed successfully!")

	case *update:
		log.Println("🔄 Updating Lambda function code...")
		if err := deployer.UpdateLambdas(ctx); err != nil {
			log.Fatalf("❌ Update failed: %v", err)
		}
		log.Println("✅ Lambda functions updated successfully!")

	case *invoke != "":
		log.Printf("📨 Invoking %s with %s...", *function, *invoke)
		payload, err := deployer.Invoke(ctx, *function, *invoke)
		if err != nil {
			log.Fatalf("❌ Invoke failed: %v", err)
		}
		fmt.Println(string(payload))

	case *destroy:
		log.Println("💥 Destroying infrastructure...")
		if err := deployer.Destroy(ctx); err != nil {
			log.Fatalf("❌ Destroy failed: %v", err)
		}
		log.Println("✅ Infrastructure destroyed successfully!")
	}
}
