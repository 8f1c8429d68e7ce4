package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// functionKeys lists every function Destroy cleans up, deployed or not.
var functionKeys = []string{"extractor", "http", "pagetext"}

type Deployer struct {
	cfg          *DeploymentConfig
	lambdaClient *lambda.Client
	iamClient    *iam.Client
	apiGwClient  *apigatewayv2.Client
	stsClient    *sts.Client

	roleName string
	apiName  string

	accountID     string
	roleARN       string
	lambdaARNs    map[string]string
	apiGatewayID  string
	apiGatewayURL string
}

func NewDeployer(awsCfg aws.Config, cfg *DeploymentConfig) *Deployer {
	return &Deployer{
		cfg:          cfg,
		lambdaClient: lambda.NewFromConfig(awsCfg),
		iamClient:    iam.NewFromConfig(awsCfg),
		apiGwClient:  apigatewayv2.NewFromConfig(awsCfg),
		stsClient:    sts.NewFromConfig(awsCfg),

		roleName:   fmt.Sprintf("%s-lambda-role-%s", cfg.ProjectName, cfg.Environment),
		apiName:    fmt.Sprintf("%s-api-%s", cfg.ProjectName, cfg.Environment),
		lambdaARNs: make(map[string]string),
	}
}

// functionName is the Lambda name for a function key, e.g. job-extractor-pagetext-dev.
func (d *Deployer) functionName(key string) string {
	return fmt.Sprintf("%s-%s-%s", d.cfg.ProjectName, key, d.cfg.Environment)
}

// Deploy creates the role, every configured function and the HTTP API.
func (d *Deployer) Deploy(ctx context.Context) error {
	log.Println("🔑 Getting account information...")
	if err := d.getAccountInfo(ctx); err != nil {
		return fmt.Errorf("failed to get account info: %w", err)
	}

	log.Println("🛡️  Creating IAM role...")
	if err := d.createIAMRole(ctx); err != nil {
		return fmt.Errorf("failed to create IAM role: %w", err)
	}

	for _, fn := range d.cfg.Functions {
		log.Printf("🚀 Creating Lambda function %s...", fn.Key)
		if err := d.createLambdaFunction(ctx, fn); err != nil {
			return fmt.Errorf("failed to create Lambda function %s: %w", fn.Key, err)
		}
	}

	routed := d.routedFunctions()
	if len(routed) == 0 {
		d.printDeploymentInfo()
		return nil
	}

	log.Println("🌐 Creating API Gateway...")
	if err := d.createAPIGateway(ctx); err != nil {
		return fmt.Errorf("failed to create API Gateway: %w", err)
	}

	for _, fn := range routed {
		log.Printf("🔗 Routing %s to %s...", fn.Route, fn.Key)
		if err := d.setupAPIIntegration(ctx, fn); err != nil {
			return fmt.Errorf("failed to setup API integration for %s: %w", fn.Key, err)
		}
	}

	log.Println("📦 Publishing stage...")
	if err := d.createStage(ctx); err != nil {
		return fmt.Errorf("failed to publish stage: %w", err)
	}

	d.printDeploymentInfo()
	return nil
}

// routedFunctions returns the functions served through the HTTP API. Only functions
// in HTTP mode get a route, since the HTTP API forwards nothing but the body.
func (d *Deployer) routedFunctions() []FunctionConfig {
	var routed []FunctionConfig
	for _, fn := range d.cfg.Functions {
		if fn.Route != "" && fn.HTTPMode {
			routed = append(routed, fn)
		}
	}
	return routed
}

// UpdateLambdas replaces the code of every configured function.
func (d *Deployer) UpdateLambdas(ctx context.Context) error {
	for _, fn := range d.cfg.Functions {
		log.Printf("📝 Reading %s zip file: %s", fn.Key, fn.ZipPath)
		if err := d.updateLambdaCode(ctx, fn); err != nil {
			return fmt.Errorf("failed to update %s: %w", fn.Key, err)
		}
	}
	return nil
}

// Destroy removes all created resources. Failures are reported and the rest continues.
func (d *Deployer) Destroy(ctx context.Context) error {
	log.Println("🗑️  Deleting API Gateway...")
	if err := d.deleteAPIGateway(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to delete API Gateway: %v", err)
	}

	for _, key := range functionKeys {
		log.Printf("🗑️  Deleting Lambda function %s...", key)
		if err := d.deleteLambdaFunction(ctx, key); err != nil {
			log.Printf("⚠️  Warning: failed to delete Lambda function %s: %v", key, err)
		}
	}

	log.Println("🗑️  Deleting IAM role...")
	if err := d.deleteIAMRole(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to delete IAM role: %v", err)
	}

	return nil
}

func (d *Deployer) printDeploymentInfo() {
	log.Println("\n🎉 Deployment Summary:")
	for _, fn := range d.cfg.Functions {
		log.Printf("   Lambda %s: %s", fn.Key, d.lambdaARNs[fn.Key])
	}
	log.Printf("   IAM Role: %s", d.roleName)
	log.Printf("   API Gateway: %s", d.apiName)
	if d.apiGatewayURL != "" {
		log.Printf("   API Endpoint: %s", d.apiGatewayURL)
	}
	log.Println("\n📖 Usage:")
	log.Println("   go run . -invoke=event.json")
	log.Println("   where event.json holds {\"body\": \"{\\\"result\\\": \\\"<posting text>\\\"}\"}")
	if d.apiGatewayURL != "" {
		log.Printf("   curl -X POST \"%s/extract\" -d '{\"result\": \"<posting text>\"}'", d.apiGatewayURL)
	}
	if _, ok := d.lambdaARNs["pagetext"]; ok {
		log.Println("   go run . -invoke=page.json -function=pagetext")
		log.Println("   where page.json holds {\"url\": \"https://...\"}")
	}
}
