package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2/types"
)

const stageName = "v1"

func (d *Deployer) createAPIGateway(ctx context.Context) error {
	apiResult, err := d.apiGwClient.CreateApi(ctx, &apigatewayv2.CreateApiInput{
		Name:         aws.String(d.apiName),
		ProtocolType: types.ProtocolTypeHttp,
		Description:  aws.String("Job extractor HTTP API"),
		Tags: map[string]string{
			"Project":     d.cfg.ProjectName,
			"Environment": d.cfg.Environment,
			"ManagedBy":   "aws-sdk-go",
		},
		CorsConfiguration: &types.Cors{
			AllowCredentials: aws.Bool(false),
			AllowHeaders:     []string{"content-type", "x-amz-date", "authorization", "x-api-key"},
			AllowMethods:     []string{"POST", "OPTIONS"},
			AllowOrigins:     []string{"*"},
			MaxAge:           aws.Int32(86400),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create API Gateway: %w", err)
	}

	d.apiGatewayID = aws.ToString(apiResult.ApiId)
	d.apiGatewayURL = aws.ToString(apiResult.ApiEndpoint)
	fmt.Printf("   Created API Gateway: %s\n", d.apiGatewayID)
	return nil
}

// setupAPIIntegration routes fn.Route to the function. The HTTP API passes the request
// body and isBase64Encoded through to the event unchanged.
func (d *Deployer) setupAPIIntegration(ctx context.Context, fn FunctionConfig) error {
	integration, err := d.apiGwClient.CreateIntegration(ctx, &apigatewayv2.CreateIntegrationInput{
		ApiId:                aws.String(d.apiGatewayID),
		IntegrationType:      types.IntegrationTypeAwsProxy,
		IntegrationUri:       aws.String(d.lambdaARNs[fn.Key]),
		PayloadFormatVersion: aws.String("2.0"),
		TimeoutInMillis:      aws.Int32(29000),
	})
	if err != nil {
		return fmt.Errorf("failed to create API integration: %w", err)
	}
	integrationID := aws.ToString(integration.IntegrationId)
	fmt.Printf("   Created Lambda integration: %s\n", integrationID)

	route, err := d.apiGwClient.CreateRoute(ctx, &apigatewayv2.CreateRouteInput{
		ApiId:    aws.String(d.apiGatewayID),
		RouteKey: aws.String(fn.Route),
		Target:   aws.String("integrations/" + integrationID),
	})
	if err != nil {
		return fmt.Errorf("failed to create route %s: %w", fn.Route, err)
	}
	fmt.Printf("   Created route: %s -> %s\n", fn.Route, aws.ToString(route.RouteId))

	return d.addLambdaPermission(ctx, fn.Key,
		"allow-api-gateway",
		"apigateway.amazonaws.com",
		fmt.Sprintf("arn:aws:execute-api:%s:%s:%s/*/*", d.cfg.Region, d.accountID, d.apiGatewayID),
	)
}

func (d *Deployer) createStage(ctx context.Context) error {
	deployment, err := d.apiGwClient.CreateDeployment(ctx, &apigatewayv2.CreateDeploymentInput{
		ApiId:       aws.String(d.apiGatewayID),
		Description: aws.String("Initial deployment"),
	})
	if err != nil {
		return fmt.Errorf("failed to create deployment: %w", err)
	}
	fmt.Printf("   Created deployment: %s\n", aws.ToString(deployment.DeploymentId))

	stage, err := d.apiGwClient.CreateStage(ctx, &apigatewayv2.CreateStageInput{
		ApiId:        aws.String(d.apiGatewayID),
		StageName:    aws.String(stageName),
		DeploymentId: deployment.DeploymentId,
		Description:  aws.String("Envelope v1"),
		Tags: map[string]string{
			"Project":     d.cfg.ProjectName,
			"Environment": d.cfg.Environment,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create stage: %w", err)
	}
	fmt.Printf("   Created stage: %s\n", aws.ToString(stage.StageName))

	d.apiGatewayURL = fmt.Sprintf("%s/%s", d.apiGatewayURL, stageName)
	return nil
}

func (d *Deployer) deleteAPIGateway(ctx context.Context) error {
	apis, err := d.apiGwClient.GetApis(ctx, &apigatewayv2.GetApisInput{})
	if err != nil {
		return fmt.Errorf("failed to list APIs: %w", err)
	}

	for _, api := range apis.Items {
		if aws.ToString(api.Name) != d.apiName {
			continue
		}
		if _, err := d.apiGwClient.DeleteApi(ctx, &apigatewayv2.DeleteApiInput{ApiId: api.ApiId}); err != nil {
			return fmt.Errorf("failed to delete API Gateway: %w", err)
		}
		fmt.Printf("   Deleted API Gateway: %s\n", aws.ToString(api.ApiId))
		return nil
	}

	fmt.Printf("   API Gateway %s not found (may already be deleted)\n", d.apiName)
	return nil
}
