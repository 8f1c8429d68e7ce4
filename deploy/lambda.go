package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

func (d *Deployer) getAccountInfo(ctx context.Context) error {
	result, err := d.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return err
	}

	d.accountID = aws.ToString(result.Account)
	fmt.Printf("   Account ID: %s\n", d.accountID)
	fmt.Printf("   Region: %s\n", d.cfg.Region)
	return nil
}

// environment returns the Lambda environment for a function.
func (d *Deployer) environment(fn FunctionConfig) map[string]string {
	env := map[string]string{"LOG_FORMAT": "json"}
	if fn.Key == "pagetext" {
		return env
	}
	env["OPENAI_API_KEY"] = d.cfg.OpenAIAPIKey
	if d.cfg.OpenAIModel != "" {
		env["OPENAI_MODEL"] = d.cfg.OpenAIModel
	}
	if fn.HTTPMode {
		env["JOBEXTRACT_HTTP"] = "true"
	}
	return env
}

func (d *Deployer) createLambdaFunction(ctx context.Context, fn FunctionConfig) error {
	name := d.functionName(fn.Key)
	if _, err := d.lambdaClient.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(name),
	}); err == nil {
		return fmt.Errorf("Lambda function %s already exists", name)
	}

	zipData, err := os.ReadFile(fn.ZipPath)
	if err != nil {
		return fmt.Errorf("failed to read zip file: %w", err)
	}

	result, err := d.lambdaClient.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: aws.String(name),
		Runtime:      types.RuntimeProvidedal2,
		Role:         aws.String(d.roleARN),
		Handler:      aws.String("bootstrap"),
		Code:         &types.FunctionCode{ZipFile: zipData},
		Description:  aws.String(fn.Description),
		MemorySize:   aws.Int32(fn.MemorySize),
		Timeout:      aws.Int32(fn.Timeout),
		Environment:  &types.Environment{Variables: d.environment(fn)},
		Tags: map[string]string{
			"Project":     d.cfg.ProjectName,
			"Environment": d.cfg.Environment,
			"Function":    fn.Key,
			"ManagedBy":   "aws-sdk-go",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create Lambda function: %w", err)
	}

	d.lambdaARNs[fn.Key] = aws.ToString(result.FunctionArn)
	fmt.Printf("   Created Lambda function: %s\n", d.lambdaARNs[fn.Key])

	return d.waitForLambdaActive(ctx, name)
}

func (d *Deployer) updateLambdaCode(ctx context.Context, fn FunctionConfig) error {
	zipData, err := os.ReadFile(fn.ZipPath)
	if err != nil {
		return fmt.Errorf("failed to read zip file: %w", err)
	}

	_, err = d.lambdaClient.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(d.functionName(fn.Key)),
		ZipFile:      zipData,
	})
	if err != nil {
		return fmt.Errorf("failed to update Lambda function code: %w", err)
	}
	fmt.Printf("   Updated Lambda function: %s\n", d.functionName(fn.Key))
	return nil
}

func (d *Deployer) waitForLambdaActive(ctx context.Context, name string) error {
	fmt.Print("   Waiting for Lambda function to be active")

	waiter := lambda.NewFunctionActiveWaiter(d.lambdaClient)
	err := waiter.Wait(ctx, &lambda.GetFunctionConfigurationInput{
		FunctionName: aws.String(name),
	}, 5*time.Minute)
	if err != nil {
		return fmt.Errorf("Lambda function did not become active: %w", err)
	}

	fmt.Println(" ✅")
	return nil
}

// Invoke calls a deployed function synchronously with the JSON event in eventPath and
// returns the response payload.
func (d *Deployer) Invoke(ctx context.Context, key, eventPath string) ([]byte, error) {
	event, err := os.ReadFile(eventPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read event: %w", err)
	}
	if !json.Valid(event) {
		return nil, fmt.Errorf("event file %s is not valid JSON", eventPath)
	}

	out, err := d.lambdaClient.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(d.functionName(key)),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        event,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", d.functionName(key), err)
	}
	if out.FunctionError != nil {
		return out.Payload, fmt.Errorf("function error %s: %s", aws.ToString(out.FunctionError), out.Payload)
	}
	return out.Payload, nil
}

func (d *Deployer) deleteLambdaFunction(ctx context.Context, key string) error {
	_, err := d.lambdaClient.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
		FunctionName: aws.String(d.functionName(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete Lambda function: %w", err)
	}

	fmt.Printf("   Deleted Lambda function: %s\n", d.functionName(key))
	return nil
}

func (d *Deployer) addLambdaPermission(ctx context.Context, key, statementID, principal, sourceARN string) error {
	_, err := d.lambdaClient.AddPermission(ctx, &lambda.AddPermissionInput{
		FunctionName: aws.String(d.functionName(key)),
		StatementId:  aws.String(statementID),
		Action:       aws.String("lambda:InvokeFunction"),
		Principal:    aws.String(principal),
		SourceArn:    aws.String(sourceARN),
	})
	if err != nil {
		return fmt.Errorf("failed to add Lambda permission: %w", err)
	}

	fmt.Printf("   Added permission for %s to invoke %s\n", principal, key)
	return nil
}
