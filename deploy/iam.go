package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
)

const (
	lambdaAssumeRolePolicy = `{
	"Version": "2012-10-17",
	"Statement": [
		{
			"Effect": "Allow",
			"Principal": {
				"Service": "lambda.amazonaws.com"
			},
			"Action": "sts:AssumeRole"
		}
	]
}`

	// The functions only write logs; the completion service is reached over the internet.
	lambdaExecutionPolicy = `{
	"Version": "2012-10-17",
	"Statement": [
		{
			"Effect": "Allow",
			"Action": [
				"logs:CreateLogGroup",
				"logs:CreateLogStream",
				"logs:PutLogEvents"
			],
			"Resource": "arn:aws:logs:*:*:*"
		}
	]
}`

	awsManagedPolicyPrefix = "arn:aws:iam::aws:policy/"
)

func (d *Deployer) iamTags() []types.Tag {
	return []types.Tag{
		{Key: aws.String("Project"), Value: aws.String(d.cfg.ProjectName)},
		{Key: aws.String("Environment"), Value: aws.String(d.cfg.Environment)},
		{Key: aws.String("ManagedBy"), Value: aws.String("aws-sdk-go")},
	}
}

func (d *Deployer) createIAMRole(ctx context.Context) error {
	existing, err := d.iamClient.GetRole(ctx, &iam.GetRoleInput{
		RoleName: aws.String(d.roleName),
	})
	if err == nil {
		d.roleARN = aws.ToString(existing.Role.Arn)
		fmt.Printf("   Using existing IAM role: %s\n", d.roleARN)
		return nil
	}

	role, err := d.iamClient.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(d.roleName),
		AssumeRolePolicyDocument: aws.String(lambdaAssumeRolePolicy),
		Description:              aws.String("Lambda execution role for the job extractor"),
		Tags:                     d.iamTags(),
	})
	if err != nil {
		return fmt.Errorf("failed to create IAM role: %w", err)
	}
	d.roleARN = aws.ToString(role.Role.Arn)
	fmt.Printf("   Created IAM role: %s\n", d.roleARN)

	policy, err := d.iamClient.CreatePolicy(ctx, &iam.CreatePolicyInput{
		PolicyName:     aws.String(d.roleName + "-execution-policy"),
		PolicyDocument: aws.String(lambdaExecutionPolicy),
		Description:    aws.String("Lambda execution policy for the job extractor"),
		Tags:           d.iamTags(),
	})
	if err != nil {
		return fmt.Errorf("failed to create IAM policy: %w", err)
	}

	if _, err := d.iamClient.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(d.roleName),
		PolicyArn: policy.Policy.Arn,
	}); err != nil {
		return fmt.Errorf("failed to attach policy to role: %w", err)
	}
	fmt.Printf("   Attached execution policy: %s\n", aws.ToString(policy.Policy.Arn))

	// IAM is eventually consistent; CreateFunction rejects a role it cannot assume yet.
	fmt.Print("   Waiting for IAM role to be available")
	select {
	case <-time.After(10 * time.Second):
	case <-ctx.Done():
		return ctx.Err()
	}
	fmt.Println(" ✅")
	return nil
}

func (d *Deployer) deleteIAMRole(ctx context.Context) error {
	attached, err := d.iamClient.ListAttachedRolePolicies(ctx, &iam.ListAttachedRolePoliciesInput{
		RoleName: aws.String(d.roleName),
	})
	if err == nil {
		for _, policy := range attached.AttachedPolicies {
			arn := aws.ToString(policy.PolicyArn)
			if _, err := d.iamClient.DetachRolePolicy(ctx, &iam.DetachRolePolicyInput{
				RoleName:  aws.String(d.roleName),
				PolicyArn: policy.PolicyArn,
			}); err != nil {
				fmt.Printf("   Warning: failed to detach policy %s: %v\n", arn, err)
			}

			if isAWSManagedPolicy(arn) {
				continue
			}
			if _, err := d.iamClient.DeletePolicy(ctx, &iam.DeletePolicyInput{PolicyArn: policy.PolicyArn}); err != nil {
				fmt.Printf("   Warning: failed to delete policy %s: %v\n", arn, err)
			} else {
				fmt.Printf("   Deleted policy: %s\n", arn)
			}
		}
	}

	if _, err := d.iamClient.DeleteRole(ctx, &iam.DeleteRoleInput{
		RoleName: aws.String(d.roleName),
	}); err != nil {
		return fmt.Errorf("failed to delete IAM role: %w", err)
	}

	fmt.Printf("   Deleted IAM role: %s\n", d.roleName)
	return nil
}

func isAWSManagedPolicy(arn string) bool {
	return strings.HasPrefix(arn, awsManagedPolicyPrefix)
}
