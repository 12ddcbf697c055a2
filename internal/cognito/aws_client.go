// Package cognito obtains bearer tokens from an Amazon Cognito user pool
// for outbound API calls.
package cognito

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// Authenticator is the part of Cognito the token source needs.
type Authenticator interface {
	Login(ctx context.Context, input LoginInput) (AuthOutput, error)
	RefreshTokens(ctx context.Context, input RefreshInput) (AuthOutput, error)
}

type LoginInput struct {
	Username string
	Password string
}

type RefreshInput struct {
	Username     string
	RefreshToken string
}

// AuthOutput contains tokens returned after successful authentication.
// RefreshToken is empty on refresh.
type AuthOutput struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

// initiateAuthAPI is the subset of the SDK client used here.
type initiateAuthAPI interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
}

// AWSClient implements Authenticator using the AWS SDK v2.
type AWSClient struct {
	api          initiateAuthAPI
	clientID     string
	clientSecret string
}

// NewAWSClient creates a new AWSClient for the given region and app client.
func NewAWSClient(ctx context.Context, region, clientID, clientSecret string) (*AWSClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSClient{
		api:          cip.NewFromConfig(cfg),
		clientID:     clientID,
		clientSecret: clientSecret,
	}, nil
}

// ComputeSecretHash calculates the SECRET_HASH Cognito requires when the
// app client has a secret: Base64(HMAC_SHA256(clientSecret, username + clientID)).
func ComputeSecretHash(username, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (c *AWSClient) authParams(username string, params map[string]string) map[string]string {
	if c.clientSecret != "" {
		params["SECRET_HASH"] = ComputeSecretHash(username, c.clientID, c.clientSecret)
	}
	return params
}

func (c *AWSClient) Login(ctx context.Context, input LoginInput) (AuthOutput, error) {
	return c.initiate(ctx, types.AuthFlowTypeUserPasswordAuth, c.authParams(input.Username, map[string]string{
		"USERNAME": input.Username,
		"PASSWORD": input.Password,
	}))
}

func (c *AWSClient) RefreshTokens(ctx context.Context, input RefreshInput) (AuthOutput, error) {
	return c.initiate(ctx, types.AuthFlowTypeRefreshTokenAuth, c.authParams(input.Username, map[string]string{
		"REFRESH_TOKEN": input.RefreshToken,
	}))
}

func (c *AWSClient) initiate(ctx context.Context, flow types.AuthFlowType, params map[string]string) (AuthOutput, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId:       &c.clientID,
		AuthFlow:       flow,
		AuthParameters: params,
	})
	if err != nil {
		return AuthOutput{}, mapAWSError(err)
	}
	if out.AuthenticationResult == nil {
		return AuthOutput{}, fmt.Errorf("unexpected nil authentication result")
	}
	r := out.AuthenticationResult
	return AuthOutput{
		IDToken:      aws.ToString(r.IdToken),
		AccessToken:  aws.ToString(r.AccessToken),
		RefreshToken: aws.ToString(r.RefreshToken),
		ExpiresIn:    r.ExpiresIn,
		TokenType:    aws.ToString(r.TokenType),
	}, nil
}

var _ Authenticator = (*AWSClient)(nil)
