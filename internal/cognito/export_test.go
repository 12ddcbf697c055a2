package cognito

import (
	"context"

	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

type InitiateAuthFunc func(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)

func (f InitiateAuthFunc) InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	return f(ctx, params, optFns...)
}

func NewAWSClientWithAPI(api InitiateAuthFunc, clientID, clientSecret string) *AWSClient {
	return &AWSClient{api: api, clientID: clientID, clientSecret: clientSecret}
}

var MapAWSError = mapAWSError
