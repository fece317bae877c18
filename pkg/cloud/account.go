package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	apperrors "awsdash/pkg/errors"
	"awsdash/pkg/logger"
	"awsdash/pkg/retry"
)

const (
	opGetUser           = "GetUser"
	actionCheckAccount  = "CHECK_AWS_ACCOUNT"
	arnAccountIDSegment = 4
)

// ErrMalformedARN is returned when a user ARN has no account segment
var ErrMalformedARN = errors.New("malformed ARN")

// AccountCheck is the outcome of comparing the caller's account with a
// required one.
type AccountCheck struct {
	RequiredID string
	ActualID   string
	Match      bool
}

// AccountChecker resolves the account the current credentials belong to
type AccountChecker struct {
	client  IAMAPI
	invoker *retry.Invoker
	logger  logger.Logger
}

// NewAccountChecker creates an account checker over client
func NewAccountChecker(client IAMAPI, invoker *retry.Invoker, log logger.Logger) *AccountChecker {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AccountChecker{client: client, invoker: invoker, logger: log}
}

// AccountID returns the account ID of the calling IAM user
func (c *AccountChecker) AccountID(ctx context.Context) (string, error) {
	out, err := retry.Invoke(ctx, c.invoker, opGetUser,
		func(ctx context.Context) (*iam.GetUserOutput, error) {
			return c.client.GetUser(ctx, &iam.GetUserInput{})
		})
	if err != nil {
		return "", err
	}
	if out.User == nil {
		return "", fmt.Errorf("%w: GetUser returned no user", ErrMalformedARN)
	}
	return AccountIDFromARN(aws.ToString(out.User.Arn))
}

// AccountIDFromARN extracts the account segment of an ARN
// (arn:partition:service:region:account:resource).
func AccountIDFromARN(arn string) (string, error) {
	parts := strings.Split(arn, ":")
	if len(parts) <= arnAccountIDSegment || parts[0] != "arn" || parts[arnAccountIDSegment] == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedARN, arn)
	}
	return parts[arnAccountIDSegment], nil
}

// Check compares the caller's account with required. A mismatch is not an
// error; the returned error is set only when the account could not be
// resolved.
func (c *AccountChecker) Check(ctx context.Context, required string) (AccountCheck, error) {
	result := AccountCheck{RequiredID: required}

	actual, err := c.AccountID(ctx)
	if err != nil {
		logger.Action(c.logger, actionCheckAccount, logger.StatusFailed,
			fmt.Sprintf("Could not resolve account ID to compare with required account ID %s. %v", required, err),
			map[string]interface{}{
				"required_account_id": required,
				"error_type":          string(apperrors.Classify(err)),
				"error_code":          apperrors.Code(err),
			})
		return result, err
	}

	result.ActualID = actual
	result.Match = actual == required

	fields := map[string]interface{}{
		"your_account_id":     actual,
		"required_account_id": required,
	}
	if result.Match {
		logger.Action(c.logger, actionCheckAccount, logger.StatusOK, "", fields)
	} else {
		logger.Action(c.logger, actionCheckAccount, logger.StatusFailed,
			fmt.Sprintf("Your account ID %s does not match the required account ID %s.", actual, required),
			fields)
	}

	return result, nil
}
