package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	apperrors "awsdash/pkg/errors"
	"awsdash/pkg/logger"
	"awsdash/pkg/retry"
)

const opDescribeInstances = "DescribeInstances"

// Instance is one EC2 instance as shown on the dashboard
type Instance struct {
	ID    string
	Name  string
	State string
}

// Label returns "Name (id)" when the instance has a Name tag, else the id
func (i Instance) Label() string {
	if i.Name == "" {
		return i.ID
	}
	return fmt.Sprintf("%s (%s)", i.Name, i.ID)
}

// Inventory lists the instances of one region
type Inventory struct {
	client  EC2API
	invoker *retry.Invoker
	logger  logger.Logger
}

// NewInventory creates an inventory over client
func NewInventory(client EC2API, invoker *retry.Invoker, log logger.Logger) *Inventory {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Inventory{client: client, invoker: invoker, logger: log}
}

// Instances pages through DescribeInstances and flattens reservations into
// instances in API order. Each page goes through the retry invoker, so a
// throttled page is retried without restarting the listing. API errors
// other than exhaustion are returned as *errors.Error. Listing stops when
// the API hands back a page token it already returned.
func (inv *Inventory) Instances(ctx context.Context) ([]Instance, error) {
	var (
		instances []Instance
		nextToken *string
		pages     int
	)
	seen := make(map[string]bool)

	for {
		input := &ec2.DescribeInstancesInput{NextToken: nextToken}
		out, err := retry.Invoke(ctx, inv.invoker, opDescribeInstances,
			func(ctx context.Context) (*ec2.DescribeInstancesOutput, error) {
				return inv.client.DescribeInstances(ctx, input)
			})
		if err != nil {
			if !errors.Is(err, retry.ErrExhausted) {
				err = apperrors.Wrap(err)
			}
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		pages++

		for _, res := range out.Reservations {
			for _, ec2Inst := range res.Instances {
				inst := Instance{ID: aws.ToString(ec2Inst.InstanceId)}
				if ec2Inst.State != nil {
					inst.State = string(ec2Inst.State.Name)
				}
				for _, tag := range ec2Inst.Tags {
					if aws.ToString(tag.Key) == "Name" {
						inst.Name = aws.ToString(tag.Value)
						break
					}
				}
				instances = append(instances, inst)
			}
		}

		nextToken = out.NextToken
		token := aws.ToString(nextToken)
		if token == "" {
			break
		}
		if seen[token] {
			inv.logger.WarnWithFields("DescribeInstances repeated a page token", map[string]interface{}{
				"next_token": token,
				"pages":      pages,
			})
			break
		}
		seen[token] = true
	}

	inv.logger.DebugWithFields("listed instances", map[string]interface{}{
		"count": len(instances),
		"pages": pages,
	})
	return instances, nil
}
