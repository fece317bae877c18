package cloud

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"awsdash/pkg/auth"
	"awsdash/pkg/config"
	"awsdash/pkg/logger"
)

// Service names used in the region table
const (
	ServiceEC2 = "ec2"
	ServiceIAM = "iam"
)

var (
	// ErrUnknownRegion is returned for a region missing from the table
	ErrUnknownRegion = errors.New("unknown region")
	// ErrUnknownService is returned when a region has no client for a service
	ErrUnknownService = errors.New("unknown service")
)

// EC2API is the subset of the EC2 client the dashboard uses
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// IAMAPI is the subset of the IAM client the dashboard uses
type IAMAPI interface {
	GetUser(ctx context.Context, params *iam.GetUserInput, optFns ...func(*iam.Options)) (*iam.GetUserOutput, error)
}

// Clients holds the clients available in one region. A nil field means the
// service is not offered there.
type Clients struct {
	EC2 EC2API
	IAM IAMAPI
}

// Registry is a fixed lookup table of region to service clients
type Registry struct {
	regions map[string]Clients
	logger  logger.Logger
}

// NewStaticRegistry creates a registry over prebuilt clients
func NewStaticRegistry(regions map[string]Clients, log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNopLogger()
	}
	table := make(map[string]Clients, len(regions))
	for region, clients := range regions {
		table[region] = clients
	}
	return &Registry{regions: table, logger: log}
}

// NewRegistry builds SDK clients for every region and service in cfg.
// The SDK retryer is disabled on every client; throttling is handled by
// the retry package. EC2 throttles with RequestLimitExceeded, so EC2 calls
// are retried only when that code is listed in retry.throttle_markers.
// A nil creds uses the default credential chain.
func NewRegistry(ctx context.Context, cfg config.AWSConfig, creds aws.CredentialsProvider, log logger.Logger) (*Registry, error) {
	regions := make(map[string]Clients, len(cfg.Regions))

	for region, services := range cfg.Regions {
		signingRegion := region
		if region == config.UniversalRegion {
			signingRegion = cfg.UniversalSigningRegion
		}

		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(signingRegion),
			awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
		}
		if creds != nil {
			opts = append(opts, awsconfig.WithCredentialsProvider(creds))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config for %s: %w", region, err)
		}

		var clients Clients
		for _, service := range services {
			switch service {
			case ServiceEC2:
				clients.EC2 = ec2.NewFromConfig(awsCfg)
			case ServiceIAM:
				clients.IAM = iam.NewFromConfig(awsCfg)
			default:
				return nil, fmt.Errorf("%w: %s in region %s", ErrUnknownService, service, region)
			}
		}
		regions[region] = clients
	}

	return NewStaticRegistry(regions, log), nil
}

// CredentialsFromProfile turns a stored profile into a static provider
func CredentialsFromProfile(p *auth.Profile) aws.CredentialsProvider {
	return credentials.NewStaticCredentialsProvider(p.AccessKeyID, p.SecretAccessKey, p.SessionToken)
}

// Regions returns the configured regions in sorted order
func (r *Registry) Regions() []string {
	names := make([]string, 0, len(r.regions))
	for name := range r.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EC2 returns the EC2 client for region
func (r *Registry) EC2(region string) (EC2API, error) {
	clients, err := r.lookup(ServiceEC2, region)
	if err != nil {
		return nil, err
	}
	if clients.EC2 == nil {
		return nil, r.unknownService(ServiceEC2, region)
	}
	return clients.EC2, nil
}

// IAM returns the IAM client for region
func (r *Registry) IAM(region string) (IAMAPI, error) {
	clients, err := r.lookup(ServiceIAM, region)
	if err != nil {
		return nil, err
	}
	if clients.IAM == nil {
		return nil, r.unknownService(ServiceIAM, region)
	}
	return clients.IAM, nil
}

func (r *Registry) lookup(service, region string) (Clients, error) {
	clients, ok := r.regions[region]
	if !ok {
		logger.Action(r.logger, "GET_CONN", logger.StatusFailed,
			fmt.Sprintf("%s not a valid region", region),
			map[string]interface{}{"region": region, "service": service})
		return Clients{}, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}
	return clients, nil
}

func (r *Registry) unknownService(service, region string) error {
	logger.Action(r.logger, "GET_CONN", logger.StatusFailed,
		fmt.Sprintf("%s not a valid service", service),
		map[string]interface{}{"region": region, "service": service})
	return fmt.Errorf("%w: %s in region %s", ErrUnknownService, service, region)
}
