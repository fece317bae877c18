package cloud_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"awsdash/pkg/cloud"
	"awsdash/pkg/dashboard"
	"awsdash/pkg/logger"
	"awsdash/pkg/retry"
)

const describeInstancesXML = `<?xml version="1.0" encoding="UTF-8"?>
<DescribeInstancesResponse xmlns="http://ec2.amazonaws.com/doc/2016-11-15/">
  <requestId>req-1</requestId>
  <reservationSet>
    <item>
      <reservationId>r-1</reservationId>
      <instancesSet>
        <item>
          <instanceId>i-0web</instanceId>
          <instanceState><code>16</code><name>running</name></instanceState>
          <tagSet><item><key>Name</key><value>web</value></item></tagSet>
        </item>
        <item>
          <instanceId>i-0bare</instanceId>
          <instanceState><code>80</code><name>stopped</name></instanceState>
        </item>
      </instancesSet>
    </item>
  </reservationSet>
</DescribeInstancesResponse>`

const ec2ThrottleXML = `<?xml version="1.0" encoding="UTF-8"?>
<Response><Errors><Error><Code>Throttling</Code><Message>Rate exceeded</Message></Error></Errors><RequestID>req-2</RequestID></Response>`

const ec2AuthFailureXML = `<?xml version="1.0" encoding="UTF-8"?>
<Response><Errors><Error><Code>AuthFailure</Code><Message>Bad key</Message></Error></Errors><RequestID>req-3</RequestID></Response>`

const getUserXML = `<GetUserResponse xmlns="https://iam.amazonaws.com/doc/2010-05-08/">
  <GetUserResult>
    <User>
      <Path>/</Path>
      <UserName>alice</UserName>
      <UserId>AIDAEXAMPLE</UserId>
      <Arn>arn:aws:iam::123456789012:user/alice</Arn>
      <CreateDate>2020-01-01T00:00:00Z</CreateDate>
    </User>
  </GetUserResult>
  <ResponseMetadata><RequestId>req-4</RequestId></ResponseMetadata>
</GetUserResponse>`

const iamThrottleXML = `<ErrorResponse xmlns="https://iam.amazonaws.com/doc/2010-05-08/">
  <Error><Type>Sender</Type><Code>Throttling</Code><Message>Rate exceeded</Message></Error>
  <RequestId>req-5</RequestId>
</ErrorResponse>`

// mockAWSServer answers EC2 and IAM query requests, throttling the first
// throttle requests of each action.
type mockAWSServer struct {
	server   *httptest.Server
	mu       sync.Mutex
	throttle map[string]int
	failAuth bool
	requests int32
}

func newMockAWSServer(t *testing.T) *mockAWSServer {
	t.Helper()
	m := &mockAWSServer{throttle: make(map[string]int)}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockAWSServer) throttleNext(action string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.throttle[action] = n
}

func (m *mockAWSServer) takeThrottle(action string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.throttle[action] > 0 {
		m.throttle[action]--
		return true
	}
	return false
}

func (m *mockAWSServer) handle(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requests, 1)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	action := r.Form.Get("Action")
	w.Header().Set("Content-Type", "text/xml")

	switch {
	case action == "DescribeInstances" && m.failAuth:
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, ec2AuthFailureXML)
	case action == "DescribeInstances" && m.takeThrottle(action):
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, ec2ThrottleXML)
	case action == "DescribeInstances":
		fmt.Fprint(w, describeInstancesXML)
	case action == "GetUser" && m.takeThrottle(action):
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, iamThrottleXML)
	case action == "GetUser":
		fmt.Fprint(w, getUserXML)
	default:
		http.Error(w, "unknown action "+action, http.StatusBadRequest)
	}
}

func (m *mockAWSServer) awsConfig() aws.Config {
	return aws.Config{
		Region:      "eu-west-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIAEXAMPLE", "secret", ""),
		Retryer:     func() aws.Retryer { return aws.NopRetryer{} },
	}
}

func (m *mockAWSServer) ec2Client() *ec2.Client {
	return ec2.NewFromConfig(m.awsConfig(), func(o *ec2.Options) {
		o.EndpointResolver = ec2.EndpointResolverFromURL(m.server.URL)
	})
}

func (m *mockAWSServer) iamClient() *iam.Client {
	return iam.NewFromConfig(m.awsConfig(), func(o *iam.Options) {
		o.EndpointResolver = iam.EndpointResolverFromURL(m.server.URL)
	})
}

func noSleepInvoker(log logger.Logger, slept *[]time.Duration) *retry.Invoker {
	return retry.NewInvoker(retry.DefaultPolicy(), log, retry.WithSleep(func(d time.Duration) {
		*slept = append(*slept, d)
	}))
}

func TestSDKThrottlingIsRetried(t *testing.T) {
	srv := newMockAWSServer(t)
	srv.throttleNext("DescribeInstances", 2)

	log := logger.NewTestLogger()
	var slept []time.Duration
	inventory := cloud.NewInventory(srv.ec2Client(), noSleepInvoker(log, &slept), log)

	instances, err := inventory.Instances(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []cloud.Instance{
		{ID: "i-0web", Name: "web", State: "running"},
		{ID: "i-0bare", State: "stopped"},
	}, instances)
	assert.EqualValues(t, 3, atomic.LoadInt32(&srv.requests))
	assert.Len(t, slept, 2)
	assert.Len(t, log.GetMessagesByField("status", logger.StatusRetry), 2)
}

func TestSDKThrottlingExhausts(t *testing.T) {
	srv := newMockAWSServer(t)
	srv.throttleNext("DescribeInstances", 100)

	var slept []time.Duration
	inventory := cloud.NewInventory(srv.ec2Client(), noSleepInvoker(nil, &slept), nil)

	_, err := inventory.Instances(context.Background())
	assert.ErrorIs(t, err, retry.ErrExhausted)
	assert.EqualValues(t, retry.DefaultMaxAttempts, atomic.LoadInt32(&srv.requests))
	assert.Len(t, slept, retry.DefaultMaxAttempts)
}

func TestSDKAuthFailureIsNotRetried(t *testing.T) {
	srv := newMockAWSServer(t)
	srv.failAuth = true

	var slept []time.Duration
	inventory := cloud.NewInventory(srv.ec2Client(), noSleepInvoker(nil, &slept), nil)

	_, err := inventory.Instances(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuthFailure")
	assert.NotErrorIs(t, err, retry.ErrExhausted)
	assert.EqualValues(t, 1, atomic.LoadInt32(&srv.requests))
	assert.Empty(t, slept)
}

func TestSDKAccountCheck(t *testing.T) {
	srv := newMockAWSServer(t)
	srv.throttleNext("GetUser", 1)

	var slept []time.Duration
	checker := cloud.NewAccountChecker(srv.iamClient(), noSleepInvoker(nil, &slept), nil)

	result, err := checker.Check(context.Background(), "123456789012")
	require.NoError(t, err)
	assert.True(t, result.Match)
	assert.Len(t, slept, 1)
}

func TestSDKDashboardEndToEnd(t *testing.T) {
	srv := newMockAWSServer(t)
	srv.throttleNext("DescribeInstances", 1)

	var slept []time.Duration
	inventory := cloud.NewInventory(srv.ec2Client(), noSleepInvoker(nil, &slept), nil)
	page := httptest.NewServer(dashboard.NewHandler(inventory, nil, nil))
	t.Cleanup(page.Close)

	resp, err := http.Get(page.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "web (i-0web) [running] <br />\ni-0bare [stopped] <br />\n", string(body))
	assert.Len(t, slept, 1)
}
