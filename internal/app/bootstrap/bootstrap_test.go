package bootstrap

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/onyxandcode/onyx-site/internal/config"
	"github.com/onyxandcode/onyx-site/internal/dashboard"
	"github.com/onyxandcode/onyx-site/internal/leads"
	"github.com/onyxandcode/onyx-site/internal/notify"
	"github.com/onyxandcode/onyx-site/internal/projects"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

func TestBuildRedisClient(t *testing.T) {
	logger := logging.New("error")
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, logger, true))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true)
	require.NotNil(t, client)
	defer client.Close()

	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logger, true))
}

func TestBuildStoresInMemory(t *testing.T) {
	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, nil, false)
	defer client.Close()

	stores := BuildStores(nil, client, &appconfig.Config{ProjectCacheTTL: time.Minute}, logging.New("error"))
	assert.IsType(t, &leads.InMemoryRepository{}, stores.Leads)
	assert.IsType(t, &projects.CachedRepository{}, stores.Projects)
	assert.IsType(t, dashboard.RepositoryStats{}, stores.Stats)
	assert.Nil(t, stores.SQL)

	uncached := BuildStores(nil, nil, &appconfig.Config{ProjectCacheTTL: time.Minute}, logging.New("error"))
	assert.IsType(t, &projects.InMemoryRepository{}, uncached.Projects)
}

func TestBuildNotifierRelayOnly(t *testing.T) {
	cfg := &appconfig.Config{FormRelayURL: "https://formspree.io/f/mbddjynj", EmailProvider: "none"}
	n, names := BuildNotifier(cfg, nil, nil, logging.New("error"))
	require.NotNil(t, n)
	assert.IsType(t, &notify.FormRelay{}, n)
	assert.Equal(t, []string{"form_relay"}, names)
}

func TestBuildNotifierRelayAndEmail(t *testing.T) {
	cfg := &appconfig.Config{
		FormRelayURL:  "https://formspree.io/f/mbddjynj",
		EmailProvider: "stub",
		NotifyEmailTo: "ops@onyxandcode.com",
	}
	n, names := BuildNotifier(cfg, nil, nil, logging.New("error"))
	assert.IsType(t, notify.Multi{}, n)
	assert.Equal(t, []string{"form_relay", "email_stub"}, names)
}

func TestBuildNotifierSkipsIncompleteEmail(t *testing.T) {
	logger := logging.New("error")

	n, names := BuildNotifier(&appconfig.Config{EmailProvider: "sendgrid", NotifyEmailTo: "a@b.c"}, nil, nil, logger)
	assert.Nil(t, n)
	assert.Empty(t, names)

	n, names = BuildNotifier(&appconfig.Config{EmailProvider: "stub"}, nil, nil, logger)
	assert.Nil(t, n)
	assert.Empty(t, names)
}

func TestBuildNotifierSES(t *testing.T) {
	cfg := &appconfig.Config{EmailProvider: "ses", NotifyEmailTo: "ops@onyxandcode.com", SESFromEmail: "noreply@onyxandcode.com"}
	awsCfg := aws.Config{Region: "eu-west-1"}
	n, names := BuildNotifier(cfg, &awsCfg, nil, logging.New("error"))
	assert.IsType(t, &notify.EmailNotifier{}, n)
	assert.Equal(t, []string{"email_ses"}, names)
}

func TestLoadAWSConfigStaticCredentials(t *testing.T) {
	cfg := &appconfig.Config{AWSRegion: "eu-west-1", AWSAccessKeyID: "AKIA", AWSSecretAccessKey: "secret", AWSEndpointOverride: "http://localhost:4566"}
	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", awsCfg.Region)
	require.NotNil(t, awsCfg.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *awsCfg.BaseEndpoint)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIA", creds.AccessKeyID)
}

func TestBuildAttachmentStore(t *testing.T) {
	assert.False(t, BuildAttachmentStore(nil, &appconfig.Config{}, nil).Enabled())

	awsCfg := aws.Config{Region: "eu-west-1"}
	store := BuildAttachmentStore(&awsCfg, &appconfig.Config{AttachmentBucket: "onyx-leads"}, nil)
	assert.True(t, store.Enabled())
	assert.True(t, NeedsAWS(&appconfig.Config{AttachmentBucket: "onyx-leads"}))
	assert.False(t, NeedsAWS(&appconfig.Config{EmailProvider: "sendgrid"}))
}
