package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSM struct {
	out   *secretsmanager.GetSecretValueOutput
	err   error
	asked string
}

func (f *fakeSM) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.asked = aws.ToString(in.SecretId)
	return f.out, f.err
}

func TestAWSProvider_GetSecret(t *testing.T) {
	sm := &fakeSM{out: &secretsmanager.GetSecretValueOutput{SecretString: aws.String(`{"api_key":"k-123"}`)}}
	p := NewAWSProviderWithClient(sm)

	got, err := p.GetSecret(context.Background(), "dev/refdata/openfigi")
	require.NoError(t, err)
	assert.Equal(t, "k-123", got["api_key"])
	assert.Equal(t, "dev/refdata/openfigi", sm.asked)
}

func TestAWSProvider_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewAWSProviderWithClient(&fakeSM{err: errors.New("access denied")}).GetSecret(ctx, "x")
	assert.ErrorContains(t, err, "failed to fetch secret [x]")

	_, err = NewAWSProviderWithClient(&fakeSM{out: &secretsmanager.GetSecretValueOutput{}}).GetSecret(ctx, "x")
	assert.ErrorContains(t, err, "has no string value")

	_, err = NewAWSProviderWithClient(&fakeSM{out: &secretsmanager.GetSecretValueOutput{SecretString: aws.String("plain")}}).GetSecret(ctx, "x")
	assert.ErrorContains(t, err, "invalid secret format")
}

func TestCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	c := NewCache[string](time.Minute)
	c.now = func() time.Time { return now }

	c.Put("openfigi", "k-123")
	v, ok := c.Get("openfigi")
	require.True(t, ok)
	assert.Equal(t, "k-123", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("openfigi")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry removed on read")
}

func TestCache_BustAndCleanup(t *testing.T) {
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	c := NewCache[int](time.Minute)
	c.now = func() time.Time { return now }

	c.Put("a", 1)
	c.Put("b", 2)
	c.Bust("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	now = now.Add(time.Hour)
	c.cleanupExpired()
	assert.Equal(t, 0, c.Len())
}

func TestCache_StartCleanerStops(t *testing.T) {
	c := NewCache[int](time.Nanosecond)
	c.Put("a", 1)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		c.StartCleaner(time.Millisecond, stop)
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop")
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	c := NewCache[string](time.Minute)
	loads := 0
	load := func() (string, error) {
		loads++
		return "k-123", nil
	}

	v, hit, err := c.GetOrLoad("openfigi", load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "k-123", v)

	v, hit, err = c.GetOrLoad("openfigi", load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "k-123", v)
	assert.Equal(t, 1, loads)

	_, _, err = c.GetOrLoad("gleif", func() (string, error) { return "", errors.New("denied") })
	assert.EqualError(t, err, "denied")
	assert.Equal(t, 1, c.Len(), "failed loads are not cached")
}
