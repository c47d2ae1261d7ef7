package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("REFDATA_TEST_STR", "")
	assert.Equal(t, "fallback", GetEnv("REFDATA_TEST_STR", "fallback"))

	t.Setenv("REFDATA_TEST_STR", "value")
	assert.Equal(t, "value", GetEnv("REFDATA_TEST_STR", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("REFDATA_TEST_INT", "12")
	assert.Equal(t, 12, GetEnvInt("REFDATA_TEST_INT", 3))

	t.Setenv("REFDATA_TEST_INT", "twelve")
	assert.Equal(t, 3, GetEnvInt("REFDATA_TEST_INT", 3))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("REFDATA_TEST_FLOAT", "0.4")
	assert.InDelta(t, 0.4, GetEnvFloat("REFDATA_TEST_FLOAT", 1), 1e-9)

	t.Setenv("REFDATA_TEST_FLOAT", "fast")
	assert.InDelta(t, 1.0, GetEnvFloat("REFDATA_TEST_FLOAT", 1), 1e-9)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("REFDATA_TEST_BOOL", "false")
	assert.False(t, GetEnvBool("REFDATA_TEST_BOOL", true))

	t.Setenv("REFDATA_TEST_BOOL", "1")
	assert.True(t, GetEnvBool("REFDATA_TEST_BOOL", false))

	t.Setenv("REFDATA_TEST_BOOL", "maybe")
	assert.True(t, GetEnvBool("REFDATA_TEST_BOOL", true))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("REFDATA_TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, GetEnvDuration("REFDATA_TEST_DUR", time.Minute))

	t.Setenv("REFDATA_TEST_DUR", "90")
	assert.Equal(t, time.Minute, GetEnvDuration("REFDATA_TEST_DUR", time.Minute))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("REFDATA_TEST_LIST", " a.xml, ,b.zip ,")
	assert.Equal(t, []string{"a.xml", "b.zip"}, GetEnvList("REFDATA_TEST_LIST", nil))

	t.Setenv("REFDATA_TEST_LIST", " , ")
	assert.Equal(t, []string{"x"}, GetEnvList("REFDATA_TEST_LIST", []string{"x"}))

	t.Setenv("REFDATA_TEST_LIST", "")
	assert.Nil(t, GetEnvList("REFDATA_TEST_LIST", nil))
}
