package gls

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURL(t *testing.T) {
	cases := []struct {
		country Country
		test    bool
		want    string
	}{
		{Hungary, true, "https://api.test.mygls.hu/"},
		{Hungary, false, "https://api.mygls.hu/"},
		{Croatia, true, "https://api.test.mygls.hr/"},
		{Croatia, false, "https://api.mygls.hr/"},
		{Czechia, true, "https://api.test.mygls.cz/"},
		{Czechia, false, "https://api.mygls.cz/"},
		{Romania, true, "https://api.test.mygls.rp/"},
		{Romania, false, "https://api.mygls.ro/"},
		{Slovenia, true, "https://api.test.mygls.si/"},
		{Slovenia, false, "https://api.mygls.si/"},
		{Slovakia, true, "https://api.test.mygls.sk/"},
		{Slovakia, false, "https://api.mygls.sk/"},
	}
	for _, c := range cases {
		got, err := BaseURL(c.country, c.test)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s test=%v", c.country, c.test)

		cl, err := NewClient(Config{Country: c.country, TestClient: c.test}, nil)
		require.NoError(t, err)
		assert.Equal(t, c.want, cl.BaseURL())
	}
}

func TestBaseURLUnknownCountry(t *testing.T) {
	_, err := BaseURL("Austria", false)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "unsupported country", ce.Reason)
}

func validOptions() map[string]interface{} {
	return map[string]interface{}{
		"client_number": 100000001,
		"username":      "user@example.com",
		"password":      "secret",
		"country":       "Hungary",
		"test_client":   true,
	}
}

func TestConfigFromOptions(t *testing.T) {
	cfg, err := ConfigFromOptions(validOptions())
	require.NoError(t, err)
	assert.Equal(t, Config{
		ClientNumber: 100000001,
		Username:     "user@example.com",
		Password:     "secret",
		Country:      Hungary,
		TestClient:   true,
	}, cfg)

	opts := validOptions()
	opts["client_number"] = "100000002"
	opts["username"] = ""
	opts["insecure_skip_verify"] = true
	opts["timeout"] = "90s"
	cfg, err = ConfigFromOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, 100000002, cfg.ClientNumber)
	assert.Equal(t, "", cfg.Username)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
}

func TestConfigFromOptionsErrors(t *testing.T) {
	cases := []struct {
		name   string
		change func(map[string]interface{})
		reason string
	}{
		{"test_client omitted", func(o map[string]interface{}) { delete(o, "test_client") }, "test_client must be boolean"},
		{"test_client string", func(o map[string]interface{}) { o["test_client"] = "true" }, "test_client must be boolean"},
		{"test_client int", func(o map[string]interface{}) { o["test_client"] = 1 }, "test_client must be boolean"},
		{"country omitted", func(o map[string]interface{}) { delete(o, "country") }, "unsupported country"},
		{"country unknown", func(o map[string]interface{}) { o["country"] = "Austria" }, "unsupported country"},
		{"country lower case", func(o map[string]interface{}) { o["country"] = "hungary" }, "unsupported country"},
		{"client_number omitted", func(o map[string]interface{}) { delete(o, "client_number") }, "missing credential field"},
		{"username omitted", func(o map[string]interface{}) { delete(o, "username") }, "missing credential field"},
		{"password omitted", func(o map[string]interface{}) { delete(o, "password") }, "missing credential field"},
		{"password nil", func(o map[string]interface{}) { o["password"] = nil }, "missing credential field"},
		{"client_number not a number", func(o map[string]interface{}) { o["client_number"] = "abc" }, "client_number must be integer"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			opts := validOptions()
			c.change(opts)
			_, err := ConfigFromOptions(opts)
			var ce *ConfigError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, c.reason, ce.Reason)
		})
	}
}

func TestNewClientUnsupportedCountry(t *testing.T) {
	_, err := NewClient(Config{Country: "Austria"}, nil)
	var ce *ConfigError
	assert.True(t, errors.As(err, &ce))

	_, err = NewClient(Config{}, nil)
	assert.True(t, errors.As(err, &ce))
}
