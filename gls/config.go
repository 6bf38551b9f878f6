package gls

import (
	"time"

	"github.com/spf13/cast"
)

// Country is a MyGLS country, each one served by its own API host.
type Country string

// Supported countries
const (
	Hungary  Country = "Hungary"
	Croatia  Country = "Croatia"
	Czechia  Country = "Czechia"
	Romania  Country = "Romania"
	Slovenia Country = "Slovenia"
	Slovakia Country = "Slovakia"
)

type domains struct {
	test string
	live string
}

// Romania test host "mygls.rp" is kept verbatim until the provider confirms it.
var countryDomains = map[Country]domains{
	Hungary:  {test: "https://api.test.mygls.hu/", live: "https://api.mygls.hu/"},
	Croatia:  {test: "https://api.test.mygls.hr/", live: "https://api.mygls.hr/"},
	Czechia:  {test: "https://api.test.mygls.cz/", live: "https://api.mygls.cz/"},
	Romania:  {test: "https://api.test.mygls.rp/", live: "https://api.mygls.ro/"},
	Slovenia: {test: "https://api.test.mygls.si/", live: "https://api.mygls.si/"},
	Slovakia: {test: "https://api.test.mygls.sk/", live: "https://api.mygls.sk/"},
}

// Valid reports whether c is one of the supported countries.
func (c Country) Valid() bool {
	_, ok := countryDomains[c]
	return ok
}

// BaseURL returns the API base URL for the country and environment,
// for example "https://api.test.mygls.hu/".
func BaseURL(country Country, test bool) (string, error) {
	d, ok := countryDomains[country]
	if !ok {
		return "", &ConfigError{Reason: reasonCountry}
	}
	if test {
		return d.test, nil
	}
	return d.live, nil
}

// DefaultTimeout bounds a single call. Label printing of big batches is slow.
const DefaultTimeout = 600 * time.Second

// Config holds the client settings. Password is kept in memory only and is
// sent hashed.
type Config struct {
	ClientNumber int
	Username     string
	Password     string
	Country      Country
	TestClient   bool

	// InsecureSkipVerify disables TLS certificate and host name checks.
	// Some provider test hosts need it.
	InsecureSkipVerify bool
	// Timeout of a single call, DefaultTimeout if zero.
	Timeout time.Duration
}

func (c Config) validate() error {
	if !c.Country.Valid() {
		return &ConfigError{Reason: reasonCountry}
	}
	return nil
}

const (
	reasonTestClient   = "test_client must be boolean"
	reasonCountry      = "unsupported country"
	reasonCredentials  = "missing credential field"
	reasonClientNumber = "client_number must be integer"
)

// ConfigFromOptions builds a Config from an option bag, as read from a config
// file. Recognized keys: client_number, username, password, country,
// test_client, insecure_skip_verify, timeout.
//
// test_client must hold a real boolean, a string "true" is rejected.
// Credentials must be present but may be empty.
func ConfigFromOptions(opts map[string]interface{}) (Config, error) {
	var cfg Config

	testClient, ok := opts["test_client"].(bool)
	if !ok {
		return cfg, &ConfigError{Reason: reasonTestClient}
	}
	cfg.TestClient = testClient

	country, _ := opts["country"].(string)
	cfg.Country = Country(country)
	if !cfg.Country.Valid() {
		return cfg, &ConfigError{Reason: reasonCountry}
	}

	for _, key := range []string{"client_number", "username", "password"} {
		if v, ok := opts[key]; !ok || v == nil {
			return cfg, &ConfigError{Reason: reasonCredentials}
		}
	}
	clientNumber, err := cast.ToIntE(opts["client_number"])
	if err != nil {
		return cfg, &ConfigError{Reason: reasonClientNumber}
	}
	cfg.ClientNumber = clientNumber
	cfg.Username = cast.ToString(opts["username"])
	cfg.Password = cast.ToString(opts["password"])

	cfg.InsecureSkipVerify = cast.ToBool(opts["insecure_skip_verify"])
	if v, ok := opts["timeout"]; ok {
		cfg.Timeout = cast.ToDuration(v)
	}
	return cfg, nil
}
