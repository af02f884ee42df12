package okx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Credentials holds the four values every aggregator request must be signed
// with. It is constructed once at startup and passed in explicitly; nothing
// reads the environment deeper in the call path.
type Credentials struct {
	APIKey        string
	APISecret     string
	APIPassphrase string
	ProjectID     string
}

// Validate reports which credential value is missing, if any.
func (c Credentials) Validate() error {
	switch {
	case c.APIKey == "":
		return fmt.Errorf("%w: api key", ErrMissingCredentials)
	case c.APISecret == "":
		return fmt.Errorf("%w: api secret", ErrMissingCredentials)
	case c.APIPassphrase == "":
		return fmt.Errorf("%w: api passphrase", ErrMissingCredentials)
	case c.ProjectID == "":
		return fmt.Errorf("%w: project id", ErrMissingCredentials)
	}
	return nil
}

// SignRequest builds the authenticated header set for one aggregator call.
// The signature is HMAC-SHA256 over timestamp + method + requestPath +
// queryString + body, base64 encoded. GET requests sign over the query
// string (including the leading "?"); POST requests sign over the serialized
// body. Fails before any network call when credentials are incomplete.
func SignRequest(creds Credentials, timestamp, method, requestPath, queryString, body string) (map[string]string, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	stringToSign := timestamp + method + requestPath + queryString + body

	mac := hmac.New(sha256.New, []byte(creds.APISecret))
	mac.Write([]byte(stringToSign))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"Content-Type":         "application/json",
		"OK-ACCESS-KEY":        creds.APIKey,
		"OK-ACCESS-SIGN":       signature,
		"OK-ACCESS-TIMESTAMP":  timestamp,
		"OK-ACCESS-PASSPHRASE": creds.APIPassphrase,
		"OK-ACCESS-PROJECT":    creds.ProjectID,
	}, nil
}
