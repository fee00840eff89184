package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// Credentials holds a service account as inline JSON or as a file path. Both empty means ADC.
type Credentials struct {
	JSON string
	File string
}

func ClientOptions(c Credentials) []option.ClientOption {
	if js := strings.TrimSpace(c.JSON); js != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(js))}
	}
	creds := strings.TrimSpace(c.File)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, " ", " ")), " ")
}
