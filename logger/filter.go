package logger

import (
	"net/http"
	"net/url"
	"reflect"
	"strings"
)

const (
	// DefaultMaskValue replaces sensitive values in log output.
	DefaultMaskValue = "***"
	// DefaultMaxDepth bounds recursion into nested maps and slices.
	DefaultMaxDepth = 8
)

// FilterConfig defines which fields are treated as sensitive.
type FilterConfig struct {
	// SensitiveFields holds field name fragments matched case-insensitively.
	SensitiveFields []string
	// MaskValue replaces sensitive data (default: "***")
	MaskValue string
}

// DefaultFilterConfig masks credentials, session material and secrets.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		SensitiveFields: []string{
			"password", "secret",
			"token", "id_token", "refresh_token",
			"authorization", "credential",
			"cookie", "session",
			"api_key", "apikey",
		},
		MaskValue: DefaultMaskValue,
	}
}

// SensitiveDataFilter masks values whose key names a sensitive field.
type SensitiveDataFilter struct {
	config *FilterConfig
}

// NewSensitiveDataFilter creates a filter; a nil config selects DefaultFilterConfig.
func NewSensitiveDataFilter(config *FilterConfig) *SensitiveDataFilter {
	if config == nil {
		config = DefaultFilterConfig()
	}
	if config.MaskValue == "" {
		config.MaskValue = DefaultMaskValue
	}
	return &SensitiveDataFilter{config: config}
}

// FilterString masks value when key is sensitive. URLs carrying user info
// have their password component masked regardless of the key.
func (f *SensitiveDataFilter) FilterString(key, value string) string {
	if f.isSensitiveField(key) {
		return f.maskString(value)
	}
	return f.maskURLCredentials(value)
}

// FilterValue masks sensitive entries of maps, headers and slices.
func (f *SensitiveDataFilter) FilterValue(key string, value any) any {
	return f.filterValue(key, value, DefaultMaxDepth)
}

// FilterFields masks sensitive entries of a field map without modifying it.
func (f *SensitiveDataFilter) FilterFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = f.FilterValue(k, v)
	}
	return out
}

func (f *SensitiveDataFilter) filterValue(key string, value any, depth int) any {
	if value == nil {
		return nil
	}
	if f.isSensitiveField(key) {
		return f.config.MaskValue
	}
	if depth <= 0 {
		return value
	}

	switch v := value.(type) {
	case string:
		return f.maskURLCredentials(v)
	case http.Header:
		out := make(http.Header, len(v))
		for name, vals := range v {
			if f.isSensitiveField(name) {
				out[name] = []string{f.config.MaskValue}
				continue
			}
			out[name] = append([]string(nil), vals...)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, val := range v {
			out[k] = f.FilterString(k, val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = f.filterValue(k, val, depth-1)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = f.filterValue("", val, depth-1)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = f.filterValue(iter.Key().String(), iter.Value().Interface(), depth-1)
		}
		return out
	}
	return value
}

func (f *SensitiveDataFilter) isSensitiveField(key string) bool {
	if key == "" {
		return false
	}
	lower := strings.ToLower(key)
	for _, field := range f.config.SensitiveFields {
		if strings.Contains(lower, strings.ToLower(field)) {
			return true
		}
	}
	return false
}

func (f *SensitiveDataFilter) maskString(value string) string {
	if value == "" {
		return value
	}
	return f.config.MaskValue
}

func (f *SensitiveDataFilter) maskURLCredentials(value string) string {
	if !strings.Contains(value, "://") || !strings.Contains(value, "@") {
		return value
	}
	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		return f.maskedUserinfoURL(u)
	}
	return value
}

// maskedUserinfoURL splices the mask in as text. url.UserPassword would
// percent-encode it.
func (f *SensitiveDataFilter) maskedUserinfoURL(u *url.URL) string {
	username := url.User(u.User.Username()).String()
	stripped := *u
	stripped.User = nil
	prefix := u.Scheme + "://"
	rest := strings.TrimPrefix(stripped.String(), prefix)
	return prefix + username + ":" + f.config.MaskValue + "@" + rest
}
