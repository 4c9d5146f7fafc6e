package auth

// ConfigurationError indicates the client identity is incomplete for a
// flow that mints new tokens. It is raised before any network call and
// never retried.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return "oauth configuration incomplete: missing " + e.Missing
}

// AuthenticationError indicates no usable token is available for an
// authenticated call. It is raised before any network call.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication required: " + e.Reason
}
