package models

// HealthStatus is the result of the service liveness probe. A probe that
// never reached the server reports Active=false with the transport error
// message rather than failing.
type HealthStatus struct {
	Active bool   `json:"active"`
	Error  string `json:"error,omitempty"`
}

// FormatsResponse is the payload of GET videos/:id/formats: the resolutions
// the source video is available in.
type FormatsResponse struct {
	Resolutions []string `json:"resolutions"`
}
