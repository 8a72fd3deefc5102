package request

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// Shape describes how a request is sent. Two identities with the same
// endpoint but a different shape are distinct.
type Shape struct {
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Identity names one logical request.
type Identity struct {
	Endpoint string `json:"endpoint"`
	Shape    Shape  `json:"shape"`
}

func Get(endpoint string) Identity {
	return Identity{Endpoint: endpoint, Shape: Shape{Method: http.MethodGet}}
}

func Post(endpoint string) Identity {
	return Identity{
		Endpoint: endpoint,
		Shape: Shape{
			Method:  http.MethodPost,
			Headers: map[string]string{"Content-Type": "application/json"},
		},
	}
}

// method returns the HTTP method, defaulting to GET.
func (s Shape) method() string {
	if s.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(s.Method)
}

// AutoFetch reports whether a request of this shape is issued as soon as it
// is observed.
func (s Shape) AutoFetch() bool {
	return s.method() == http.MethodGet
}

// Key is a stable string form of the identity, compared by value. Header
// names are canonicalised and sorted; the key is JSON so no endpoint or
// header value can collide with another identity's separators.
func (id Identity) Key() string {
	headers := make([][2]string, 0, len(id.Shape.Headers))
	for name, value := range id.Shape.Headers {
		headers = append(headers, [2]string{http.CanonicalHeaderKey(name), value})
	}
	sort.Slice(headers, func(i, j int) bool {
		if headers[i][0] != headers[j][0] {
			return headers[i][0] < headers[j][0]
		}
		return headers[i][1] < headers[j][1]
	})

	raw, _ := json.Marshal(struct {
		Method   string      `json:"m"`
		Endpoint string      `json:"e"`
		Headers  [][2]string `json:"h,omitempty"`
	}{id.Shape.method(), id.Endpoint, headers})
	return string(raw)
}
