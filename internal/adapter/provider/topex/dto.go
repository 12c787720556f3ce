package topex

import (
	"encoding/json"
	"fmt"
	"strings"
)

// authResponse is the payload of GET /auth.
type authResponse struct {
	Status    bool       `json:"status"`
	AuthToken string     `json:"authToken"`
	Expire    flexNumber `json:"expire"`
	Error     string     `json:"error"`
}

// apiResponse is the envelope shared by the data endpoints.
// Data is kept raw because its shape differs per endpoint.
type apiResponse struct {
	Status bool            `json:"status"`
	Data   json.RawMessage `json:"data"`
	Cities json.RawMessage `json:"cities"`
	Error  string          `json:"error"`
	Errors json.RawMessage `json:"errors"`
}

// message returns the provider's error text, combining error and errors.
func (r apiResponse) message() string {
	var parts []string
	if r.Error != "" {
		parts = append(parts, r.Error)
	}
	if len(r.Errors) > 0 && string(r.Errors) != "null" {
		parts = append(parts, flattenErrors(r.Errors)...)
	}
	if len(parts) == 0 {
		return "unknown provider error"
	}
	return strings.Join(parts, "; ")
}

// flattenErrors renders an errors field that may be a string, a list or a field map.
func flattenErrors(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			out = append(out, fmt.Sprint(v))
		}
		return out
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err == nil {
		out := make([]string, 0, len(fields))
		for k, v := range fields {
			out = append(out, fmt.Sprintf("%s: %v", k, v))
		}
		return out
	}
	return []string{string(raw)}
}

// cityRecord is one entry of the list-shaped city directory.
type cityRecord struct {
	ID       flexString `json:"id"`
	CityID   flexString `json:"cityId"`
	Code     flexString `json:"code"`
	Name     string     `json:"name"`
	CityName string     `json:"cityName"`
	Title    string     `json:"title"`
}

func (r cityRecord) id() string {
	for _, v := range []flexString{r.ID, r.CityID, r.Code} {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

func (r cityRecord) name() string {
	for _, v := range []string{r.Name, r.CityName, r.Title} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	text := strings.TrimSpace(string(b))
	if text == "null" {
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}
