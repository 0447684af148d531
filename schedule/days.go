package schedule

import (
	"encoding/json"
	"errors"
	"strings"
)

// DayList accepts both the JSON array form and the delimited-string forms
// some client widgets submit: a JSON-encoded array inside a string, or a
// comma-separated list ("Lunes, Martes").
type DayList []string

func (d *DayList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*d = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("dias: expected array of day names or string")
	}
	*d = SplitDays(s)
	return nil
}

// SplitDays turns a string day list into tokens: a JSON array string decodes
// as-is, anything else splits on commas with each token trimmed and empty
// tokens dropped.
func SplitDays(s string) []string {
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return list
	}
	out := []string{}
	for _, tok := range strings.Split(s, ",") {
		if t := strings.TrimSpace(tok); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// TeacherRef accepts the assigned-teacher field as a JSON number, a numeric
// string, an empty string, or null. Empty and null mean "no teacher
// assigned"; whether the raw value is a usable id is the validator's call.
type TeacherRef struct {
	Raw string
}

func (r *TeacherRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		r.Raw = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Raw = strings.TrimSpace(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		r.Raw = n.String()
		return nil
	}
	return errors.New("profesor_asignado: expected id or empty")
}

func (r TeacherRef) MarshalJSON() ([]byte, error) {
	if r.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.Raw)
}

// IsEmpty reports whether the reference means "no teacher assigned".
func (r TeacherRef) IsEmpty() bool {
	return r.Raw == ""
}
