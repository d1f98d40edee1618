package utils

import (
	"reflect"
	"strings"
	"time"
)

// normalizeString trims and then applies the field's `normalize` tag rule.
// "email" lowercases the address; "date" collapses an RFC3339 timestamp to
// its YYYY-MM-DD day so date-only validation accepts either form.
func normalizeString(s, rule string) string {
	s = strings.TrimSpace(s)
	switch rule {
	case "email":
		s = strings.ToLower(s)
	case "date":
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			s = t.UTC().Format("2006-01-02")
		}
	}
	return s
}

// NormalizeDTO walks a pointer-to-struct DTO and normalizes its fields in
// place: strings are trimmed plus any `normalize` tag rule, float64 money
// values are rounded to cents. Pointer fields are only touched when set, so
// patch DTOs keep their nil-means-omitted semantics for GORM.
func NormalizeDTO(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	s := v.Elem()
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		f := s.Field(i)
		rule := t.Field(i).Tag.Get("normalize")
		if f.Kind() == reflect.Ptr {
			if f.IsNil() {
				continue
			}
			f = f.Elem()
		}
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(normalizeString(f.String(), rule))
		case reflect.Float64:
			f.SetFloat(Round2(f.Float()))
		}
	}
}
