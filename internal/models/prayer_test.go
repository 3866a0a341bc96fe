package models

import (
	"encoding/json"
	"testing"
)

func TestNormalizePrayerValues(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantNil  bool
		wantDone int
		wantData bool
	}{
		{name: "object", raw: `{"fajr":true,"dhuhr":false,"asr":null,"maghrib":true}`, wantDone: 2, wantData: true},
		{name: "json string", raw: `"{\"fajr\":true,\"isha\":true}"`, wantDone: 2, wantData: true},
		{name: "all null", raw: `{"fajr":null,"dhuhr":null}`, wantDone: 0, wantData: false},
		{name: "only false", raw: `{"asr":false}`, wantDone: 0, wantData: true},
		{name: "null", raw: `null`, wantNil: true},
		{name: "empty", raw: ``, wantNil: true},
		{name: "garbage string", raw: `"not json"`, wantNil: true},
		{name: "array", raw: `[true,false]`, wantNil: true},
		{name: "non-bool value is untracked", raw: `{"fajr":"yes","dhuhr":true}`, wantDone: 1, wantData: true},
		{name: "unknown keys ignored", raw: `{"tahajjud":true}`, wantDone: 0, wantData: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePrayerValues([]byte(tt.raw))
			if tt.wantNil {
				if got != nil {
					t.Errorf("NormalizePrayerValues(%s) = %v, want nil", tt.raw, got)
				}
				return
			}
			if got.Done() != tt.wantDone {
				t.Errorf("Done() = %d, want %d", got.Done(), tt.wantDone)
			}
			if got.HasData() != tt.wantData {
				t.Errorf("HasData() = %v, want %v", got.HasData(), tt.wantData)
			}
		})
	}
}

func TestPrayerValuesUnmarshalNeverFails(t *testing.T) {
	var e Entry
	body := `{"tracker_id":"t1","date":"2025-01-02","prayer_values":"{broken"}`
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if e.PrayerValues != nil {
		t.Errorf("PrayerValues = %v, want nil for unparseable input", e.PrayerValues)
	}
}

func TestPrayerValuesDistinguishFalseFromNull(t *testing.T) {
	p := NormalizePrayerValues([]byte(`{"fajr":false,"dhuhr":null}`))
	if v, ok := p[Fajr]; !ok || v == nil || *v {
		t.Errorf("fajr = %v, want explicit false", v)
	}
	if v := p[Dhuhr]; v != nil {
		t.Errorf("dhuhr = %v, want nil", *v)
	}
}

func TestCompact(t *testing.T) {
	p := PrayerValues{Fajr: BoolPtr(true), Asr: nil, "tahajjud": BoolPtr(true)}
	got := p.Compact()
	if len(got) != 1 {
		t.Fatalf("Compact() len = %d, want 1", len(got))
	}
	if got[Fajr] == nil || !*got[Fajr] {
		t.Errorf("Compact() lost fajr")
	}
	if (PrayerValues{Isha: nil}).Compact() != nil {
		t.Errorf("Compact() of untracked values should be nil")
	}
}
