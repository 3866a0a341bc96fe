package entrycodec

import (
	"errors"
	"testing"

	"github.com/julianstephens/tracked/internal/models"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		typ        models.TrackerType
		raw        string
		want       models.Value
		wantDelete bool
		wantErr    bool
	}{
		{name: "binary true", typ: models.TrackerBinary, raw: "true", want: models.BinaryValue(true)},
		{name: "binary YES", typ: models.TrackerBinary, raw: "YES", want: models.BinaryValue(true)},
		{name: "binary 1", typ: models.TrackerBinary, raw: "1", want: models.BinaryValue(true)},
		{name: "binary other is false", typ: models.TrackerBinary, raw: "nope", want: models.BinaryValue(false)},
		{name: "binary empty deletes", typ: models.TrackerBinary, raw: "", wantDelete: true},
		{name: "number", typ: models.TrackerNumber, raw: "2.75", want: models.NumberValue(2.75)},
		{name: "number NaN", typ: models.TrackerNumber, raw: "NaN", wantErr: true},
		{name: "number garbage", typ: models.TrackerNumber, raw: "abc", wantErr: true},
		{name: "rating", typ: models.TrackerRating, raw: "4", want: models.RatingValue(4)},
		{name: "rating fraction", typ: models.TrackerRating, raw: "4.5", wantErr: true},
		{name: "duration minutes", typ: models.TrackerDuration, raw: "90", want: models.DurationValue(90)},
		{name: "duration composed", typ: models.TrackerDuration, raw: "1h 30m", want: models.DurationValue(90)},
		{name: "duration hours only", typ: models.TrackerDuration, raw: "2h", want: models.DurationValue(120)},
		{name: "duration min suffix", typ: models.TrackerDuration, raw: "45min", want: models.DurationValue(45)},
		{name: "duration zero deletes", typ: models.TrackerDuration, raw: "0", wantDelete: true},
		{name: "duration negative deletes", typ: models.TrackerDuration, raw: "-10", wantDelete: true},
		{name: "duration garbage", typ: models.TrackerDuration, raw: "long", wantErr: true},
		{name: "time", typ: models.TrackerTime, raw: "07:30", want: models.TimeValue("07:30")},
		{name: "time strips seconds", typ: models.TrackerTime, raw: "07:30:59", want: models.TimeValue("07:30")},
		{name: "time single digit hour", typ: models.TrackerTime, raw: "7:05", want: models.TimeValue("07:05")},
		{name: "time out of range", typ: models.TrackerTime, raw: "25:00", wantErr: true},
		{name: "time bad seconds", typ: models.TrackerTime, raw: "07:30:xx", wantErr: true},
		{name: "time seconds out of range", typ: models.TrackerTime, raw: "07:30:99", wantErr: true},
		{name: "time empty seconds", typ: models.TrackerTime, raw: "07:30:", wantErr: true},
		{name: "text trimmed", typ: models.TrackerText, raw: "  felt great ", want: models.TextValue("felt great")},
		{name: "text blank deletes", typ: models.TrackerText, raw: "   ", wantDelete: true},
		{name: "unknown type", typ: models.TrackerType("emoji"), raw: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.typ, tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidValue) {
					t.Errorf("Decode(%s, %q) error = %v, want ErrInvalidValue", tt.typ, tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%s, %q) unexpected error: %v", tt.typ, tt.raw, err)
			}
			if got.Delete != tt.wantDelete {
				t.Errorf("Decode(%s, %q).Delete = %v, want %v", tt.typ, tt.raw, got.Delete, tt.wantDelete)
			}
			if !tt.wantDelete && got.Value != tt.want {
				t.Errorf("Decode(%s, %q) = %v, want %v", tt.typ, tt.raw, got.Value, tt.want)
			}
		})
	}
}

func TestDecodePrayerInput(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantDone   int
		wantDelete bool
		wantErr    bool
	}{
		{name: "json object", raw: `{"fajr":true,"dhuhr":false,"maghrib":true}`, wantDone: 2},
		{name: "pair list", raw: "fajr=true, asr=false, isha", wantDone: 2},
		{name: "all null deletes", raw: `{"fajr":null,"isha":null}`, wantDelete: true},
		{name: "null pairs delete", raw: "fajr=null", wantDelete: true},
		{name: "json null deletes", raw: "null", wantDelete: true},
		{name: "unknown prayer", raw: "tahajjud=true", wantErr: true},
		{name: "bad value", raw: "fajr=maybe", wantErr: true},
		{name: "malformed json", raw: `{"fajr":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(models.TrackerPrayer, tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidValue) {
					t.Errorf("Decode(prayer, %q) error = %v, want ErrInvalidValue", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(prayer, %q) unexpected error: %v", tt.raw, err)
			}
			if got.Delete != tt.wantDelete {
				t.Fatalf("Decode(prayer, %q).Delete = %v, want %v", tt.raw, got.Delete, tt.wantDelete)
			}
			if tt.wantDelete {
				return
			}
			values := models.PrayerValues(got.Value.(models.PrayerValue))
			if values.Done() != tt.wantDone {
				t.Errorf("Done() = %d, want %d", values.Done(), tt.wantDone)
			}
		})
	}
}

func TestDecodeDuration(t *testing.T) {
	tests := []struct {
		name       string
		hours      string
		minutes    string
		want       models.Value
		wantDelete bool
		wantErr    bool
	}{
		{name: "hours and minutes", hours: "1", minutes: "30", want: models.DurationValue(90)},
		{name: "hours only", hours: "2", minutes: "", want: models.DurationValue(120)},
		{name: "minutes only", hours: "", minutes: "45", want: models.DurationValue(45)},
		{name: "both blank deletes", hours: "", minutes: "", wantDelete: true},
		{name: "zero deletes", hours: "0", minutes: "0", wantDelete: true},
		{name: "bad hours", hours: "x", minutes: "5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDuration(tt.hours, tt.minutes)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeDuration(%q, %q) error = %v, wantErr %v", tt.hours, tt.minutes, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Delete != tt.wantDelete {
				t.Errorf("Delete = %v, want %v", got.Delete, tt.wantDelete)
			}
			if !tt.wantDelete && got.Value != tt.want {
				t.Errorf("Value = %v, want %v", got.Value, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	minutes := 90
	rating := 3
	number := 8.0
	clock := "06:45:12"
	text := "stale"

	tests := []struct {
		name  string
		entry *models.Entry
		typ   models.TrackerType
		want  string
	}{
		{name: "nil entry", entry: nil, typ: models.TrackerText, want: ""},
		{name: "duration", entry: &models.Entry{ValueFields: models.ValueFields{DurationMinutes: &minutes}}, typ: models.TrackerDuration, want: "1h 30m"},
		{name: "rating", entry: &models.Entry{ValueFields: models.ValueFields{RatingValue: &rating}}, typ: models.TrackerRating, want: "3"},
		{name: "number drops .0", entry: &models.Entry{ValueFields: models.ValueFields{NumberValue: &number}}, typ: models.TrackerNumber, want: "8"},
		{name: "time strips seconds", entry: &models.Entry{ValueFields: models.ValueFields{TimeValue: &clock}}, typ: models.TrackerTime, want: "06:45"},
		{name: "binary false", entry: &models.Entry{ValueFields: models.ValueFields{BinaryValue: models.BoolPtr(false)}}, typ: models.TrackerBinary, want: "false"},
		{name: "stale field of other type ignored", entry: &models.Entry{ValueFields: models.ValueFields{TextValue: &text}}, typ: models.TrackerBinary, want: ""},
		{
			name:  "prayer",
			entry: &models.Entry{ValueFields: models.ValueFields{PrayerValues: models.PrayerValues{models.Fajr: models.BoolPtr(true), models.Asr: nil}}},
			typ:   models.TrackerPrayer,
			want:  `{"fajr":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.entry, tt.typ); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasEntryData(t *testing.T) {
	text := "only text"
	blank := ""
	entry := &models.Entry{ValueFields: models.ValueFields{TextValue: &text}}

	if HasEntryData(entry, models.TrackerBinary) {
		t.Error("HasEntryData() = true for a field that does not match the tracker type")
	}
	if !HasEntryData(entry, models.TrackerText) {
		t.Error("HasEntryData() = false for a populated matching field")
	}
	if HasEntryData(nil, models.TrackerText) {
		t.Error("HasEntryData(nil) = true")
	}
	if HasEntryData(&models.Entry{ValueFields: models.ValueFields{TextValue: &blank}}, models.TrackerText) {
		t.Error("HasEntryData() = true for blank text")
	}
	untracked := &models.Entry{ValueFields: models.ValueFields{PrayerValues: models.PrayerValues{models.Fajr: nil, models.Isha: nil}}}
	if HasEntryData(untracked, models.TrackerPrayer) {
		t.Error("HasEntryData() = true for prayers that are all untracked")
	}
	falseOnly := &models.Entry{ValueFields: models.ValueFields{PrayerValues: models.PrayerValues{models.Isha: models.BoolPtr(false)}}}
	if !HasEntryData(falseOnly, models.TrackerPrayer) {
		t.Error("HasEntryData() = false for an explicit false prayer")
	}
}

func TestRoundTrip(t *testing.T) {
	values := []models.Value{
		models.BinaryValue(true),
		models.BinaryValue(false),
		models.NumberValue(2.5),
		models.NumberValue(70),
		models.RatingValue(5),
		models.DurationValue(90),
		models.DurationValue(120),
		models.DurationValue(45),
		models.TimeValue("22:05"),
		models.TextValue("walked the dog"),
	}

	for _, v := range values {
		encoded := EncodeValue(v)
		decoded, err := Decode(v.Type(), encoded)
		if err != nil {
			t.Errorf("Decode(Encode(%v)) error = %v", v, err)
			continue
		}
		if decoded.Value != v {
			t.Errorf("Decode(Encode(%v)) = %v (encoded %q)", v, decoded.Value, encoded)
		}
	}
}

func TestRoundTripPrayer(t *testing.T) {
	original := models.PrayerValue{models.Fajr: models.BoolPtr(true), models.Dhuhr: models.BoolPtr(false)}
	decoded, err := Decode(models.TrackerPrayer, EncodeValue(original))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := decoded.Value.(models.PrayerValue)
	if len(got) != 2 || !*got[models.Fajr] || *got[models.Dhuhr] {
		t.Errorf("round trip = %v, want fajr=true dhuhr=false", got)
	}
}

func TestTimeIdempotentAfterFirstPass(t *testing.T) {
	first, err := Decode(models.TrackerTime, "23:59:30")
	if err != nil {
		t.Fatal(err)
	}
	once := EncodeValue(first.Value)
	second, err := Decode(models.TrackerTime, once)
	if err != nil {
		t.Fatal(err)
	}
	if twice := EncodeValue(second.Value); twice != once {
		t.Errorf("encode after second pass = %q, want %q", twice, once)
	}
}

func TestPayload(t *testing.T) {
	p := Payload("t1", "2025-01-01", Decoded{Delete: true})
	if !p.DeleteEntry {
		t.Error("Payload(delete).DeleteEntry = false")
	}
	p = Payload("t1", "2025-01-01", Decoded{Value: models.RatingValue(2)})
	if p.DeleteEntry || p.RatingValue == nil || *p.RatingValue != 2 {
		t.Errorf("Payload(rating) = %+v", p)
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := map[int]string{0: "0m", 45: "45m", 60: "1h", 90: "1h 30m", 125: "2h 5m"}
	for in, want := range tests {
		if got := FormatMinutes(in); got != want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestCell(t *testing.T) {
	ninety := 90
	tests := []struct {
		name  string
		entry *models.Entry
		typ   models.TrackerType
		want  string
	}{
		{"missing", nil, models.TrackerBinary, ""},
		{"binary true", &models.Entry{ValueFields: models.ValueFields{BinaryValue: models.BoolPtr(true)}}, models.TrackerBinary, "✓"},
		{"binary false", &models.Entry{ValueFields: models.ValueFields{BinaryValue: models.BoolPtr(false)}}, models.TrackerBinary, "✗"},
		{"foreign field ignored", &models.Entry{ValueFields: models.ValueFields{DurationMinutes: &ninety}}, models.TrackerBinary, ""},
		{"duration", &models.Entry{ValueFields: models.ValueFields{DurationMinutes: &ninety}}, models.TrackerDuration, "1h 30m"},
		{"prayer", &models.Entry{ValueFields: models.ValueFields{PrayerValues: models.PrayerValues{
			models.Fajr: models.BoolPtr(true), models.Asr: models.BoolPtr(false),
		}}}, models.TrackerPrayer, "1/5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cell(tt.entry, tt.typ); got != tt.want {
				t.Errorf("Cell() = %q, want %q", got, tt.want)
			}
		})
	}
}
