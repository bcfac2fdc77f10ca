package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Day Date `json:"day"`
	}

	tests := []struct {
		name    string
		data    string
		want    Date
		wantErr bool
	}{
		{name: "date", data: `{"day": "2024-09-05"}`, want: NewDate(2024, time.September, 5)},
		{name: "null", data: `{"day": null}`},
		{name: "empty", data: `{"day": ""}`},
		{name: "datetime", data: `{"day": "2024-09-05T10:00:00Z"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := json.Unmarshal([]byte(tt.data), &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !p.Day.Equal(tt.want.Time) {
				t.Errorf("Unmarshal() = %v, want %v", p.Day, tt.want)
			}
		})
	}

	data, err := json.Marshal(payload{Day: NewDate(2024, time.September, 5)})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"day":"2024-09-05"}` {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, time.March, 1, 15, 4, 5, 0, time.UTC)); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if d.String() != "2024-03-01" {
		t.Errorf("Scan() = %v, want 2024-03-01", d)
	}
	if got := d.DaysUntil(d.AddDays(6)); got != 6 {
		t.Errorf("DaysUntil() = %v, want 6", got)
	}
}
