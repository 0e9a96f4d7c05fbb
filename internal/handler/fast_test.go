package handler

import (
	"testing"

	"github.com/rayyan-app/rayyan-server/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func TestBuildFastDefaultsAndNormalization(t *testing.T) {
	f, err := buildFast(1, fastCreateReq{FastDate: "15-03-2024", Type: " Sunnah ", SunnahType: "MONDAY"})
	if err != nil {
		t.Fatalf("buildFast: %v", err)
	}
	if f.Type != model.FastSunnah || f.SunnahType != model.SunnahMonday {
		t.Errorf("types not normalized: %+v", f)
	}
	if !f.Status {
		t.Error("status should default to observed")
	}
}

func TestBuildFastRejections(t *testing.T) {
	cases := []struct {
		name string
		req  fastCreateReq
	}{
		{"bad date", fastCreateReq{FastDate: "2024-03-15", Type: "nafl"}},
		{"impossible date", fastCreateReq{FastDate: "31-02-2024", Type: "nafl"}},
		{"unknown type", fastCreateReq{FastDate: "15-03-2024", Type: "ramadan"}},
		{"sunnah without occasion", fastCreateReq{FastDate: "15-03-2024", Type: "sunnah"}},
		{"occasion on non-sunnah", fastCreateReq{FastDate: "15-03-2024", Type: "nafl", SunnahType: "monday"}},
		{"bucket on non-qada", fastCreateReq{FastDate: "15-03-2024", Type: "nafl", YearBucketID: 4}},
		{"missed fast paying a bucket", fastCreateReq{FastDate: "15-03-2024", Type: "qada", YearBucketID: 4, Status: boolPtr(false)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := buildFast(1, tc.req); err == nil {
				t.Error("request accepted")
			}
		})
	}
}

func TestBuildFastQadaWithBucket(t *testing.T) {
	f, err := buildFast(7, fastCreateReq{FastDate: "15-03-2024", Type: "qada", YearBucketID: 9})
	if err != nil {
		t.Fatalf("buildFast: %v", err)
	}
	if f.YearBucketID != 9 || f.UserID != 7 || !f.Status {
		t.Errorf("built %+v", f)
	}
}
